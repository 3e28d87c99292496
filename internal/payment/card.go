package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const cardProviderName = "cardgate"

// CardGateway opens hosted card page intents. The gateway hands back a
// token the storefront embeds in the redirect URL; the token itself is an
// HMAC over the order id and amount so confirmations can be checked
// without storing gateway state.
type CardGateway struct {
	BaseURL   string
	ServerKey string
	Sandbox   bool
}

func NewCardGateway(baseURL, serverKey string, sandbox bool) *CardGateway {
	return &CardGateway{BaseURL: strings.TrimRight(baseURL, "/"), ServerKey: serverKey, Sandbox: sandbox}
}

func (g *CardGateway) Name() string { return cardProviderName }

func (g *CardGateway) CreateIntent(_ context.Context, req IntentRequest) (IntentResponse, error) {
	if req.OrderID == "" || req.Amount <= 0 {
		return IntentResponse{}, fmt.Errorf("card gateway: invalid intent request")
	}
	ttl := req.ExpiresAtSec
	if ttl <= 0 {
		ttl = 3600
	}
	expiresAt := time.Now().Add(time.Duration(ttl) * time.Second).Unix()
	token := g.signToken(req.OrderID, req.Amount)
	base := g.BaseURL
	if base == "" {
		if g.Sandbox {
			base = "https://sandbox.cardgate.example/pay"
		} else {
			base = "https://pay.cardgate.example/pay"
		}
	}
	return IntentResponse{
		Provider:    cardProviderName,
		Token:       token,
		RedirectURL: fmt.Sprintf("%s/%s", base, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// VerifyConfirmation checks that a confirmation callback carries the token
// the gateway issued for this order and amount.
func (g *CardGateway) VerifyConfirmation(orderID string, amount int64, token string) bool {
	expected := g.signToken(orderID, amount)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (g *CardGateway) signToken(orderID string, amount int64) string {
	mac := hmac.New(sha256.New, []byte(g.ServerKey))
	fmt.Fprintf(mac, "%s:%d", orderID, amount)
	return hex.EncodeToString(mac.Sum(nil))
}

package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noven-dev/backend-wholesale/internal/common"
	"github.com/noven-dev/backend-wholesale/internal/db"
)

// Handler exposes payment intent and confirmation endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{Svc: svc} }

// CreateIntent handles POST /orders/{id}/payment-intent.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var body struct {
		Amount int64 `json:"amount"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	payment, err := h.Svc.CreateIntent(r.Context(), orderID, body.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": paymentView(payment)})
}

// Confirm handles POST /payments/{orderId}/confirm, the provider callback.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	var body struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	status, err := h.Svc.Confirm(r.Context(), orderID, body.Status, body.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{
		"orderId": orderID,
		"status":  status,
	}})
}

// Status handles GET /orders/{id}/payment.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	status, err := h.Svc.Status(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{
		"orderId": orderID,
		"status":  status,
	}})
}

func paymentView(p db.Payment) map[string]any {
	view := map[string]any{
		"id":      db.UUIDString(p.ID),
		"orderId": db.UUIDString(p.OrderID),
		"status":  p.Status,
		"amount":  p.Amount,
	}
	if p.Provider.Valid {
		view["provider"] = p.Provider.String
	}
	if p.IntentToken.Valid {
		view["token"] = p.IntentToken.String
	}
	if p.RedirectURL.Valid {
		view["redirectUrl"] = p.RedirectURL.String
	}
	if p.ExpiresAt.Valid {
		view["expiresAt"] = p.ExpiresAt.Time.UTC()
	}
	return view
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	case errors.Is(err, ErrAlreadyPaid):
		common.JSONError(w, http.StatusConflict, "ALREADY_PAID", "order already paid", nil)
	case errors.Is(err, ErrNotPayable):
		common.JSONError(w, http.StatusConflict, "NOT_PAYABLE", "order not awaiting payment", nil)
	case errors.Is(err, ErrInvalidSignature):
		common.JSONError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "confirmation token rejected", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

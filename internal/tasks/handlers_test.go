package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noven-dev/backend-wholesale/internal/common"
)

func TestHandleOrderCreatedSendsEmail(t *testing.T) {
	sender := &common.InMemoryEmail{}
	h := &Handler{Email: sender, Log: zerolog.Nop()}

	payload, err := json.Marshal(OrderCreatedPayload{
		OrderID:  "11111111-1111-1111-1111-111111111111",
		Name:     "Sam",
		Email:    "sam@example.com",
		Total:    2582,
		Currency: "GBP",
	})
	require.NoError(t, err)

	err = h.HandleOrderCreated(context.Background(), asynq.NewTask(TypeOrderCreated, payload))
	require.NoError(t, err)
	require.Len(t, sender.Outbox, 1)
	require.Equal(t, "sam@example.com", sender.Outbox[0].To)
	require.Contains(t, sender.Outbox[0].HTML, "25.82")
}

func TestHandleOrderCreatedBadPayload(t *testing.T) {
	h := &Handler{Email: &common.InMemoryEmail{}, Log: zerolog.Nop()}
	err := h.HandleOrderCreated(context.Background(), asynq.NewTask(TypeOrderCreated, []byte("{")))
	require.Error(t, err)
}

func TestHandleOrderCreatedNoSender(t *testing.T) {
	h := &Handler{Log: zerolog.Nop()}
	payload, _ := json.Marshal(OrderCreatedPayload{OrderID: "x"})
	require.NoError(t, h.HandleOrderCreated(context.Background(), asynq.NewTask(TypeOrderCreated, payload)))
}

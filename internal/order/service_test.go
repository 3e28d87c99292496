package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noven-dev/backend-wholesale/internal/db"
)

type memStore struct {
	orders map[string]db.Order
	items  map[string][]db.OrderItem
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]db.Order{}, items: map[string][]db.OrderItem{}}
}

func (m *memStore) GetOrderByID(_ context.Context, id pgtype.UUID) (db.Order, error) {
	o, ok := m.orders[db.UUIDString(id)]
	if !ok {
		return db.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *memStore) ListOrderItems(_ context.Context, orderID pgtype.UUID) ([]db.OrderItem, error) {
	return m.items[db.UUIDString(orderID)], nil
}

func (m *memStore) ListOrdersByEmail(_ context.Context, email string, limit, offset int32) ([]db.Order, error) {
	var out []db.Order
	for _, o := range m.orders {
		if o.CustomerEmail == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func seedOrder(store *memStore) db.Order {
	o := db.Order{
		ID:                pgtype.UUID{Bytes: uuid.New(), Valid: true},
		CustomerName:      "Sam Trader",
		CustomerEmail:     "sam@example.com",
		Status:            db.OrderStatusPendingPayment,
		Currency:          "GBP",
		PricingSubtotal:   2400,
		PricingShipping:   800,
		PricingFee:        226,
		PricingTotal:      3426,
		FulfilmentUnits:   16,
		AppliedPromotions: []byte(`["Buy 3 get 1 free"]`),
		ShippingAddress:   []byte(`{"postcode":"M1 1AA"}`),
		CreatedAt:         pgtype.Timestamptz{Time: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), Valid: true},
	}
	key := db.UUIDString(o.ID)
	store.orders[key] = o
	store.items[key] = []db.OrderItem{{
		ID:            pgtype.UUID{Bytes: uuid.New(), Valid: true},
		OrderID:       o.ID,
		ProductID:     pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Title:         "Crisps case",
		Slug:          "crisps-case",
		SellingFormat: "units",
		Qty:           12,
		FreeQty:       4,
		UnitPrice:     200,
		Subtotal:      2400,
	}}
	return o
}

func TestGetReturnsStoredTotals(t *testing.T) {
	store := newMemStore()
	o := seedOrder(store)
	svc := &Service{Q: store, Log: zerolog.Nop()}

	view, err := svc.Get(context.Background(), db.UUIDString(o.ID))
	require.NoError(t, err)
	require.Equal(t, int64(3426), view.Pricing.Total)
	require.Equal(t, int32(16), view.Pricing.FulfilmentCount)
	require.Equal(t, []string{"Buy 3 get 1 free"}, view.Pricing.AppliedPromotions)
	require.Len(t, view.Items, 1)
	require.Equal(t, int32(4), view.Items[0].FreeUnits)
	require.Equal(t, "2026-03-01T09:00:00Z", view.CreatedAt)
}

func TestGetUnknownOrder(t *testing.T) {
	svc := &Service{Q: newMemStore(), Log: zerolog.Nop()}
	_, err := svc.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSurvivesCorruptPromotionBlob(t *testing.T) {
	store := newMemStore()
	o := seedOrder(store)
	o.AppliedPromotions = []byte(`{broken`)
	store.orders[db.UUIDString(o.ID)] = o
	svc := &Service{Q: store, Log: zerolog.Nop()}

	view, err := svc.Get(context.Background(), db.UUIDString(o.ID))
	require.NoError(t, err)
	require.Empty(t, view.Pricing.AppliedPromotions)
}

func TestListByEmail(t *testing.T) {
	store := newMemStore()
	seedOrder(store)
	svc := &Service{Q: store, Log: zerolog.Nop()}

	views, err := svc.ListByEmail(context.Background(), "sam@example.com", 20, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Empty(t, views[0].Items)

	_, err = svc.ListByEmail(context.Background(), "", 20, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderHandlers(t *testing.T) {
	store := newMemStore()
	o := seedOrder(store)
	h := NewHandler(&Service{Q: store, Log: zerolog.Nop()})

	r := chi.NewRouter()
	r.Get("/orders/{id}", h.Get)
	r.Get("/orders", h.List)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+db.UUIDString(o.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(3426), body.Data.Pricing.Total)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?email=sam@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noven-dev/backend-wholesale/internal/db"
)

type stubQueries struct {
	products []db.Product
}

func (s *stubQueries) ListProducts(_ context.Context, limit, offset int32) ([]db.Product, error) {
	start := int(offset)
	if start >= len(s.products) {
		return nil, nil
	}
	end := start + int(limit)
	if end > len(s.products) {
		end = len(s.products)
	}
	return s.products[start:end], nil
}

func (s *stubQueries) CountProducts(_ context.Context) (int64, error) {
	return int64(len(s.products)), nil
}

func (s *stubQueries) GetProductBySlug(_ context.Context, slug string) (db.Product, error) {
	for _, p := range s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return db.Product{}, pgx.ErrNoRows
}

func testProduct() db.Product {
	id, _ := db.ToUUID("11111111-1111-1111-1111-111111111111")
	return db.Product{
		ID:            id,
		Slug:          "crisps-case",
		Title:         "Crisps (case of 24)",
		Price:         "2.00",
		SellingFormat: "units",
		Moq:           12,
		Stock:         500,
		Offers:        []byte(`[{"type":"buy_x_get_free","buy":3,"getFree":1}]`),
	}
}

func newTestService(t *testing.T, q queryProvider) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Queries:      q,
		Logger:       zerolog.Nop(),
		DefaultLimit: 20,
		MaxLimit:     100,
	})
	require.NoError(t, err)
	return svc
}

func TestListProductsComputesEffectivePriceAtMoq(t *testing.T) {
	svc := newTestService(t, &stubQueries{products: []db.Product{testProduct()}})

	result, err := svc.ListProducts(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	require.Equal(t, int64(200), item.OriginalPrice)
	require.Equal(t, int64(200), item.EffectivePrice)
	require.Equal(t, 12, item.Moq)
	require.Contains(t, item.AppliedOffers, "Buy 3 get 1 free")
	require.True(t, item.InStock)
}

func TestListProductsPercentageOffer(t *testing.T) {
	p := testProduct()
	p.Offers = []byte(`[{"type":"percentage","discountPercent":25}]`)
	svc := newTestService(t, &stubQueries{products: []db.Product{p}})

	result, err := svc.ListProducts(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(150), result.Items[0].EffectivePrice)
	require.Equal(t, []string{"25% off"}, result.Items[0].AppliedOffers)
}

func TestListProductsInvalidOffersSkipped(t *testing.T) {
	p := testProduct()
	p.Offers = []byte(`[{"type":"bogus"}]`)
	svc := newTestService(t, &stubQueries{products: []db.Product{p}})

	result, err := svc.ListProducts(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(200), result.Items[0].EffectivePrice)
	require.Empty(t, result.Items[0].AppliedOffers)
}

func TestGetProductDetail(t *testing.T) {
	p := testProduct()
	p.PromoPrice = pgtype.Text{String: "1.50", Valid: true}
	p.PromoActive = true
	p.PalletPrice = pgtype.Text{String: "40.00", Valid: true}
	p.PalletMoq = 1
	svc := newTestService(t, &stubQueries{products: []db.Product{p}})

	detail, err := svc.GetProductDetail(context.Background(), "crisps-case")
	require.NoError(t, err)
	require.Equal(t, "crisps-case", detail.Slug)
	require.True(t, detail.PromoActive)
	require.NotNil(t, detail.PromoPrice)
	require.Equal(t, int64(150), *detail.PromoPrice)
	require.NotNil(t, detail.PalletPrice)
	require.Equal(t, int64(4000), *detail.PalletPrice)
	require.NotEmpty(t, detail.PromotionalOffers)
	// promo price 1.50 beats base 2.00 at MOQ
	require.Equal(t, int64(150), detail.EffectivePrice)
}

func TestGetProductDetailNotFound(t *testing.T) {
	svc := newTestService(t, &stubQueries{})
	_, err := svc.GetProductDetail(context.Background(), "missing")
	require.Error(t, err)
}

func TestProductDetailHandler(t *testing.T) {
	svc := newTestService(t, &stubQueries{products: []db.Product{testProduct()}})
	handler := NewHandler(svc)

	router := chi.NewRouter()
	router.Get("/api/v1/products/{slug}", handler.ProductDetail)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/crisps-case", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data ProductDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "crisps-case", body.Data.Slug)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductsHandlerPagination(t *testing.T) {
	products := make([]db.Product, 0, 3)
	for _, slug := range []string{"a", "b", "c"} {
		p := testProduct()
		p.Slug = slug
		products = append(products, p)
	}
	svc := newTestService(t, &stubQueries{products: products})
	handler := NewHandler(svc)

	rec := httptest.NewRecorder()
	handler.Products(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=1&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "3", rec.Header().Get("X-Total-Count"))

	var body struct {
		Data []ProductItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
}

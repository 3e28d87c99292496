// Package catalog serves the public product listing and detail endpoints.
// Prices live in the database as numeric columns and promotional offers as
// JSONB; both are decoded here, at the boundary, so everything downstream
// works with minor-unit integers and tagged offer variants.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/noven-dev/backend-wholesale/internal/common"
	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/promo"
)

type queryProvider interface {
	ListProducts(ctx context.Context, limit, offset int32) ([]db.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	GetProductBySlug(ctx context.Context, slug string) (db.Product, error)
}

// Service orchestrates catalogue queries, offer decoding, and caching.
type Service struct {
	queries      queryProvider
	cache        *Cache
	log          zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	Logger       zerolog.Logger
	DefaultLimit int
	MaxLimit     int
}

// ProductItem is the list-view payload. EffectivePrice is computed at the
// product's MOQ so the strikethrough and badge rendering on the listing page
// match what the cart will charge for the minimum order.
type ProductItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	SellingFormat  string   `json:"sellingFormat"`
	Moq            int      `json:"moq"`
	InStock        bool     `json:"inStock"`
	OriginalPrice  int64    `json:"originalPrice"`
	EffectivePrice int64    `json:"effectivePrice"`
	AppliedOffers  []string `json:"appliedOffers"`
}

// ProductDetail aggregates the full detail payload. PromotionalOffers is the
// raw stored offer list so the storefront can recompute line pricing as the
// shopper changes quantity; the server remains authoritative at checkout.
type ProductDetail struct {
	ProductItem
	Description       *string         `json:"description,omitempty"`
	Stock             int             `json:"stock"`
	PromoActive       bool            `json:"promoActive"`
	PromoPrice        *int64          `json:"promoPrice,omitempty"`
	PalletPrice       *int64          `json:"palletPrice,omitempty"`
	PalletMoq         int             `json:"palletMoq,omitempty"`
	PalletStock       int             `json:"palletStock,omitempty"`
	PromotionalOffers json.RawMessage `json:"promotionalOffers,omitempty"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductItem
	Total int64
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		log:          cfg.Logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ListProducts returns one page of the catalogue. The unfiltered first page
// is cached since it backs the landing grid.
func (s *Service) ListProducts(ctx context.Context, page, limit int) (ProductListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	useCache := page == 1 && limit == s.defaultLimit
	cacheKey := "catalog:products:list:first"
	if useCache && s.cache != nil {
		var cached cachedList
		if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return ProductListResult{Items: cached.Items, Total: cached.Total, Page: page, Limit: limit}, nil
		}
	}

	total, err := s.queries.CountProducts(ctx)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	offset := int32((page - 1) * limit)
	rows, err := s.queries.ListProducts(ctx, int32(limit), offset)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]ProductItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.toItem(row))
	}
	if useCache && s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, cachedList{Items: items, Total: total})
	}
	return ProductListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetProductDetail returns the full product payload for the given slug.
func (s *Service) GetProductDetail(ctx context.Context, slug string) (ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetail{}, &common.AppError{Code: "BAD_REQUEST", Message: "slug is required", HTTPStatus: http.StatusBadRequest}
	}
	cacheKey := "catalog:products:detail:" + slug
	if s.cache != nil {
		var cached ProductDetail
		if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}
	row, err := s.queries.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductDetail{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return ProductDetail{}, fmt.Errorf("get product by slug: %w", err)
	}

	detail := ProductDetail{
		ProductItem: s.toItem(row),
		Stock:       int(row.Stock),
		PromoActive: row.PromoActive,
		PalletMoq:   int(row.PalletMoq),
		PalletStock: int(row.PalletStock),
	}
	if row.Description.Valid {
		desc := row.Description.String
		detail.Description = &desc
	}
	if row.PromoPrice.Valid {
		price := promo.ParseMoney(row.PromoPrice.String)
		detail.PromoPrice = &price
	}
	if row.PalletPrice.Valid {
		price := promo.ParseMoney(row.PalletPrice.String)
		detail.PalletPrice = &price
	}
	if len(row.Offers) > 0 {
		detail.PromotionalOffers = json.RawMessage(row.Offers)
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, detail)
	}
	return detail, nil
}

// PriceLine builds a pricing line from a catalogue row and a requested
// quantity. Both the cart quote and checkout reuse it so the preview and the
// charge come out of the same computation.
func PriceLine(log zerolog.Logger, p db.Product, qty int, format string) PricedLine {
	base := parsePrice(log, p, p.Price)
	offers := decodeOffers(log, p)
	var promoPrice promo.Money
	if p.PromoPrice.Valid {
		promoPrice = promo.ParseMoney(p.PromoPrice.String)
	}
	var palletPrice promo.Money
	if p.PalletPrice.Valid {
		palletPrice = promo.ParseMoney(p.PalletPrice.String)
	}
	return PricedLine{
		UnitPrice:   base,
		PalletPrice: palletPrice,
		Offers:      offers,
		PromoPrice:  promoPrice,
		PromoActive: p.PromoActive,
		Qty:         qty,
		Format:      format,
	}
}

// PricedLine is the decoded pricing input for one cart line.
type PricedLine struct {
	UnitPrice   promo.Money
	PalletPrice promo.Money
	Offers      []promo.Offer
	PromoPrice  promo.Money
	PromoActive bool
	Qty         int
	Format      string
}

type cachedList struct {
	Items []ProductItem `json:"items"`
	Total int64         `json:"total"`
}

func (s *Service) toItem(p db.Product) ProductItem {
	base := parsePrice(s.log, p, p.Price)
	offers := decodeOffers(s.log, p)
	moq := int(p.Moq)
	if moq < 1 {
		moq = 1
	}
	var promoPrice promo.Money
	if p.PromoPrice.Valid {
		promoPrice = promo.ParseMoney(p.PromoPrice.String)
	}
	res := promo.Calculate(base, moq, offers, promoPrice, p.PromoActive)
	return ProductItem{
		ID:             db.UUIDString(p.ID),
		Title:          p.Title,
		Slug:           p.Slug,
		SellingFormat:  p.SellingFormat,
		Moq:            moq,
		InStock:        p.Stock > 0,
		OriginalPrice:  res.OriginalPrice,
		EffectivePrice: res.EffectivePrice,
		AppliedOffers:  res.AppliedOffers,
	}
}

// parsePrice flags rows whose stored price coerces to zero. A zero here
// would silently zero out a real charge downstream, so it is logged loudly
// even though the computation carries on.
func parsePrice(log zerolog.Logger, p db.Product, raw string) promo.Money {
	parsed := promo.ParseMoney(raw)
	if parsed == 0 && strings.TrimSpace(raw) != "" && promo.FormatMoney(0) != raw && raw != "0" {
		log.Warn().
			Str("product_id", db.UUIDString(p.ID)).
			Str("slug", p.Slug).
			Str("raw_price", raw).
			Msg("product price coerced to zero")
	}
	return parsed
}

func decodeOffers(log zerolog.Logger, p db.Product) []promo.Offer {
	offers, err := promo.DecodeOffers(p.Offers)
	if err != nil {
		log.Warn().
			Err(err).
			Str("product_id", db.UUIDString(p.ID)).
			Str("slug", p.Slug).
			Msg("skipping invalid promotional offers")
	}
	return offers
}

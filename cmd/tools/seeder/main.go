// Seeder inserts a small demo catalogue so the storefront has products to
// browse locally. Safe to re-run; existing slugs are skipped.
package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noven-dev/backend-wholesale/internal/config"
	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/promo"
)

type seedProduct struct {
	params db.CreateProductParams
	offers []promo.Offer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	store := db.New(pool)

	for _, seed := range catalogue() {
		if _, err := store.GetProductBySlug(ctx, seed.params.Slug); err == nil {
			log.Printf("skip %s: already present", seed.params.Slug)
			continue
		}
		encoded, err := promo.EncodeOffers(seed.offers)
		if err != nil {
			log.Fatalf("encode offers for %s: %v", seed.params.Slug, err)
		}
		seed.params.Offers = encoded
		if _, err := store.CreateProduct(ctx, seed.params); err != nil {
			log.Fatalf("insert %s: %v", seed.params.Slug, err)
		}
		log.Printf("seeded %s", seed.params.Slug)
	}
}

func catalogue() []seedProduct {
	return []seedProduct{
		{
			params: db.CreateProductParams{
				Slug:          "crisps-ready-salted-case",
				Title:         "Ready Salted Crisps (case of 48)",
				Description:   text("48 x 25g bags."),
				Price:         "12.00",
				SellingFormat: "units",
				Moq:           5,
				Stock:         400,
				PalletPrice:   text("480.00"),
				PalletMoq:     1,
				PalletStock:   12,
			},
			offers: []promo.Offer{
				{Kind: promo.KindBuyGetFree, Buy: 10, GetFree: 1},
				{Kind: promo.KindFreeShipping, MinSpend: 25000},
			},
		},
		{
			params: db.CreateProductParams{
				Slug:          "cola-330ml-tray",
				Title:         "Cola 330ml (tray of 24)",
				Price:         "8.50",
				PromoPrice:    text("7.25"),
				PromoActive:   true,
				SellingFormat: "units",
				Moq:           10,
				Stock:         900,
			},
			offers: []promo.Offer{
				{Kind: promo.KindPercentage, PercentBps: 1000, MinQty: 50},
			},
		},
		{
			params: db.CreateProductParams{
				Slug:          "kitchen-roll-bale",
				Title:         "Kitchen Roll (bale of 12)",
				Price:         "6.75",
				SellingFormat: "units",
				Moq:           8,
				Stock:         260,
				PalletPrice:   text("310.00"),
				PalletMoq:     1,
				PalletStock:   6,
			},
			offers: []promo.Offer{
				{Kind: promo.KindFixedAmount, Amount: 75, Label: "Bulk saver"},
			},
		},
	}
}

func text(value string) pgtype.Text {
	return pgtype.Text{String: strings.TrimSpace(value), Valid: strings.TrimSpace(value) != ""}
}

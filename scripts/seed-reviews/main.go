// Command seed-reviews loads a small set of sample reviews into the
// Postgres backend for local development.
//
// Usage:
//
//	DATABASE_URL=postgres://... go run ./scripts/seed-reviews
//
// Runs migrations first, then inserts the fixtures. Safe to run against an
// empty database; rerunning appends another copy of the fixtures.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/courierlens/courierlens/internal/model"
	"github.com/courierlens/courierlens/internal/storage"
	"github.com/courierlens/courierlens/migrations"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := storage.New(ctx, dsn, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return err
	}

	if err := db.InsertReviews(ctx, fixtures()); err != nil {
		return err
	}

	fmt.Printf("seeded %d reviews\n", len(fixtures()))
	return nil
}

func fixtures() []model.Review {
	disc := func(v float64) *float64 { return &v }
	return []model.Review{
		{
			AgentName: "Dana Whitfield", Location: "New York", Rating: 5,
			OrderType: model.OrderExpress, OrderPrice: 42.50, DiscountApplied: disc(10),
			Performance: model.PerformanceFast, Accuracy: model.AccuracyAccurate,
			Sentiment: model.SentimentPositive,
		},
		{
			AgentName: "Omar Reyes", Location: "Newark", Rating: 2,
			OrderType: model.OrderStandard, OrderPrice: 75.99,
			Performance: model.PerformanceSlow, Accuracy: model.AccuracyMistake,
			Sentiment:  model.SentimentNegative,
			Complaints: []string{"Late Delivery", "Wrong Item"},
		},
		{
			AgentName: "Priya Nair", Location: "Chicago", Rating: 4,
			OrderType: model.OrderSameDay, OrderPrice: 120.00, DiscountApplied: disc(5.5),
			Performance: model.PerformanceAverage, Accuracy: model.AccuracyAccurate,
			Sentiment: model.SentimentPositive,
		},
		{
			AgentName: "Dana Whitfield", Location: "Brooklyn", Rating: 3,
			OrderType: model.OrderStandard, OrderPrice: 18.25,
			Performance: model.PerformanceAverage, Accuracy: model.AccuracyAccurate,
			Sentiment:  model.SentimentNeutral,
			Complaints: []string{"Late Delivery"},
		},
		{
			AgentName: "Omar Reyes", Location: "Jersey City", Rating: 1,
			OrderType: model.OrderExpress, OrderPrice: 54.10, DiscountApplied: disc(0),
			Performance: model.PerformanceSlow, Accuracy: model.AccuracyMistake,
			Sentiment:  model.SentimentNegative,
			Complaints: []string{"Rude Courier", "Late Delivery"},
		},
		{
			AgentName: "Priya Nair", Location: "Evanston", Rating: 5,
			OrderType: model.OrderSameDay, OrderPrice: 89.00,
			Performance: model.PerformanceFast, Accuracy: model.AccuracyAccurate,
			Sentiment: model.SentimentPositive,
		},
	}
}

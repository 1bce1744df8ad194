package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courierlens/courierlens/internal/model"
)

const reviewColumns = `id, agent_name, location, rating, order_type, order_price,
	discount_applied, performance, accuracy, sentiment, complaints`

// FetchPage returns one page of reviews in insertion order plus the total
// row count. Page numbering starts at 1; out-of-range pages return an empty
// slice rather than an error, matching the upstream service.
func (db *DB) FetchPage(ctx context.Context, cred model.Credential, page, pageSize int) (model.Page, error) {
	if !cred.Valid() {
		return model.Page{}, model.ErrUnauthorized
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM reviews`).Scan(&total); err != nil {
		return model.Page{}, fmt.Errorf("storage: count reviews: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews ORDER BY seq LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return model.Page{}, fmt.Errorf("storage: fetch page: %w", err)
	}
	defer rows.Close()

	reviews, err := scanReviews(rows)
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{Reviews: reviews, TotalCount: total}, nil
}

// FetchAll returns the entire review collection in insertion order.
func (db *DB) FetchAll(ctx context.Context, cred model.Credential) ([]model.Review, error) {
	if !cred.Valid() {
		return nil, model.ErrUnauthorized
	}

	rows, err := db.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("storage: fetch all: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// FetchSummary computes the service-side summary statistics in SQL. Agent
// and complaint ties break toward the earliest-inserted row, mirroring the
// engine's in-memory aggregation.
func (db *DB) FetchSummary(ctx context.Context, cred model.Credential) (model.ExternalSummary, error) {
	if !cred.Valid() {
		return model.ExternalSummary{}, model.ErrUnauthorized
	}

	s := model.ExternalSummary{
		TopAgent:            "N/A",
		BottomAgent:         "N/A",
		MostCommonComplaint: "N/A",
		OrdersByPriceRange:  map[string]int{},
	}

	// Postgres sorts NaN above every number, so the bucket filters exclude
	// it explicitly rather than letting it land in the top bucket.
	var low, mid, high int
	err := db.pool.QueryRow(ctx, `
		SELECT coalesce(round(avg(rating)::numeric, 2), 0),
		       count(*) FILTER (WHERE order_price <> 'NaN'::float8 AND order_price <= 50),
		       count(*) FILTER (WHERE order_price <> 'NaN'::float8 AND order_price > 50 AND order_price <= 100),
		       count(*) FILTER (WHERE order_price <> 'NaN'::float8 AND order_price > 100)
		FROM reviews
	`).Scan(&s.AverageRating, &low, &mid, &high)
	if err != nil {
		return model.ExternalSummary{}, fmt.Errorf("storage: fetch summary: %w", err)
	}
	s.OrdersByPriceRange["0-50"] = low
	s.OrdersByPriceRange["51-100"] = mid
	s.OrdersByPriceRange["101+"] = high

	var top, bottom *string
	err = db.pool.QueryRow(ctx, `
		WITH ranked AS (
			SELECT coalesce(nullif(agent_name, ''), 'Unknown') AS agent,
			       avg(rating) AS avg_rating,
			       min(seq) AS first_seen
			FROM reviews
			GROUP BY 1
		)
		SELECT (SELECT agent FROM ranked ORDER BY avg_rating DESC, first_seen ASC LIMIT 1),
		       (SELECT agent FROM ranked ORDER BY avg_rating ASC, first_seen ASC LIMIT 1)
	`).Scan(&top, &bottom)
	if err != nil {
		return model.ExternalSummary{}, fmt.Errorf("storage: rank agents: %w", err)
	}
	if top != nil {
		s.TopAgent = *top
	}
	if bottom != nil {
		s.BottomAgent = *bottom
	}

	var complaint *string
	err = db.pool.QueryRow(ctx, `
		SELECT c.tag FROM (
			SELECT unnest(complaints) AS tag, seq FROM reviews
		) c
		GROUP BY c.tag
		ORDER BY count(*) DESC, min(c.seq) ASC
		LIMIT 1
	`).Scan(&complaint)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.ExternalSummary{}, fmt.Errorf("storage: rank complaints: %w", err)
	}
	if complaint != nil {
		s.MostCommonComplaint = *complaint
	}

	return s, nil
}

// UpdateTags applies a classification tag patch to one review and returns
// the canonical updated row. Only elevated credentials may mutate tags.
func (db *DB) UpdateTags(ctx context.Context, cred model.Credential, reviewID string, patch model.TagPatch) (model.Review, error) {
	if !cred.Elevated() {
		return model.Review{}, model.ErrUnauthorized
	}
	if err := patch.Validate(); err != nil {
		return model.Review{}, err
	}

	var updated model.Review
	err := WithRetry(ctx, 3, 25*time.Millisecond, func() error {
		row := db.pool.QueryRow(ctx, `
			UPDATE reviews SET
				performance = coalesce($2, performance),
				accuracy    = coalesce($3, accuracy),
				sentiment   = coalesce($4, sentiment)
			WHERE id = $1
			RETURNING `+reviewColumns,
			reviewID, patch.Performance, patch.Accuracy, patch.Sentiment,
		)
		var err error
		updated, err = scanReview(row)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Review{}, fmt.Errorf("%w: review %s", model.ErrNotFound, reviewID)
		}
		return model.Review{}, fmt.Errorf("storage: update tags: %w", err)
	}
	return updated, nil
}

// InsertReviews bulk-inserts reviews, generating IDs where absent. Used by
// seed tooling and tests.
func (db *DB) InsertReviews(ctx context.Context, reviews []model.Review) error {
	for i := range reviews {
		r := reviews[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		_, err := db.pool.Exec(ctx, `
			INSERT INTO reviews (id, agent_name, location, rating, order_type, order_price,
				discount_applied, performance, accuracy, sentiment, complaints)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			r.ID, r.AgentName, r.Location, r.Rating, r.OrderType, r.OrderPrice,
			r.DiscountApplied, r.Performance, r.Accuracy, r.Sentiment, r.Complaints,
		)
		if err != nil {
			return fmt.Errorf("storage: insert review %s: %w", r.ID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (model.Review, error) {
	var r model.Review
	err := row.Scan(
		&r.ID, &r.AgentName, &r.Location, &r.Rating, &r.OrderType, &r.OrderPrice,
		&r.DiscountApplied, &r.Performance, &r.Accuracy, &r.Sentiment, &r.Complaints,
	)
	return r, err
}

func scanReviews(rows pgx.Rows) ([]model.Review, error) {
	var reviews []model.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate reviews: %w", err)
	}
	return reviews, nil
}

// Package model defines the domain types shared across the courierlens engine:
// reviews, filter criteria inputs, credentials, and the HTTP API envelopes.
package model

import "fmt"

// OrderType classifies how an order was delivered.
type OrderType string

const (
	OrderStandard OrderType = "Standard"
	OrderExpress  OrderType = "Express"
	OrderSameDay  OrderType = "Same-Day"
)

// Performance is the editable delivery-speed tag on a review.
type Performance string

const (
	PerformanceFast    Performance = "Fast"
	PerformanceAverage Performance = "Average"
	PerformanceSlow    Performance = "Slow"
)

// Accuracy is the editable order-accuracy tag on a review.
type Accuracy string

const (
	AccuracyAccurate Accuracy = "Order Accurate"
	AccuracyMistake  Accuracy = "Order Mistake"
)

// Sentiment is the editable customer-sentiment tag on a review.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Review is a single service/delivery feedback record. The identity fields
// are immutable once fetched; only the three tag fields (Performance,
// Accuracy, Sentiment) are ever patched by the engine.
type Review struct {
	ID              string      `json:"id"`
	AgentName       string      `json:"agentName"`
	Location        string      `json:"location"`
	Rating          int         `json:"rating"` // 1-5
	OrderType       OrderType   `json:"orderType"`
	OrderPrice      float64     `json:"orderPrice"`
	DiscountApplied *float64    `json:"discountApplied,omitempty"`
	Performance     Performance `json:"performance"`
	Accuracy        Accuracy    `json:"accuracy"`
	Sentiment       Sentiment   `json:"sentiment"`
	Complaints      []string    `json:"complaints"`
}

// TagPatch is a partial update of the editable tag fields. Nil fields are
// left untouched.
type TagPatch struct {
	Performance *Performance `json:"performance,omitempty"`
	Accuracy    *Accuracy    `json:"accuracy,omitempty"`
	Sentiment   *Sentiment   `json:"sentiment,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p TagPatch) IsZero() bool {
	return p.Performance == nil && p.Accuracy == nil && p.Sentiment == nil
}

// Validate checks that every set field carries a known enum value.
func (p TagPatch) Validate() error {
	if p.Performance != nil {
		switch *p.Performance {
		case PerformanceFast, PerformanceAverage, PerformanceSlow:
		default:
			return fmt.Errorf("model: invalid performance %q", *p.Performance)
		}
	}
	if p.Accuracy != nil {
		switch *p.Accuracy {
		case AccuracyAccurate, AccuracyMistake:
		default:
			return fmt.Errorf("model: invalid accuracy %q", *p.Accuracy)
		}
	}
	if p.Sentiment != nil {
		switch *p.Sentiment {
		case SentimentPositive, SentimentNeutral, SentimentNegative:
		default:
			return fmt.Errorf("model: invalid sentiment %q", *p.Sentiment)
		}
	}
	return nil
}

// Apply returns a copy of r with the patch fields replaced.
func (p TagPatch) Apply(r Review) Review {
	if p.Performance != nil {
		r.Performance = *p.Performance
	}
	if p.Accuracy != nil {
		r.Accuracy = *p.Accuracy
	}
	if p.Sentiment != nil {
		r.Sentiment = *p.Sentiment
	}
	return r
}

// Page is one bounded page of reviews as returned by a data source,
// together with the unfiltered total.
type Page struct {
	Reviews    []Review `json:"reviews"`
	TotalCount int      `json:"totalCount"`
}

// ExternalSummary is the server-computed analytics summary. The engine
// computes its own aggregates locally; this is kept for cross-checking only.
type ExternalSummary struct {
	AverageRating       float64        `json:"averageRating"`
	TopAgent            string         `json:"topAgent"`
	BottomAgent         string         `json:"bottomAgent"`
	MostCommonComplaint string         `json:"mostCommonComplaint"`
	OrdersByPriceRange  map[string]int `json:"ordersByPriceRange"`
}

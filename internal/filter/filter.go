// Package filter implements the review filtering engine and the
// draft/applied criteria state machine that feeds it.
package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/courierlens/courierlens/internal/model"
)

// Criteria is one set of filter inputs. All fields are raw user input
// strings; an empty string means "no constraint on this field".
type Criteria struct {
	Location        string `json:"location"`
	OrderType       string `json:"orderType"`
	DiscountApplied string `json:"discountApplied"`
	Rating          string `json:"rating"`
	Performance     string `json:"performance"`
	Accuracy        string `json:"accuracy"`
	Sentiment       string `json:"sentiment"`
}

// IsEmpty reports whether no field carries a constraint.
func (c Criteria) IsEmpty() bool {
	return c == Criteria{}
}

// Apply returns the subset of reviews matching every set criterion, in the
// input order. It is pure: no side effects, never fails, and an empty
// criteria set returns the input unchanged.
func Apply(reviews []model.Review, c Criteria) []model.Review {
	if c.IsEmpty() {
		return reviews
	}

	out := make([]model.Review, 0, len(reviews))
	for _, r := range reviews {
		if matches(r, c) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r model.Review, c Criteria) bool {
	if c.Location != "" &&
		!strings.Contains(strings.ToLower(r.Location), strings.ToLower(c.Location)) {
		return false
	}
	if c.OrderType != "" && string(r.OrderType) != c.OrderType {
		return false
	}
	if c.DiscountApplied != "" && !discountMatches(r.DiscountApplied, c.DiscountApplied) {
		return false
	}
	if c.Rating != "" {
		// A malformed rating criterion matches nothing rather than failing.
		want, err := strconv.Atoi(strings.TrimSpace(c.Rating))
		if err != nil || r.Rating != want {
			return false
		}
	}
	if c.Performance != "" && string(r.Performance) != c.Performance {
		return false
	}
	if c.Accuracy != "" && string(r.Accuracy) != c.Accuracy {
		return false
	}
	if c.Sentiment != "" && string(r.Sentiment) != c.Sentiment {
		return false
	}
	return true
}

// discountMatches compares the review's discount, truncated toward zero,
// against the integer-parsed criterion. A review without a discount never
// matches a set criterion, and "0" is a real constraint.
func discountMatches(discount *float64, raw string) bool {
	want, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if discount == nil {
		return false
	}
	return int(math.Trunc(*discount)) == want
}

// Package analytics computes summary statistics over a filtered review set.
//
// Aggregate is pure and total: an empty input yields the NotApplicable
// sentinel for every scalar field and empty histograms, never an error.
package analytics

import (
	"math"
	"sort"

	"github.com/courierlens/courierlens/internal/model"
)

// NotApplicable is the sentinel value for scalar fields of an empty snapshot.
const NotApplicable = "N/A"

// Price bucket labels, in display order.
const (
	BucketLow  = "0-50"
	BucketMid  = "51-100"
	BucketHigh = "101+"
)

// ComplaintCount is one bar of the complaint histogram.
type ComplaintCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AgentRating is one agent's mean rating.
type AgentRating struct {
	AgentName     string  `json:"agentName"`
	AverageRating float64 `json:"averageRating"`
}

// Snapshot is the derived analytics over one filtered review set.
type Snapshot struct {
	HasData             bool             `json:"hasData"`
	AverageRating       float64          `json:"averageRating"`
	TopAgent            string           `json:"topAgent"`
	BottomAgent         string           `json:"bottomAgent"`
	MostCommonComplaint string           `json:"mostCommonComplaint"`
	ComplaintHistogram  []ComplaintCount `json:"complaintHistogram"`
	PriceRangeHistogram map[string]int   `json:"priceRangeHistogram"`
}

// Empty returns the snapshot for an empty input set.
func Empty() Snapshot {
	return Snapshot{
		TopAgent:            NotApplicable,
		BottomAgent:         NotApplicable,
		MostCommonComplaint: NotApplicable,
		ComplaintHistogram:  []ComplaintCount{},
		PriceRangeHistogram: map[string]int{BucketLow: 0, BucketMid: 0, BucketHigh: 0},
	}
}

// Aggregate computes the Snapshot for the given review set.
func Aggregate(reviews []model.Review) Snapshot {
	if len(reviews) == 0 {
		return Empty()
	}

	snap := Empty()
	snap.HasData = true

	var ratingSum int
	for _, r := range reviews {
		ratingSum += r.Rating
	}
	snap.AverageRating = round2(float64(ratingSum) / float64(len(reviews)))

	snap.TopAgent, snap.BottomAgent = rankAgents(reviews)
	snap.MostCommonComplaint, snap.ComplaintHistogram = complaintHistogram(reviews)
	snap.PriceRangeHistogram = priceHistogram(reviews)

	return snap
}

// rankAgents groups reviews by agent name, computes per-agent mean ratings,
// and returns the best and worst agent. Ties keep the first-encountered
// agent, so the sort must be stable over first-seen order. A missing agent
// name falls into a single "Unknown" bucket.
func rankAgents(reviews []model.Review) (top, bottom string) {
	type agg struct {
		name  string
		total int
		count int
	}

	index := make(map[string]int)
	var agents []agg
	for _, r := range reviews {
		name := r.AgentName
		if name == "" {
			name = "Unknown"
		}
		i, ok := index[name]
		if !ok {
			i = len(agents)
			index[name] = i
			agents = append(agents, agg{name: name})
		}
		agents[i].total += r.Rating
		agents[i].count++
	}

	ranked := make([]AgentRating, len(agents))
	for i, a := range agents {
		ranked[i] = AgentRating{
			AgentName:     a.name,
			AverageRating: round2(float64(a.total) / float64(a.count)),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AverageRating > ranked[j].AverageRating
	})

	return ranked[0].AgentName, ranked[len(ranked)-1].AgentName
}

// complaintHistogram flattens all complaint tags, counts them, and returns
// the most common tag plus the top five counts in descending order. Ties
// keep first-seen tag order (stable sort).
func complaintHistogram(reviews []model.Review) (most string, top []ComplaintCount) {
	index := make(map[string]int)
	var counts []ComplaintCount
	for _, r := range reviews {
		for _, tag := range r.Complaints {
			if tag == "" {
				continue
			}
			i, ok := index[tag]
			if !ok {
				i = len(counts)
				index[tag] = i
				counts = append(counts, ComplaintCount{Tag: tag})
			}
			counts[i].Count++
		}
	}

	if len(counts) == 0 {
		return NotApplicable, []ComplaintCount{}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > 5 {
		counts = counts[:5]
	}
	return counts[0].Tag, counts
}

// priceHistogram buckets reviews by order price. A NaN price is excluded
// from this histogram only; the review still counts toward every other
// aggregate.
func priceHistogram(reviews []model.Review) map[string]int {
	buckets := map[string]int{BucketLow: 0, BucketMid: 0, BucketHigh: 0}
	for _, r := range reviews {
		switch p := r.OrderPrice; {
		case math.IsNaN(p):
		case p <= 50:
			buckets[BucketLow]++
		case p <= 100:
			buckets[BucketMid]++
		default:
			buckets[BucketHigh]++
		}
	}
	return buckets
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

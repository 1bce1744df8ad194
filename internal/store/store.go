// Package store holds the two review collections the dashboard works from:
// the paged slice of the last page fetch and the lazily fetched full
// collection. It owns the source-selection rule, so callers never reason
// about which collection is live.
package store

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/courierlens/courierlens/internal/model"
)

// loadState tracks the full collection lifecycle. An explicit tri-state
// rather than an emptiness check: a legitimately empty full collection must
// not look like "never loaded" and trigger a re-fetch.
type loadState int

const (
	notLoaded loadState = iota
	loading
	loaded
)

// Records owns both collections. All methods are safe for concurrent use;
// writes are serialized behind one mutex since a tag update and a page
// re-fetch may otherwise race on the same record.
type Records struct {
	mu sync.Mutex

	page    []model.Review
	pageSeq uint64
	total   int

	full      []model.Review
	fullState loadState

	sf singleflight.Group
}

// New creates an empty Records.
func New() *Records {
	return &Records{}
}

// SetPage replaces the paged slice with the result of a page fetch.
// Completions carrying a sequence number at or below an already applied one
// are stale and discarded, so a superseded fetch can never overwrite the
// state of a later request.
func (s *Records) SetPage(seq uint64, reviews []model.Review, totalCount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pageSeq != 0 && seq <= s.pageSeq {
		return false
	}
	s.pageSeq = seq
	s.page = cloneReviews(reviews)
	s.total = totalCount
	return true
}

// Page returns the paged slice and the unfiltered total count.
func (s *Records) Page() ([]model.Review, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneReviews(s.page), s.total
}

// EnsureFull loads the full collection exactly once. Concurrent callers
// while a load is in flight are coalesced onto the same fetch; once loaded,
// subsequent calls return immediately without re-fetching.
func (s *Records) EnsureFull(ctx context.Context, fetch func(context.Context) ([]model.Review, error)) error {
	s.mu.Lock()
	if s.fullState == loaded {
		s.mu.Unlock()
		return nil
	}
	s.fullState = loading
	s.mu.Unlock()

	_, err, _ := s.sf.Do("full", func() (any, error) {
		reviews, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.full = cloneReviews(reviews)
		s.fullState = loaded
		s.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		s.mu.Lock()
		if s.fullState == loading {
			s.fullState = notLoaded
		}
		s.mu.Unlock()
		return fmt.Errorf("store: load full collection: %w", err)
	}
	return nil
}

// FullLoaded reports whether the full collection has been fetched.
func (s *Records) FullLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullState == loaded
}

// Authoritative returns the collection consumers should read: the full
// collection when any filter criterion is applied (and it has loaded), the
// paged slice otherwise.
func (s *Records) Authoritative(filtered bool) []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	if filtered && s.fullState == loaded {
		return cloneReviews(s.full)
	}
	return cloneReviews(s.page)
}

// ApplyUpdate replaces the record matching updated.ID in both collections.
// A collection that does not hold the record is left unchanged; the update
// never inserts. Returns whether any collection held the record.
func (s *Records) ApplyUpdate(updated model.Review) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := replaceByID(s.page, updated)
	if replaceByID(s.full, updated) {
		found = true
	}
	return found
}

// Reset drops both collections, e.g. after a session invalidation.
func (s *Records) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page = nil
	s.pageSeq = 0
	s.total = 0
	s.full = nil
	s.fullState = notLoaded
}

func replaceByID(reviews []model.Review, updated model.Review) bool {
	for i := range reviews {
		if reviews[i].ID == updated.ID {
			reviews[i] = updated
			return true
		}
	}
	return false
}

func cloneReviews(in []model.Review) []model.Review {
	if in == nil {
		return nil
	}
	out := make([]model.Review, len(in))
	copy(out, in)
	return out
}

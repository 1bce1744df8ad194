package courierlens_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierlens/courierlens"
)

type staticSource struct {
	reviews []courierlens.Review
}

func (s *staticSource) FetchPage(ctx context.Context, cred courierlens.Credential, page, pageSize int) (courierlens.Page, error) {
	start := (page - 1) * pageSize
	if start > len(s.reviews) {
		start = len(s.reviews)
	}
	end := start + pageSize
	if end > len(s.reviews) {
		end = len(s.reviews)
	}
	return courierlens.Page{Reviews: s.reviews[start:end], TotalCount: len(s.reviews)}, nil
}

func (s *staticSource) FetchAll(ctx context.Context, cred courierlens.Credential) ([]courierlens.Review, error) {
	return s.reviews, nil
}

func (s *staticSource) FetchSummary(ctx context.Context, cred courierlens.Credential) (courierlens.ExternalSummary, error) {
	return courierlens.ExternalSummary{TopAgent: "Dana"}, nil
}

func (s *staticSource) UpdateTags(ctx context.Context, cred courierlens.Credential, reviewID string, patch courierlens.TagPatch) (courierlens.Review, error) {
	for i := range s.reviews {
		if s.reviews[i].ID == reviewID {
			s.reviews[i] = patch.Apply(s.reviews[i])
			return s.reviews[i], nil
		}
	}
	return courierlens.Review{}, courierlens.ErrNotFound
}

// The embedding surface: construct with options, drive the full
// refresh/filter/page cycle through the re-exported types.
func TestEmbeddedDashboard(t *testing.T) {
	src := &staticSource{}
	for i := range 7 {
		src.reviews = append(src.reviews, courierlens.Review{
			ID:        string(rune('a' + i)),
			AgentName: "Dana",
			Location:  "Queens",
			Rating:    (i % 5) + 1,
		})
	}

	d := courierlens.New(src,
		courierlens.WithCredential(courierlens.Credential{Token: "t", Role: courierlens.RoleViewer, Name: "embed"}),
		courierlens.WithPageSize(3),
		courierlens.WithQuietPeriod(time.Millisecond),
	)
	t.Cleanup(d.Close)

	require.NoError(t, d.Refresh(context.Background()))

	view := d.View()
	assert.Len(t, view.Reviews, 3)
	assert.Equal(t, 3, view.Pagination.TotalPages)

	require.NoError(t, d.SetDraftField("rating", "5"))
	require.NoError(t, d.ApplyFilters(context.Background()))
	view = d.View()
	assert.Len(t, view.Reviews, 1) // ratings cycle 1..5 over 7 reviews
	assert.Equal(t, 1, view.Pagination.TotalPages)

	summary, ok := d.Summary()
	require.True(t, ok)
	assert.Equal(t, "Dana", summary.TopAgent)
}

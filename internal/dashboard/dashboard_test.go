package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierlens/courierlens/internal/model"
)

// fakeSource is an in-memory Source with call counters and configurable
// failures.
type fakeSource struct {
	mu         sync.Mutex
	reviews    []model.Review
	pageErr    error
	summaryErr error
	allErr     error
	tagsErr    error
	allCalls   atomic.Int32
}

func (f *fakeSource) FetchPage(ctx context.Context, cred model.Credential, page, pageSize int) (model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return model.Page{}, f.pageErr
	}
	start := (page - 1) * pageSize
	if start > len(f.reviews) {
		start = len(f.reviews)
	}
	end := start + pageSize
	if end > len(f.reviews) {
		end = len(f.reviews)
	}
	out := make([]model.Review, end-start)
	copy(out, f.reviews[start:end])
	return model.Page{Reviews: out, TotalCount: len(f.reviews)}, nil
}

func (f *fakeSource) FetchAll(ctx context.Context, cred model.Credential) ([]model.Review, error) {
	f.allCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allErr != nil {
		return nil, f.allErr
	}
	out := make([]model.Review, len(f.reviews))
	copy(out, f.reviews)
	return out, nil
}

func (f *fakeSource) FetchSummary(ctx context.Context, cred model.Credential) (model.ExternalSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return model.ExternalSummary{}, f.summaryErr
	}
	return model.ExternalSummary{AverageRating: 3.5, TopAgent: "Dana"}, nil
}

func (f *fakeSource) UpdateTags(ctx context.Context, cred model.Credential, reviewID string, patch model.TagPatch) (model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tagsErr != nil {
		return model.Review{}, f.tagsErr
	}
	for i := range f.reviews {
		if f.reviews[i].ID == reviewID {
			f.reviews[i] = patch.Apply(f.reviews[i])
			return f.reviews[i], nil
		}
	}
	return model.Review{}, model.ErrNotFound
}

type recordingGate struct {
	calls atomic.Int32
}

func (g *recordingGate) Invalidate() { g.calls.Add(1) }

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Failure(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

func seedReviews() []model.Review {
	reviews := make([]model.Review, 0, 12)
	agents := []string{"Dana", "Omar", "Priya"}
	for i := range 12 {
		r := model.Review{
			ID:        string(rune('a' + i)),
			AgentName: agents[i%3],
			Location:  "New York",
			Rating:    (i % 4) + 1, // ratings 1..4, never 5
			Sentiment: model.SentimentNeutral,
		}
		reviews = append(reviews, r)
	}
	return reviews
}

func viewerCred() model.Credential {
	return model.Credential{Token: "tok", Role: model.RoleViewer, Name: "viewer"}
}

func adminCred() model.Credential {
	return model.Credential{Token: "tok", Role: model.RoleAdmin, Name: "admin"}
}

func newTestDashboard(t *testing.T, src Source) *Dashboard {
	t.Helper()
	d := New(src, Config{
		Credential:  viewerCred(),
		QuietPeriod: 5 * time.Millisecond,
	})
	t.Cleanup(d.Close)
	return d
}

func TestRefreshPopulatesPageAndSummary(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)

	require.NoError(t, d.Refresh(context.Background()))

	view := d.View()
	assert.Len(t, view.Reviews, 10)
	assert.Equal(t, 2, view.Pagination.TotalPages)
	assert.Equal(t, 1, view.Pagination.CurrentPage)
	assert.Equal(t, 12, view.Pagination.TotalItems)

	summary, ok := d.Summary()
	require.True(t, ok)
	assert.Equal(t, "Dana", summary.TopAgent)
}

func TestChangePageWithinUnfilteredRange(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))

	d.ChangePage(2)
	require.NoError(t, d.Refresh(context.Background()))
	view := d.View()
	assert.Equal(t, 2, view.Pagination.CurrentPage)
	assert.Len(t, view.Reviews, 2)

	// Out of range is a no-op.
	d.ChangePage(9)
	assert.Equal(t, 2, d.View().Pagination.CurrentPage)
	d.ChangePage(0)
	assert.Equal(t, 2, d.View().Pagination.CurrentPage)
}

func TestApplyFiltersLoadsFullCollectionOnce(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.SetDraftField("rating", "4"))
	require.NoError(t, d.ApplyFilters(context.Background()))
	assert.Equal(t, int32(1), src.allCalls.Load())

	view := d.View()
	assert.Len(t, view.Reviews, 3) // ratings cycle 1..4 over 12 reviews
	assert.Equal(t, 1, view.Pagination.TotalPages)

	// A second commit reuses the loaded collection.
	require.NoError(t, d.SetDraftField("rating", "2"))
	require.NoError(t, d.ApplyFilters(context.Background()))
	assert.Equal(t, int32(1), src.allCalls.Load())
}

func TestNoMatchesYieldsEmptyViewWithSentinels(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.SetDraftField("rating", "5"))
	require.NoError(t, d.ApplyFilters(context.Background()))

	view := d.View()
	assert.Empty(t, view.Reviews)
	assert.Equal(t, 1, view.Pagination.TotalPages)
	assert.Equal(t, 1, view.Pagination.CurrentPage)
	assert.False(t, view.Analytics.HasData)
	assert.Equal(t, "N/A", view.Analytics.TopAgent)
	assert.Equal(t, "N/A", view.Analytics.MostCommonComplaint)
}

func TestApplyFiltersClampsPage(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))
	d.ChangePage(2)

	// 3 matches fit one page, so page 2 collapses to 1.
	require.NoError(t, d.SetDraftField("rating", "4"))
	require.NoError(t, d.ApplyFilters(context.Background()))
	assert.Equal(t, 1, d.View().Pagination.CurrentPage)
}

func TestClearFiltersResetsToPageOne(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.SetDraftField("rating", "4"))
	require.NoError(t, d.ApplyFilters(context.Background()))
	d.ClearFilters()

	view := d.View()
	assert.True(t, view.Applied.IsEmpty())
	assert.True(t, view.Draft.IsEmpty())
	assert.Equal(t, 1, view.Pagination.CurrentPage)
	assert.Len(t, view.Reviews, 10)

	// Clearing again changes nothing.
	d.ClearFilters()
	assert.Equal(t, view.Pagination, d.View().Pagination)
}

func TestDraftEditsDoNotChangeView(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.SetDraftField("rating", "4"))
	view := d.View()
	assert.True(t, view.Applied.IsEmpty())
	assert.Len(t, view.Reviews, 10)
	assert.Equal(t, "4", view.Draft.Rating)
}

func TestSetDraftFieldUnknownField(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	assert.Error(t, d.SetDraftField("priority", "high"))
}

func TestUpdateTagsWithoutCredential(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))
	before := d.View()

	perf := model.PerformanceFast
	_, err := d.UpdateTags(context.Background(), model.Credential{}, "a", model.TagPatch{Performance: &perf})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	// Viewer role is equally rejected before the source is reached.
	_, err = d.UpdateTags(context.Background(), viewerCred(), "a", model.TagPatch{Performance: &perf})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	assert.Equal(t, before, d.View())
}

func TestUpdateTagsPatchesCollections(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	notifier := &recordingNotifier{}
	d := New(src, Config{
		Credential:  viewerCred(),
		Notifier:    notifier,
		QuietPeriod: 5 * time.Millisecond,
	})
	t.Cleanup(d.Close)
	require.NoError(t, d.Refresh(context.Background()))

	perf := model.PerformanceSlow
	updated, err := d.UpdateTags(context.Background(), adminCred(), "a", model.TagPatch{Performance: &perf})
	require.NoError(t, err)
	assert.Equal(t, model.PerformanceSlow, updated.Performance)

	view := d.View()
	assert.Equal(t, model.PerformanceSlow, view.Reviews[0].Performance)
	assert.NotEmpty(t, notifier.successes)
}

func TestSessionExpiryFiresGateOnce(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	gate := &recordingGate{}
	d := New(src, Config{
		Credential:  viewerCred(),
		Gate:        gate,
		QuietPeriod: 5 * time.Millisecond,
	})
	t.Cleanup(d.Close)
	require.NoError(t, d.Refresh(context.Background()))

	src.mu.Lock()
	src.pageErr = model.ErrSessionExpired
	src.mu.Unlock()

	err := d.Refresh(context.Background())
	require.ErrorIs(t, err, model.ErrSessionExpired)
	assert.Equal(t, int32(1), gate.calls.Load())

	// Subsequent operations fail fast without touching the source again.
	err = d.Refresh(context.Background())
	require.ErrorIs(t, err, model.ErrSessionExpired)
	assert.Equal(t, int32(1), gate.calls.Load())

	// A fresh credential re-arms the session.
	src.mu.Lock()
	src.pageErr = nil
	src.mu.Unlock()
	d.SetCredential(viewerCred())
	assert.NoError(t, d.Refresh(context.Background()))
}

func TestUpdateTagsSessionExpiryLeavesCollectionsUntouched(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	gate := &recordingGate{}
	d := New(src, Config{
		Credential:  viewerCred(),
		Gate:        gate,
		QuietPeriod: 5 * time.Millisecond,
	})
	t.Cleanup(d.Close)
	require.NoError(t, d.Refresh(context.Background()))
	before := d.View()

	src.mu.Lock()
	src.tagsErr = model.ErrSessionExpired
	src.mu.Unlock()

	perf := model.PerformanceFast
	_, err := d.UpdateTags(context.Background(), adminCred(), "a", model.TagPatch{Performance: &perf})
	require.ErrorIs(t, err, model.ErrSessionExpired)
	assert.Equal(t, int32(1), gate.calls.Load())
	assert.Equal(t, before, d.View())
}

func TestRefreshErrorPropagates(t *testing.T) {
	boom := errors.New("upstream down")
	src := &fakeSource{reviews: seedReviews(), pageErr: boom}
	notifier := &recordingNotifier{}
	d := New(src, Config{
		Credential:  viewerCred(),
		Notifier:    notifier,
		QuietPeriod: 5 * time.Millisecond,
	})
	t.Cleanup(d.Close)

	err := d.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
	assert.NotEmpty(t, notifier.failures)
}

func TestRefreshFailureLeavesStateUntouched(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)

	// The page fetch succeeds while the summary fetch fails; neither result
	// may land.
	boom := errors.New("summary service down")
	src.mu.Lock()
	src.summaryErr = boom
	src.mu.Unlock()

	err := d.Refresh(context.Background())
	require.ErrorIs(t, err, boom)

	assert.Empty(t, d.View().Reviews)
	_, ok := d.Summary()
	assert.False(t, ok)

	// A refresh that already populated the dashboard survives a later
	// failed one intact.
	src.mu.Lock()
	src.summaryErr = nil
	src.mu.Unlock()
	require.NoError(t, d.Refresh(context.Background()))
	before := d.View()

	src.mu.Lock()
	src.summaryErr = boom
	src.mu.Unlock()
	require.ErrorIs(t, d.Refresh(context.Background()), boom)
	assert.Equal(t, before, d.View())
}

func TestViewIsCachedUntilDirtied(t *testing.T) {
	src := &fakeSource{reviews: seedReviews()}
	d := newTestDashboard(t, src)
	require.NoError(t, d.Refresh(context.Background()))

	v1 := d.View()
	v2 := d.View()
	assert.Equal(t, v1, v2)

	require.NoError(t, d.SetDraftField("location", "new"))
	v3 := d.View()
	assert.Equal(t, "new", v3.Draft.Location)
}

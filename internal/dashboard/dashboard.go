// Package dashboard is the review-dashboard engine: it owns filter state,
// pagination, and analytics over a review collection supplied by a pluggable
// Source. The root courierlens package re-exports the engine for embedding;
// internal/server exposes it over HTTP.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courierlens/courierlens/internal/analytics"
	"github.com/courierlens/courierlens/internal/filter"
	"github.com/courierlens/courierlens/internal/model"
	"github.com/courierlens/courierlens/internal/pagination"
	"github.com/courierlens/courierlens/internal/store"
)

// Source supplies review records and applies tag mutations. Both the HTTP
// client (internal/remote) and the Postgres backend (internal/storage)
// satisfy it. Credentials are passed per call so a single Source can serve
// sessions with different tokens.
type Source interface {
	FetchPage(ctx context.Context, cred model.Credential, page, pageSize int) (model.Page, error)
	FetchAll(ctx context.Context, cred model.Credential) ([]model.Review, error)
	FetchSummary(ctx context.Context, cred model.Credential) (model.ExternalSummary, error)
	UpdateTags(ctx context.Context, cred model.Credential, reviewID string, patch model.TagPatch) (model.Review, error)
}

// Notifier receives success/failure reports from engine operations. The
// engine reports outcomes; wording and presentation belong to the consumer.
// Implementations must not block.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// SessionGate is told when the source rejects the engine's credential.
// Invalidate fires at most once per expiry occurrence; the consumer is
// expected to obtain a fresh credential and call Dashboard.SetCredential.
type SessionGate interface {
	Invalidate()
}

// View is everything a consumer needs to render the dashboard: the visible
// page of reviews, pagination, the local analytics snapshot, and both filter
// registers.
type View struct {
	Reviews    []model.Review     `json:"reviews"`
	Pagination pagination.State   `json:"pagination"`
	Analytics  analytics.Snapshot `json:"analytics"`
	Draft      filter.Criteria    `json:"draft"`
	Applied    filter.Criteria    `json:"applied"`
}

// Config holds the collaborators and tunables for a Dashboard. Zero values
// get defaults: slog.Default, DefaultPageSize, DefaultQuietPeriod.
type Config struct {
	Logger      *slog.Logger
	Notifier    Notifier
	Gate        SessionGate
	Credential  model.Credential
	PageSize    int
	QuietPeriod time.Duration
}

// Dashboard is the review-dashboard engine. All methods are safe for
// concurrent use; a single mutex serializes state writes so every observer
// sees filter state, page position, and collections move together.
type Dashboard struct {
	source   Source
	notifier Notifier
	gate     SessionGate
	logger   *slog.Logger

	pageSize int
	filters  *filter.Manager
	records  *store.Records

	fetchSeq atomic.Uint64

	mu          sync.Mutex
	cred        model.Credential
	expired     bool
	currentPage int
	summary     model.ExternalSummary
	hasSummary  bool
	cachedView  View
	viewDirty   bool
}

// New constructs a Dashboard over the given Source.
func New(source Source, cfg Config) *Dashboard {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	d := &Dashboard{
		source:      source,
		notifier:    cfg.Notifier,
		gate:        cfg.Gate,
		logger:      logger,
		pageSize:    pageSize,
		records:     store.New(),
		cred:        cfg.Credential,
		currentPage: 1,
		viewDirty:   true,
	}
	d.filters = filter.NewManager(cfg.QuietPeriod, func(c filter.Criteria) {
		// Informational only: the debounced mirror never changes what is
		// displayed, it just tells observers the draft has settled.
		logger.Debug("draft criteria settled", "criteria", c)
	})
	return d
}

// SetCredential installs a fresh credential and re-arms session handling
// after an expiry.
func (d *Dashboard) SetCredential(cred model.Credential) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cred = cred
	d.expired = false
}

// Refresh fetches the current page and the external analytics summary
// concurrently. Results are staged until both fetches succeed, so a failed
// Refresh leaves the collections and the summary exactly as they were. A
// stale page completion (superseded by a later Refresh) is discarded rather
// than applied.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.expired {
		d.mu.Unlock()
		return model.ErrSessionExpired
	}
	cred := d.cred
	page := d.currentPage
	d.mu.Unlock()

	seq := d.fetchSeq.Add(1)

	var (
		fetched model.Page
		summary model.ExternalSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := d.source.FetchPage(gctx, cred, page, d.pageSize)
		if err != nil {
			return fmt.Errorf("refresh page: %w", err)
		}
		fetched = p
		return nil
	})
	g.Go(func() error {
		s, err := d.source.FetchSummary(gctx, cred)
		if err != nil {
			return fmt.Errorf("refresh summary: %w", err)
		}
		summary = s
		return nil
	})

	if err := g.Wait(); err != nil {
		d.fail("refresh failed")
		return d.filterSessionErr(err)
	}

	d.records.SetPage(seq, fetched.Reviews, fetched.TotalCount)
	d.mu.Lock()
	d.summary = summary
	d.hasSummary = true
	d.clampPageLocked()
	d.viewDirty = true
	d.mu.Unlock()
	return nil
}

// SetDraftField updates one draft criterion. The applied register, and
// therefore the visible data, is untouched until ApplyFilters.
func (d *Dashboard) SetDraftField(field, value string) error {
	if err := d.filters.SetDraftField(field, value); err != nil {
		return err
	}
	d.mu.Lock()
	d.viewDirty = true
	d.mu.Unlock()
	return nil
}

// ApplyFilters commits the draft criteria. The first commit with any
// constraint triggers a one-time load of the full collection; subsequent
// commits reuse it. The page position is clamped to the filtered page count.
func (d *Dashboard) ApplyFilters(ctx context.Context) error {
	d.mu.Lock()
	if d.expired {
		d.mu.Unlock()
		return model.ErrSessionExpired
	}
	cred := d.cred
	d.mu.Unlock()

	applied := d.filters.Commit()

	if !applied.IsEmpty() && !d.records.FullLoaded() {
		err := d.records.EnsureFull(ctx, func(ctx context.Context) ([]model.Review, error) {
			return d.source.FetchAll(ctx, cred)
		})
		if err != nil {
			d.fail("loading all reviews failed")
			return d.filterSessionErr(err)
		}
	}

	d.mu.Lock()
	d.clampPageLocked()
	d.viewDirty = true
	d.mu.Unlock()
	return nil
}

// ClearFilters resets both filter registers and returns to page one.
// Idempotent: clearing an already-clear dashboard changes nothing.
func (d *Dashboard) ClearFilters() {
	d.filters.Clear()
	d.mu.Lock()
	d.currentPage = 1
	d.viewDirty = true
	d.mu.Unlock()
}

// ChangePage moves to the requested page. Requests outside the filtered
// page range are ignored.
func (d *Dashboard) ChangePage(page int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.paginationLocked()
	if page < 1 || page > st.TotalPages {
		return
	}
	d.currentPage = page
	d.viewDirty = true
}

// View returns the current dashboard view. The result is cached and only
// recomputed after an operation changed filter state, page position, or the
// collections.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.viewDirty {
		return d.cachedView
	}

	applied := d.filters.Applied()
	st := d.paginationLocked()
	d.currentPage = st.CurrentPage

	var visible []model.Review
	if applied.IsEmpty() {
		visible, _ = d.records.Page()
	} else {
		filtered := filter.Apply(d.records.Authoritative(true), applied)
		start, end := st.Window()
		visible = filtered[start:end]
	}

	d.cachedView = View{
		Reviews:    visible,
		Pagination: st,
		Analytics:  analytics.Aggregate(d.visibleSetLocked(applied)),
		Draft:      d.filters.Draft(),
		Applied:    applied,
	}
	d.viewDirty = false
	return d.cachedView
}

// UpdateTags applies a tag patch through the Source using the caller's own
// credential. Authorization is checked locally first: a missing token or a
// non-admin role never reaches the Source. On success the canonical record
// replaces the match in both collections; on failure nothing changes.
func (d *Dashboard) UpdateTags(ctx context.Context, caller model.Credential, reviewID string, patch model.TagPatch) (model.Review, error) {
	if !caller.Elevated() {
		return model.Review{}, model.ErrUnauthorized
	}
	if err := patch.Validate(); err != nil {
		return model.Review{}, err
	}

	canonical, err := d.source.UpdateTags(ctx, caller, reviewID, patch)
	if err != nil {
		d.fail("updating review tags failed")
		return model.Review{}, d.filterSessionErr(err)
	}

	d.records.ApplyUpdate(canonical)
	d.mu.Lock()
	d.viewDirty = true
	d.mu.Unlock()

	if d.notifier != nil {
		d.notifier.Success("review tags updated")
	}
	return canonical, nil
}

// Summary returns the last externally fetched analytics summary. The second
// return is false until the first successful Refresh.
func (d *Dashboard) Summary() (model.ExternalSummary, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.summary, d.hasSummary
}

// Draft returns the current draft criteria.
func (d *Dashboard) Draft() filter.Criteria { return d.filters.Draft() }

// Applied returns the currently applied criteria.
func (d *Dashboard) Applied() filter.Criteria { return d.filters.Applied() }

// Close releases the debounce timer. The Dashboard must not be used after
// Close.
func (d *Dashboard) Close() {
	d.filters.Cancel()
}

// paginationLocked computes pagination over whichever collection is
// authoritative for the applied criteria. Callers must hold d.mu.
func (d *Dashboard) paginationLocked() pagination.State {
	applied := d.filters.Applied()
	if applied.IsEmpty() {
		_, total := d.records.Page()
		return pagination.Compute(total, d.currentPage, d.pageSize)
	}
	filtered := filter.Apply(d.records.Authoritative(true), applied)
	return pagination.Compute(len(filtered), d.currentPage, d.pageSize)
}

// visibleSetLocked is the collection the analytics snapshot aggregates
// over: the filtered subset when criteria are applied, otherwise the
// current page. Callers must hold d.mu.
func (d *Dashboard) visibleSetLocked(applied filter.Criteria) []model.Review {
	if applied.IsEmpty() {
		reviews, _ := d.records.Page()
		return reviews
	}
	return filter.Apply(d.records.Authoritative(true), applied)
}

func (d *Dashboard) clampPageLocked() {
	st := d.paginationLocked()
	d.currentPage = st.CurrentPage
}

// filterSessionErr inspects err for a session expiry and, on the first
// occurrence, flags the session and fires the gate.
func (d *Dashboard) filterSessionErr(err error) error {
	if !errors.Is(err, model.ErrSessionExpired) {
		return err
	}

	d.mu.Lock()
	alreadyExpired := d.expired
	d.expired = true
	d.mu.Unlock()

	if !alreadyExpired {
		d.logger.Warn("session credential rejected by source")
		if d.gate != nil {
			d.gate.Invalidate()
		}
	}
	return err
}

func (d *Dashboard) fail(msg string) {
	if d.notifier != nil {
		d.notifier.Failure(msg)
	}
}

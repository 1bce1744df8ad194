package courierlens

import (
	"github.com/courierlens/courierlens/internal/analytics"
	"github.com/courierlens/courierlens/internal/filter"
	"github.com/courierlens/courierlens/internal/model"
	"github.com/courierlens/courierlens/internal/pagination"
)

// Public aliases for the types that cross the engine boundary. Aliases (not
// copies) so consumers and internal packages share one definition; internal
// packages never import this package, which keeps the import graph acyclic.

// Review is a single courier delivery review.
type Review = model.Review

// TagPatch is a partial update of a review's classification tags.
type TagPatch = model.TagPatch

// Page is one fetched page of reviews plus the unfiltered total.
type Page = model.Page

// ExternalSummary is the source-computed analytics summary, kept alongside
// the locally computed Snapshot for cross-checking.
type ExternalSummary = model.ExternalSummary

// Credential is a session token plus its dashboard role.
type Credential = model.Credential

// Role is a dashboard role.
type Role = model.Role

const (
	RoleAdmin  = model.RoleAdmin
	RoleViewer = model.RoleViewer
)

// Criteria is the set of filter constraints, one raw string per field.
type Criteria = filter.Criteria

// PaginationState describes the current page window.
type PaginationState = pagination.State

// Snapshot is the locally aggregated analytics over the authoritative
// collection.
type Snapshot = analytics.Snapshot

// Sentinel errors surfaced by engine operations.
var (
	ErrUnauthorized   = model.ErrUnauthorized
	ErrSessionExpired = model.ErrSessionExpired
	ErrNotFound       = model.ErrNotFound
)

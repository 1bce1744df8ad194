package courierlens

import (
	"log/slog"
	"time"

	"github.com/courierlens/courierlens/internal/dashboard"
	"github.com/courierlens/courierlens/internal/model"
)

// Option configures a Dashboard created by New.
type Option func(*dashboard.Config)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *dashboard.Config) { c.Logger = logger }
}

// WithNotifier sets the notifier that receives operation outcomes.
func WithNotifier(n Notifier) Option {
	return func(c *dashboard.Config) { c.Notifier = n }
}

// WithSessionGate sets the gate fired when the session credential is
// rejected by the source.
func WithSessionGate(g SessionGate) Option {
	return func(c *dashboard.Config) { c.Gate = g }
}

// WithCredential sets the credential the dashboard presents on its own
// fetches. Tag mutations always use the caller's credential instead.
func WithCredential(cred model.Credential) Option {
	return func(c *dashboard.Config) { c.Credential = cred }
}

// WithPageSize sets the page size. Defaults to 10.
func WithPageSize(n int) Option {
	return func(c *dashboard.Config) { c.PageSize = n }
}

// WithQuietPeriod sets how long draft edits must be quiet before the
// debounced mirror settles. Defaults to 500ms.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *dashboard.Config) { c.QuietPeriod = d }
}

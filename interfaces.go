package courierlens

import "github.com/courierlens/courierlens/internal/dashboard"

// Source supplies review records and applies tag mutations. Implementations
// ship with the module: the HTTP client in internal/remote and the Postgres
// backend in internal/storage. Any in-memory implementation works for tests.
type Source = dashboard.Source

// Notifier receives success/failure reports from dashboard operations.
type Notifier = dashboard.Notifier

// SessionGate is told, once per occurrence, when the Source rejects the
// dashboard's credential.
type SessionGate = dashboard.SessionGate

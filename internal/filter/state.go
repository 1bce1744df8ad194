package filter

import (
	"fmt"
	"sync"
	"time"
)

// DefaultQuietPeriod is the draft-edit debounce window.
const DefaultQuietPeriod = 500 * time.Millisecond

// Manager holds the two criteria registers: draft (latest user edits,
// updated immediately) and applied (used for actual filtering, updated only
// by Commit or Clear). A debounced mirror of the draft is maintained for
// preview purposes; it is informational only and never becomes applied on
// its own; Commit is the sole path from draft to applied.
type Manager struct {
	mu        sync.Mutex
	draft     Criteria
	applied   Criteria
	debounced Criteria
	gen       uint64

	debouncer *Debouncer
	onPreview func(Criteria)
}

// NewManager creates a Manager with the given debounce quiet period.
// onPreview, if non-nil, receives the debounced draft after each quiet
// period; it runs on the timer goroutine and must not block.
func NewManager(quiet time.Duration, onPreview func(Criteria)) *Manager {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Manager{
		debouncer: NewDebouncer(quiet),
		onPreview: onPreview,
	}
}

// SetDraftField replaces one draft field by name. The value is stored as-is;
// validation happens at filter time, where malformed values simply match
// nothing.
func (m *Manager) SetDraftField(field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch field {
	case "location":
		m.draft.Location = value
	case "orderType":
		m.draft.OrderType = value
	case "discountApplied":
		m.draft.DiscountApplied = value
	case "rating":
		m.draft.Rating = value
	case "performance":
		m.draft.Performance = value
	case "accuracy":
		m.draft.Accuracy = value
	case "sentiment":
		m.draft.Sentiment = value
	default:
		return fmt.Errorf("filter: unknown field %q", field)
	}

	snapshot := m.draft
	gen := m.gen
	m.debouncer.Debounce(func() {
		// A Commit or Clear between the edit and the quiet period expiring
		// makes this snapshot stale; drop it rather than resurrecting it.
		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			return
		}
		m.debounced = snapshot
		m.mu.Unlock()
		if m.onPreview != nil {
			m.onPreview(snapshot)
		}
	})
	return nil
}

// Commit atomically copies the draft into the applied register. No reader
// ever observes a partially updated applied set.
func (m *Manager) Commit() Criteria {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applied = m.draft
	m.gen++
	return m.applied
}

// Clear resets both registers to all-empty in one atomic step and cancels
// any pending debounce.
func (m *Manager) Clear() {
	m.debouncer.Cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = Criteria{}
	m.applied = Criteria{}
	m.debounced = Criteria{}
	m.gen++
}

// Draft returns the current draft criteria.
func (m *Manager) Draft() Criteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Applied returns the last committed criteria.
func (m *Manager) Applied() Criteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied
}

// Debounced returns the debounced mirror of the draft.
func (m *Manager) Debounced() Criteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debounced
}

// Cancel stops any pending debounce without touching either register. Call
// when the owning engine shuts down.
func (m *Manager) Cancel() {
	m.debouncer.Cancel()
}

// Generation increments on every Commit or Clear; downstream caches compare
// it to decide whether derived results are stale.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

package filter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDraftFieldUpdatesDraftOnly(t *testing.T) {
	m := NewManager(10*time.Millisecond, nil)

	require.NoError(t, m.SetDraftField("location", "chicago"))
	require.NoError(t, m.SetDraftField("rating", "4"))

	assert.Equal(t, Criteria{Location: "chicago", Rating: "4"}, m.Draft())
	assert.True(t, m.Applied().IsEmpty(), "applied untouched before commit")
}

func TestSetDraftFieldUnknownField(t *testing.T) {
	m := NewManager(10*time.Millisecond, nil)
	assert.Error(t, m.SetDraftField("favoriteColor", "blue"))
}

func TestCommitCopiesDraftToApplied(t *testing.T) {
	m := NewManager(10*time.Millisecond, nil)
	require.NoError(t, m.SetDraftField("sentiment", "Positive"))

	gen := m.Generation()
	applied := m.Commit()

	assert.Equal(t, Criteria{Sentiment: "Positive"}, applied)
	assert.Equal(t, applied, m.Applied())
	assert.Greater(t, m.Generation(), gen, "commit invalidates downstream caches")

	// Further draft edits do not leak into applied.
	require.NoError(t, m.SetDraftField("sentiment", "Negative"))
	assert.Equal(t, Criteria{Sentiment: "Positive"}, m.Applied())
}

func TestClearResetsBothRegisters(t *testing.T) {
	m := NewManager(10*time.Millisecond, nil)
	require.NoError(t, m.SetDraftField("location", "nyc"))
	m.Commit()

	m.Clear()
	assert.True(t, m.Draft().IsEmpty())
	assert.True(t, m.Applied().IsEmpty())
}

func TestClearIsIdempotent(t *testing.T) {
	m := NewManager(10*time.Millisecond, nil)
	require.NoError(t, m.SetDraftField("location", "nyc"))
	m.Commit()

	m.Clear()
	draft, applied := m.Draft(), m.Applied()
	m.Clear()
	assert.Equal(t, draft, m.Draft())
	assert.Equal(t, applied, m.Applied())
}

func TestDebouncedMirrorCollapsesRapidEdits(t *testing.T) {
	var mu sync.Mutex
	var previews []Criteria

	m := NewManager(30*time.Millisecond, func(c Criteria) {
		mu.Lock()
		previews = append(previews, c)
		mu.Unlock()
	})

	// Three edits inside one quiet period collapse to the last value.
	require.NoError(t, m.SetDraftField("location", "a"))
	require.NoError(t, m.SetDraftField("location", "ab"))
	require.NoError(t, m.SetDraftField("location", "abc"))

	assert.Eventually(t, func() bool {
		return m.Debounced().Location == "abc"
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, previews, 1)
	assert.Equal(t, "abc", previews[0].Location)
}

func TestDebouncedMirrorIsNeverApplied(t *testing.T) {
	m := NewManager(10*time.Millisecond, nil)
	require.NoError(t, m.SetDraftField("rating", "5"))

	assert.Eventually(t, func() bool {
		return m.Debounced().Rating == "5"
	}, time.Second, 5*time.Millisecond)

	assert.True(t, m.Applied().IsEmpty(), "only Commit moves draft to applied")
}

func TestClearDropsInFlightDebounceSnapshot(t *testing.T) {
	// A quiet period this short lets the timer fire while Clear runs, so
	// the iterations cover both orderings: callback cancelled in time, and
	// callback already scheduled when Clear zeroes the mirror. In neither
	// case may the stale snapshot reappear.
	m := NewManager(time.Millisecond, nil)
	defer m.Cancel()

	for i := 0; i < 50; i++ {
		require.NoError(t, m.SetDraftField("location", "austin"))
		time.Sleep(time.Millisecond)
		m.Clear()
		time.Sleep(3 * time.Millisecond)
		assert.True(t, m.Debounced().IsEmpty(), "iteration %d resurrected a cleared snapshot", i)
	}
}

func TestDebouncerCancelStopsPendingFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	d := NewDebouncer(20 * time.Millisecond)

	d.Debounce(func() { fired <- struct{}{} })
	d.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled debounce fired")
	case <-time.After(60 * time.Millisecond):
	}
}

package engine

import "time"

// WindowEntry is one attempt as seen by the load and flow estimators.
type WindowEntry struct {
	ReactionTime float64
	Success      bool
	Timestamp    time.Time
}

// SessionWindow is a bounded most-recent-N ring of attempts for one user.
// Oldest entries are evicted on overflow.
type SessionWindow struct {
	entries []WindowEntry
	head    int
	count   int
}

func NewSessionWindow(size int) *SessionWindow {
	if size < 1 {
		size = 1
	}
	return &SessionWindow{entries: make([]WindowEntry, size)}
}

func (w *SessionWindow) Push(e WindowEntry) {
	w.entries[w.head] = e
	w.head = (w.head + 1) % len(w.entries)
	if w.count < len(w.entries) {
		w.count++
	}
}

func (w *SessionWindow) Len() int { return w.count }

// Snapshot returns the entries oldest first.
func (w *SessionWindow) Snapshot() []WindowEntry {
	out := make([]WindowEntry, 0, w.count)
	start := w.head - w.count
	if start < 0 {
		start += len(w.entries)
	}
	for i := 0; i < w.count; i++ {
		out = append(out, w.entries[(start+i)%len(w.entries)])
	}
	return out
}

package media

import (
	"sort"
	"sync"
)

// Tracker holds the pending flag of every upload field. Flags are keyed by
// (session, field path) so concurrent uploads never share a slot.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]map[string]struct{})}
}

// Start marks path as uploading. It returns false if it already is.
func (t *Tracker) Start(session, path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := t.pending[session]
	if fields == nil {
		fields = make(map[string]struct{})
		t.pending[session] = fields
	}
	if _, busy := fields[path]; busy {
		return false
	}
	fields[path] = struct{}{}
	return true
}

// Done clears the flag of path.
func (t *Tracker) Done(session, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := t.pending[session]
	delete(fields, path)
	if len(fields) == 0 {
		delete(t.pending, session)
	}
}

// Pending lists the field paths still uploading for session, sorted.
func (t *Tracker) Pending(session string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.pending[session]))
	for p := range t.pending[session] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

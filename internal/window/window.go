// Package window holds the per-cycle lunch confirmation tally. The window is
// the only state shared between inbound Telegram responses and the scheduled
// deadline, so every mutation happens under one mutex: a response is either
// accepted before the window flips closed or rejected after, never lost in
// between.
package window

import "sync"

// Choice is a user's answer to the lunch prompt.
type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// Outcome reports what Record did with a response.
type Outcome int

const (
	// OutcomeRecorded means the response landed in the tally.
	OutcomeRecorded Outcome = iota
	// OutcomeExpired means the window was already closed; nothing changed.
	OutcomeExpired
)

// Window tallies yes/no responses while open. A user id lives in at most one
// of the two sets: a repeated response with the other choice moves it
// (last response wins).
type Window struct {
	mu   sync.Mutex
	yes  map[int64]struct{}
	no   map[int64]struct{}
	open bool
}

// New returns a closed window with empty tallies.
func New() *Window {
	return &Window{
		yes: make(map[int64]struct{}),
		no:  make(map[int64]struct{}),
	}
}

// Open clears both tallies and starts accepting responses.
func (w *Window) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.yes = make(map[int64]struct{})
	w.no = make(map[int64]struct{})
	w.open = true
}

// Record registers a response. Any recipient id is accepted; enrollment is
// checked at resolution time, not here. Returns OutcomeExpired without
// touching the tally when the window is closed.
func (w *Window) Record(userID int64, c Choice) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return OutcomeExpired
	}
	switch c {
	case ChoiceYes:
		delete(w.no, userID)
		w.yes[userID] = struct{}{}
	case ChoiceNo:
		delete(w.yes, userID)
		w.no[userID] = struct{}{}
	}
	return OutcomeRecorded
}

// Close stops accepting responses and returns a snapshot of both tallies. The
// flip and the snapshot happen in the same critical section, so a concurrent
// Record either made it into the snapshot or saw the window closed.
func (w *Window) Close() (yes, no map[int64]struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
	yes = make(map[int64]struct{}, len(w.yes))
	for id := range w.yes {
		yes[id] = struct{}{}
	}
	no = make(map[int64]struct{}, len(w.no))
	for id := range w.no {
		no[id] = struct{}{}
	}
	return yes, no
}

// IsOpen reports whether responses are currently accepted.
func (w *Window) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Counts returns the current tally sizes.
func (w *Window) Counts() (yes, no int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.yes), len(w.no)
}

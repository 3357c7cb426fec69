package reminders

import "sync"

// Locks serializes read-modify-write cycles on a single note between the
// evaluator and the command service. Entries are dropped once unused.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocks() *Locks {
	return &Locks{entries: make(map[string]*lockEntry)}
}

// Lock blocks until the note is free and returns the matching unlock func.
func (l *Locks) Lock(noteID string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[noteID]
	if !ok {
		e = &lockEntry{}
		l.entries[noteID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, noteID)
		}
		l.mu.Unlock()
	}
}

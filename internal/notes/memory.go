package notes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is a process-local Store. Notes are copied on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[primitive.ObjectID]*Note
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes: make(map[primitive.ObjectID]*Note),
		now:   time.Now,
	}
}

func (m *MemoryStore) Insert(_ context.Context, n *Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}
	n.UpdatedAt = n.CreatedAt
	m.notes[n.ID] = n.Clone()
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return n.Clone(), nil
}

func (m *MemoryStore) List(_ context.Context, q ListQuery) ([]*Note, error) {
	out := m.collect(func(n *Note) bool { return n.Owner == q.Owner })
	sortNewestFirst(out)
	return pageNotes(out, q.Offset, clampLimit(q.Limit, 50, 200)), nil
}

// Search matches every query term case-insensitively against title and content.
func (m *MemoryStore) Search(_ context.Context, q SearchQuery) ([]*Note, error) {
	terms := strings.Fields(strings.ToLower(q.Query))
	out := m.collect(func(n *Note) bool {
		if n.Owner != q.Owner {
			return false
		}
		if q.Since != nil && n.CreatedAt.Before(*q.Since) {
			return false
		}
		if q.Until != nil && n.CreatedAt.After(*q.Until) {
			return false
		}
		text := strings.ToLower(n.Title + " " + n.Content)
		for _, term := range terms {
			if !strings.Contains(text, term) {
				return false
			}
		}
		return true
	})
	sortNewestFirst(out)
	return pageNotes(out, q.Offset, clampLimit(q.Limit, 50, 200)), nil
}

func (m *MemoryStore) Delete(_ context.Context, owner string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[id]
	if !ok || n.Owner != owner {
		return ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *MemoryStore) Count(_ context.Context, owner string) (int64, error) {
	return int64(len(m.collect(func(n *Note) bool { return n.Owner == owner }))), nil
}

func (m *MemoryStore) Save(_ context.Context, n *Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[n.ID]; !ok {
		return ErrNoteNotFound
	}
	n.UpdatedAt = m.now()
	m.notes[n.ID] = n.Clone()
	return nil
}

func (m *MemoryStore) FindWithReminderOrDeadline(_ context.Context) ([]*Note, error) {
	return m.collect(func(n *Note) bool {
		return n.ReminderDate != nil || n.Deadline != nil
	}), nil
}

func (m *MemoryStore) FindUpcoming(_ context.Context, owner string) ([]*Note, error) {
	out := m.collect(func(n *Note) bool {
		return n.Owner == owner && n.ReminderDate != nil && (!n.NotificationSent || n.IsRecurring)
	})
	sortByReminderDate(out)
	return out, nil
}

func (m *MemoryStore) FindOverdue(_ context.Context, owner string, now time.Time) ([]*Note, error) {
	out := m.collect(func(n *Note) bool {
		return n.Owner == owner && n.IsOverdue && n.ReminderDate != nil && n.ReminderDate.Before(now)
	})
	sortByReminderDate(out)
	return out, nil
}

func (m *MemoryStore) collect(match func(*Note) bool) []*Note {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*Note{}
	for _, n := range m.notes {
		if match(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func sortNewestFirst(ns []*Note) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}

func sortByReminderDate(ns []*Note) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].ReminderDate.Before(*ns[j].ReminderDate)
	})
}

func pageNotes(ns []*Note, offset, limit int) []*Note {
	if offset >= len(ns) {
		return []*Note{}
	}
	if offset < 0 {
		offset = 0
	}
	ns = ns[offset:]
	if len(ns) > limit {
		ns = ns[:limit]
	}
	return ns
}

// Package notify keeps in-app notifications per user and serves them over HTTP.
package notify

import (
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

type Type string

const (
	TypeReminder Type = "reminder"
	TypeOverdue  Type = "overdue"
	TypeTest     Type = "test"
)

// Notification is a snapshot of a note taken when its reminder fired.
type Notification struct {
	ID        int64     `json:"id"`
	NoteID    string    `json:"noteId,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	DueDate   time.Time `json:"dueDate"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Sink holds each user's notifications in memory, oldest first. Nothing
// survives a restart.
type Sink struct {
	clk clock.Clock

	mu     sync.Mutex
	byUser map[string][]Notification
	lastID int64
}

func NewSink(clk clock.Clock) *Sink {
	return &Sink{
		clk:    clk,
		byUser: make(map[string][]Notification),
	}
}

// Append stamps n with a new id and the current time, marks it unread and
// adds it to the user's list. Ids are the emission time in milliseconds,
// bumped when needed so they stay strictly increasing.
func (s *Sink) Append(userID string, n Notification) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	n.ID = id
	n.Timestamp = now
	n.Read = false
	s.byUser[userID] = append(s.byUser[userID], n)
	return n
}

// List returns a copy of the user's notifications. It is never nil.
func (s *Sink) List(userID string) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.byUser[userID]))
	copy(out, s.byUser[userID])
	return out
}

// MarkRead flags the notification as read. It reports whether it was found;
// an unknown id is not an error.
func (s *Sink) MarkRead(userID string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return true
		}
	}
	return false
}

func (s *Sink) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byUser, userID)
}

// AddTest injects a synthetic notification that is not tied to any note.
func (s *Sink) AddTest(userID, title, content string) Notification {
	if title == "" {
		title = "Test notification"
	}
	if content == "" {
		content = "Notifications are working."
	}
	return s.Append(userID, Notification{
		Title:   title,
		Content: content,
		DueDate: s.clk.Now(),
		Type:    TypeTest,
	})
}

// Unread counts entries not yet marked read.
func Unread(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}

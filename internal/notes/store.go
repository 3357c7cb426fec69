package notes

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrInvalidNote  = errors.New("invalid note")
)

// Store persists notes. MongoStore is the production implementation;
// MemoryStore backs tests and local runs without a database.
type Store interface {
	Insert(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error)
	List(ctx context.Context, q ListQuery) ([]*Note, error)
	Search(ctx context.Context, q SearchQuery) ([]*Note, error)
	Delete(ctx context.Context, owner string, id primitive.ObjectID) error
	Count(ctx context.Context, owner string) (int64, error)

	// Save replaces the stored note with n. It returns ErrNoteNotFound if the
	// note no longer exists.
	Save(ctx context.Context, n *Note) error

	// FindWithReminderOrDeadline returns every note, across all owners, that
	// has a reminder date or a deadline.
	FindWithReminderOrDeadline(ctx context.Context) ([]*Note, error)
	// FindUpcoming returns the owner's notes with a reminder that has not
	// been sent yet, or that recurs, ordered by reminder date.
	FindUpcoming(ctx context.Context, owner string) ([]*Note, error)
	// FindOverdue returns the owner's overdue notes whose reminder date is
	// before now, ordered by reminder date.
	FindOverdue(ctx context.Context, owner string, now time.Time) ([]*Note, error)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

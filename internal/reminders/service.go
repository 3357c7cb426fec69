package reminders

import (
	"context"
	"time"

	"github.com/jmhodges/clock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"notekeeper/internal/notes"
	"notekeeper/internal/recurrence"
)

const (
	// DefaultSnooze is used when a snooze request names no duration.
	DefaultSnooze = 10 * time.Minute
	// MaxSnooze bounds how far a single snooze may push a reminder.
	MaxSnooze = 365 * 24 * time.Hour
)

// SnoozeMinutes converts a requested snooze length in minutes, rejecting
// values outside (0, MaxSnooze] before they can overflow a time.Duration.
func SnoozeMinutes(minutes int) (time.Duration, error) {
	if minutes <= 0 {
		return 0, invalid("snooze duration must be positive")
	}
	if int64(minutes) > int64(MaxSnooze/time.Minute) {
		return 0, invalid("snooze duration must be at most %s", MaxSnooze)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// SetReminderInput is the input for setting a note's reminder
type SetReminderInput struct {
	ReminderDate        string   `json:"reminderDate"`
	IsRecurring         bool     `json:"isRecurring"`
	RecurringPattern    string   `json:"recurringPattern,omitempty"`
	NotificationMethods []string `json:"notificationMethods,omitempty"`
}

// Service applies user reminder commands. Every command locks the note for
// the whole read-modify-write, the same lock the evaluator takes.
type Service struct {
	store notes.Store
	locks *Locks
	clk   clock.Clock
}

func NewService(store notes.Store, locks *Locks, clk clock.Clock) *Service {
	return &Service{store: store, locks: locks, clk: clk}
}

// SetReminder replaces the reminder on one of the owner's notes and resets
// its delivery state.
func (s *Service) SetReminder(ctx context.Context, owner, noteID string, in SetReminderInput) (*notes.Note, error) {
	if in.ReminderDate == "" {
		return nil, invalid("reminder date is required")
	}
	at, err := notes.ParseTime(in.ReminderDate)
	if err != nil {
		return nil, invalid("reminder date: %v", err)
	}

	var pattern recurrence.Pattern
	if in.IsRecurring {
		pattern, err = recurrence.Parse(in.RecurringPattern)
		if err != nil {
			return nil, invalid("%v", err)
		}
	}

	methods, err := parseMethods(in.NotificationMethods)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, owner, noteID, func(n *notes.Note, now time.Time) error {
		if !at.After(now) {
			return invalid("reminder date must be in the future")
		}
		n.ReminderDate = &at
		n.IsRecurring = in.IsRecurring
		n.RecurringPattern = pattern
		n.NotificationMethods = methods
		n.NotificationSent = false
		n.IsOverdue = false
		n.LastNotificationDate = nil
		return nil
	})
}

// RemoveReminder clears the reminder. The deadline is kept.
func (s *Service) RemoveReminder(ctx context.Context, owner, noteID string) (*notes.Note, error) {
	return s.update(ctx, owner, noteID, func(n *notes.Note, _ time.Time) error {
		n.ClearReminder()
		return nil
	})
}

// Acknowledge marks the current occurrence as handled. Recurring reminders
// move to their next occurrence, the same way a fired reminder does.
func (s *Service) Acknowledge(ctx context.Context, owner, noteID string) (*notes.Note, error) {
	return s.update(ctx, owner, noteID, func(n *notes.Note, now time.Time) error {
		n.NotificationSent = true
		n.LastNotificationDate = &now
		n.IsOverdue = false
		advanceRecurring(n)
		return nil
	})
}

// Snooze pushes the reminder to d from now.
func (s *Service) Snooze(ctx context.Context, owner, noteID string, d time.Duration) (*notes.Note, error) {
	if d <= 0 {
		return nil, invalid("snooze duration must be positive")
	}
	if d > MaxSnooze {
		return nil, invalid("snooze duration must be at most %s", MaxSnooze)
	}
	return s.update(ctx, owner, noteID, func(n *notes.Note, now time.Time) error {
		if n.ReminderDate == nil {
			return invalid("note has no reminder set")
		}
		at := now.Add(d)
		n.ReminderDate = &at
		n.NotificationSent = false
		n.IsOverdue = false
		return nil
	})
}

// Upcoming lists the owner's pending and recurring reminders, soonest first.
func (s *Service) Upcoming(ctx context.Context, owner string) ([]*notes.Note, error) {
	return s.store.FindUpcoming(ctx, owner)
}

// Overdue lists the owner's overdue notes, oldest reminder first.
func (s *Service) Overdue(ctx context.Context, owner string) ([]*notes.Note, error) {
	return s.store.FindOverdue(ctx, owner, s.clk.Now())
}

func (s *Service) update(ctx context.Context, owner, noteID string, mutate func(*notes.Note, time.Time) error) (*notes.Note, error) {
	oid, err := parseID(noteID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(oid.Hex())
	defer unlock()

	n, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if n.Owner != owner {
		return nil, notes.ErrNoteNotFound
	}

	if err := mutate(n, s.clk.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notes.ErrNoteNotFound
	}
	return oid, nil
}

func parseMethods(raw []string) ([]notes.NotificationMethod, error) {
	if len(raw) == 0 {
		return []notes.NotificationMethod{notes.MethodInApp}, nil
	}
	methods := make([]notes.NotificationMethod, 0, len(raw))
	for _, m := range raw {
		if notes.NotificationMethod(m) != notes.MethodInApp {
			return nil, invalid("unsupported notification method %q", m)
		}
		methods = append(methods, notes.MethodInApp)
	}
	return methods, nil
}

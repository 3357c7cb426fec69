package reminders

import (
	"time"

	"notekeeper/internal/notes"
	"notekeeper/internal/recurrence"
)

const (
	// DueSoonWindow is how far ahead of its due time a reminder fires.
	DueSoonWindow = 5 * time.Minute
	// RecurringDedupWindow suppresses repeat notifications for a recurring
	// note that already fired this recently.
	RecurringDedupWindow = 60 * time.Second
)

// SkipReason explains why a note does not fire on this pass.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipNoSchedule   SkipReason = "no reminder or deadline"
	SkipNotDue       SkipReason = "not due yet"
	SkipAlreadySent  SkipReason = "already notified"
	SkipRecentlySent SkipReason = "notified within dedup window"
)

// Decision is the outcome of classifying one note at one instant.
type Decision struct {
	DueDate time.Time
	Overdue bool
	DueSoon bool
	Skip    SkipReason
}

func (d Decision) Fire() bool { return d.Skip == SkipNone }

// Classify decides whether n should fire at now. It reads n and never
// modifies it.
//
// A deadline in the past, or a non-recurring reminder in the past, makes the
// note overdue. A recurring reminder never goes overdue from its reminder
// date alone.
func Classify(n *notes.Note, now time.Time) Decision {
	var d Decision
	switch {
	case n.ReminderDate != nil && n.Deadline != nil:
		d.DueDate = *n.ReminderDate
		if n.Deadline.Before(d.DueDate) {
			d.DueDate = *n.Deadline
		}
	case n.ReminderDate != nil:
		d.DueDate = *n.ReminderDate
	case n.Deadline != nil:
		d.DueDate = *n.Deadline
	default:
		d.Skip = SkipNoSchedule
		return d
	}

	d.Overdue = (n.Deadline != nil && n.Deadline.Before(now)) ||
		(n.ReminderDate != nil && n.ReminderDate.Before(now) && !n.IsRecurring)
	d.DueSoon = !d.DueDate.After(now.Add(DueSoonWindow))

	switch {
	case !d.Overdue && !d.DueSoon:
		d.Skip = SkipNotDue
	case n.NotificationSent && !n.IsRecurring:
		d.Skip = SkipAlreadySent
	case n.IsRecurring && n.LastNotificationDate != nil && now.Sub(*n.LastNotificationDate) < RecurringDedupWindow:
		d.Skip = SkipRecentlySent
	}
	return d
}

// markFired records that the current occurrence was notified at now. A
// recurring note moves on to its next occurrence with clean status flags.
func markFired(n *notes.Note, now time.Time, overdue bool) {
	n.NotificationSent = true
	n.LastNotificationDate = &now
	n.IsOverdue = overdue
	advanceRecurring(n)
}

func advanceRecurring(n *notes.Note) {
	if !n.IsRecurring || n.RecurringPattern == "" || n.ReminderDate == nil {
		return
	}
	next := recurrence.Next(*n.ReminderDate, n.RecurringPattern)
	n.ReminderDate = &next
	n.NotificationSent = false
	n.IsOverdue = false
}

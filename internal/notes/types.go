package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notekeeper/internal/recurrence"
)

// NotificationMethod is a delivery channel for reminders.
type NotificationMethod string

// MethodInApp delivers reminders to the in-process notification list.
const MethodInApp NotificationMethod = "in-app"

// Note is a user's note together with its reminder state.
type Note struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner   string             `bson:"owner" json:"owner"`
	Title   string             `bson:"title" json:"title"`
	Content string             `bson:"content" json:"content"` // markdown

	ReminderDate         *time.Time           `bson:"reminder_date" json:"reminderDate"`
	Deadline             *time.Time           `bson:"deadline" json:"deadline"`
	IsRecurring          bool                 `bson:"is_recurring" json:"isRecurring"`
	RecurringPattern     recurrence.Pattern   `bson:"recurring_pattern,omitempty" json:"recurringPattern,omitempty"`
	NotificationMethods  []NotificationMethod `bson:"notification_methods,omitempty" json:"notificationMethods"`
	NotificationSent     bool                 `bson:"notification_sent" json:"notificationSent"`
	IsOverdue            bool                 `bson:"is_overdue" json:"isOverdue"`
	LastNotificationDate *time.Time           `bson:"last_notification_date" json:"lastNotificationDate"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasMethod reports whether the note delivers through m. A note with no
// methods configured delivers in-app.
func (n *Note) HasMethod(m NotificationMethod) bool {
	if len(n.NotificationMethods) == 0 {
		return m == MethodInApp
	}
	for _, have := range n.NotificationMethods {
		if have == m {
			return true
		}
	}
	return false
}

// ClearReminder resets every reminder field. The deadline is a separate
// schedule and is left alone.
func (n *Note) ClearReminder() {
	n.ReminderDate = nil
	n.IsRecurring = false
	n.RecurringPattern = ""
	n.NotificationMethods = nil
	n.NotificationSent = false
	n.IsOverdue = false
	n.LastNotificationDate = nil
}

// Clone returns a deep copy of n.
func (n *Note) Clone() *Note {
	c := *n
	c.ReminderDate = cloneTime(n.ReminderDate)
	c.Deadline = cloneTime(n.Deadline)
	c.LastNotificationDate = cloneTime(n.LastNotificationDate)
	if n.NotificationMethods != nil {
		c.NotificationMethods = append([]NotificationMethod(nil), n.NotificationMethods...)
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CreateNoteInput is the input for creating a note
type CreateNoteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Deadline string `json:"deadline,omitempty"`
}

// SearchQuery represents search parameters
type SearchQuery struct {
	Owner  string
	Query  string     // full-text search query
	Since  *time.Time // notes after this date
	Until  *time.Time // notes before this date
	Limit  int
	Offset int
}

// ListQuery represents list parameters
type ListQuery struct {
	Owner  string
	Limit  int
	Offset int
}

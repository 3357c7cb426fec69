package models

import "time"

// NotificationView represents a notification for template rendering
type NotificationView struct {
	ID          int64
	Title       string
	ContentHTML string // rendered markdown
	Type        string
	DueDate     time.Time
	Timestamp   time.Time
	Read        bool
}

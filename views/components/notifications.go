package components

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"notekeeper/views/models"
)

// NotificationList renders the notification panel fragment. ContentHTML is
// written as-is; everything else is escaped.
func NotificationList(items []models.NotificationView, unread int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="notifications" data-unread="%d">`, unread); err != nil {
			return err
		}
		if len(items) == 0 {
			if _, err := io.WriteString(w, `<p class="notifications-empty">No notifications</p>`); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, `<ul class="notification-list">`); err != nil {
				return err
			}
			for _, item := range items {
				if err := NotificationItem(item).Render(ctx, w); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

func NotificationItem(item models.NotificationView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := "notification notification-" + item.Type
		if !item.Read {
			class += " unread"
		}
		_, err := fmt.Fprintf(w,
			`<li class="%s" id="notification-%d"><h4>%s</h4><time datetime="%s">due %s</time><div class="notification-body">%s</div></li>`,
			templ.EscapeString(class),
			item.ID,
			templ.EscapeString(item.Title),
			item.DueDate.UTC().Format(time.RFC3339),
			templ.EscapeString(item.DueDate.UTC().Format("Jan 2, 2006 15:04")),
			item.ContentHTML,
		)
		return err
	})
}

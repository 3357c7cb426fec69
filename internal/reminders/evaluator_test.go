package reminders

import (
	"context"
	"sync"
	"testing"
	"time"

	"notekeeper/internal/notes"
	"notekeeper/internal/notify"
	"notekeeper/internal/recurrence"
)

func TestRunPastOneShotReminderFiresOverdueOnce(t *testing.T) {
	e := newEnv(t)
	n := e.insert(t, &notes.Note{
		Owner:        "alice",
		Title:        "Pay rent",
		Content:      "transfer to landlord",
		ReminderDate: ptr(epoch.Add(-time.Second)),
	})

	sum := e.run(t)
	if sum.Scanned != 1 || sum.Notified != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}

	list := e.sink.List("alice")
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	got := list[0]
	if got.Type != notify.TypeOverdue {
		t.Errorf("expected overdue notification, got %s", got.Type)
	}
	if got.NoteID != n.ID.Hex() || got.Title != "Pay rent" || got.Content != "transfer to landlord" {
		t.Errorf("notification is not a snapshot of the note: %+v", got)
	}
	if !got.DueDate.Equal(epoch.Add(-time.Second)) {
		t.Errorf("due date = %s", got.DueDate)
	}

	saved := e.reload(t, n)
	if !saved.NotificationSent || !saved.IsOverdue {
		t.Errorf("expected sent and overdue, got sent=%v overdue=%v", saved.NotificationSent, saved.IsOverdue)
	}
	if saved.LastNotificationDate == nil || !saved.LastNotificationDate.Equal(epoch) {
		t.Errorf("last notification date = %v", saved.LastNotificationDate)
	}

	// Later passes do not repeat it.
	e.clk.Add(10 * time.Minute)
	e.run(t)
	if got := len(e.sink.List("alice")); got != 1 {
		t.Errorf("expected still 1 notification, got %d", got)
	}
}

func TestRunRecurringDailyAdvances(t *testing.T) {
	e := newEnv(t)
	due := epoch.Add(-time.Second)
	n := e.insert(t, &notes.Note{
		Owner:            "alice",
		ReminderDate:     ptr(due),
		IsRecurring:      true,
		RecurringPattern: recurrence.Daily,
	})

	e.run(t)

	list := e.sink.List("alice")
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if list[0].Type != notify.TypeReminder {
		t.Errorf("recurring reminder should not be overdue, got %s", list[0].Type)
	}

	saved := e.reload(t, n)
	if want := due.AddDate(0, 0, 1); !saved.ReminderDate.Equal(want) {
		t.Errorf("reminder date = %s, want %s", saved.ReminderDate, want)
	}
	if saved.NotificationSent || saved.IsOverdue {
		t.Errorf("next occurrence should start clean, got sent=%v overdue=%v", saved.NotificationSent, saved.IsOverdue)
	}
	if saved.LastNotificationDate == nil || !saved.LastNotificationDate.Equal(epoch) {
		t.Errorf("last notification date = %v", saved.LastNotificationDate)
	}
}

func TestRunRecurringDedupWindow(t *testing.T) {
	e := newEnv(t)
	// A past deadline keeps the note due on every pass.
	e.insert(t, &notes.Note{
		Owner:            "alice",
		ReminderDate:     ptr(epoch.Add(time.Minute)),
		Deadline:         ptr(epoch.Add(-time.Hour)),
		IsRecurring:      true,
		RecurringPattern: recurrence.Weekly,
	})

	e.run(t)
	e.clk.Add(30 * time.Second)
	e.run(t)

	if got := len(e.sink.List("alice")); got != 1 {
		t.Fatalf("two passes within the dedup window produced %d notifications", got)
	}

	e.clk.Add(31 * time.Second)
	e.run(t)
	if got := len(e.sink.List("alice")); got != 2 {
		t.Errorf("expected a second notification after the window, got %d", got)
	}
}

func TestRunDueSoonFiresBeforeReminderDate(t *testing.T) {
	e := newEnv(t)
	n := e.insert(t, &notes.Note{Owner: "alice", ReminderDate: ptr(epoch.Add(2 * time.Minute))})

	e.run(t)

	list := e.sink.List("alice")
	if len(list) != 1 || list[0].Type != notify.TypeReminder {
		t.Fatalf("expected one reminder notification, got %+v", list)
	}
	if saved := e.reload(t, n); !saved.NotificationSent || saved.IsOverdue {
		t.Errorf("expected sent and not overdue, got %+v", saved)
	}
}

func TestRunSkipsNotDue(t *testing.T) {
	e := newEnv(t)
	n := e.insert(t, &notes.Note{Owner: "alice", ReminderDate: ptr(epoch.Add(time.Hour))})
	e.insert(t, &notes.Note{Owner: "alice"})

	sum := e.run(t)
	if sum.Scanned != 1 || sum.Skipped != 1 || sum.Notified != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if got := len(e.sink.List("alice")); got != 0 {
		t.Errorf("expected no notifications, got %d", got)
	}
	if saved := e.reload(t, n); saved.NotificationSent || saved.LastNotificationDate != nil {
		t.Error("untouched note was modified")
	}
}

func TestRunDeadlineOnly(t *testing.T) {
	e := newEnv(t)
	e.insert(t, &notes.Note{Owner: "alice", Deadline: ptr(epoch.Add(-time.Minute))})

	e.run(t)

	list := e.sink.List("alice")
	if len(list) != 1 || list[0].Type != notify.TypeOverdue {
		t.Fatalf("expected one overdue notification, got %+v", list)
	}
}

func TestRunWithoutInAppMethodUpdatesStateOnly(t *testing.T) {
	e := newEnv(t)
	n := e.insert(t, &notes.Note{
		Owner:               "alice",
		ReminderDate:        ptr(epoch.Add(-time.Second)),
		NotificationMethods: []notes.NotificationMethod{"email"},
	})

	e.run(t)

	if got := len(e.sink.List("alice")); got != 0 {
		t.Errorf("expected no in-app notification, got %d", got)
	}
	if saved := e.reload(t, n); !saved.NotificationSent {
		t.Error("note should still be marked as sent")
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	e := newEnv(t)
	orphan := e.insert(t, &notes.Note{ReminderDate: ptr(epoch.Add(-time.Second))})
	broken := e.insert(t, &notes.Note{Owner: "alice", ReminderDate: ptr(epoch.Add(-time.Second))})
	healthy := e.insert(t, &notes.Note{Owner: "bob", ReminderDate: ptr(epoch.Add(-time.Second))})
	e.store.failSave[broken.ID] = true

	sum := e.run(t)

	if sum.Scanned != 3 || sum.Notified != 1 || sum.Failed != 1 || sum.Skipped != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if got := len(e.sink.List("bob")); got != 1 {
		t.Errorf("bob should be notified despite alice's failure, got %d", got)
	}
	if saved := e.reload(t, healthy); !saved.NotificationSent {
		t.Error("healthy note should be saved")
	}
	if saved := e.reload(t, orphan); saved.NotificationSent {
		t.Error("orphan note should be left alone")
	}
}

func TestRunScanFailure(t *testing.T) {
	e := newEnv(t)
	e.store.failScan = true
	if _, err := e.eval.Run(context.Background()); err == nil {
		t.Fatal("expected error when candidates cannot be loaded")
	}
}

func TestRunDoesNotLoseConcurrentSnooze(t *testing.T) {
	e := newEnv(t)
	n := e.insert(t, &notes.Note{Owner: "alice", ReminderDate: ptr(epoch.Add(-time.Second))})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.run(t)
	}()
	go func() {
		defer wg.Done()
		if _, err := e.svc.Snooze(context.Background(), "alice", n.ID.Hex(), time.Hour); err != nil {
			t.Errorf("Snooze failed: %v", err)
		}
	}()
	wg.Wait()

	saved := e.reload(t, n)
	notified := len(e.sink.List("alice")) == 1

	// Whichever ran last, its write must be whole.
	switch {
	case saved.ReminderDate.Equal(epoch.Add(time.Hour)):
		if saved.NotificationSent || saved.IsOverdue {
			t.Errorf("snooze applied last but flags were not reset: %+v", saved)
		}
	case notified:
		t.Errorf("evaluator applied last but reminder date is %s", saved.ReminderDate)
	default:
		t.Errorf("neither update is visible: %+v", saved)
	}
}

func TestRunSkipsNoteWithoutOwner(t *testing.T) {
	e := newEnv(t)
	orphan := e.insert(t, &notes.Note{Title: "orphan", ReminderDate: ptr(epoch.Add(-time.Minute))})
	owned := e.insert(t, &notes.Note{Owner: "alice", Title: "owned", ReminderDate: ptr(epoch.Add(-time.Minute))})

	sum := e.run(t)
	if sum.Scanned != 2 || sum.Notified != 1 || sum.Skipped != 1 || sum.Failed != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}

	list := e.sink.List("alice")
	if len(list) != 1 || list[0].NoteID != owned.ID.Hex() {
		t.Errorf("expected one notification for the owned note, got %+v", list)
	}
	if got := e.sink.List(""); len(got) != 0 {
		t.Errorf("ownerless note produced notifications: %+v", got)
	}

	saved := e.reload(t, orphan)
	if saved.NotificationSent || saved.IsOverdue || saved.LastNotificationDate != nil {
		t.Errorf("ownerless note was modified: %+v", saved)
	}
	if !e.reload(t, owned).NotificationSent {
		t.Error("owned note not marked sent")
	}
}

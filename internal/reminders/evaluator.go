package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmhodges/clock"

	"notekeeper/internal/notes"
	"notekeeper/internal/notify"
)

// Sink receives notifications emitted by the evaluator.
type Sink interface {
	Append(userID string, n notify.Notification) notify.Notification
}

// Summary counts what one evaluator pass did.
type Summary struct {
	Scanned  int
	Notified int
	Skipped  int
	Failed   int
}

// Evaluator scans every note with a reminder or deadline and notifies the
// owners of the ones that are due. It keeps no state between passes.
type Evaluator struct {
	store notes.Store
	sink  Sink
	locks *Locks
	clk   clock.Clock
	log   *slog.Logger
}

func NewEvaluator(store notes.Store, sink Sink, locks *Locks, clk clock.Clock, log *slog.Logger) *Evaluator {
	return &Evaluator{store: store, sink: sink, locks: locks, clk: clk, log: log}
}

// Run performs one pass. The clock is read once so every note in the pass is
// judged against the same instant. Failures on individual notes are logged
// and counted; only failing to load the candidates aborts the pass.
func (e *Evaluator) Run(ctx context.Context) (Summary, error) {
	now := e.clk.Now()

	candidates, err := e.store.FindWithReminderOrDeadline(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load reminder candidates: %w", err)
	}

	var sum Summary
	for _, c := range candidates {
		sum.Scanned++
		fired, err := e.process(ctx, c.ID.Hex(), now)
		switch {
		case errors.Is(err, ErrMissingOwner):
			e.log.Warn("skipping reminder for note without owner", "note_id", c.ID.Hex())
			sum.Skipped++
		case err != nil:
			e.log.Error("failed to process reminder", "note_id", c.ID.Hex(), "owner", c.Owner, "error", err)
			sum.Failed++
		case fired:
			sum.Notified++
		default:
			sum.Skipped++
		}
	}
	return sum, nil
}

// process re-reads the note under its lock so a concurrent command is never
// overwritten with the stale copy from the candidate scan.
func (e *Evaluator) process(ctx context.Context, noteID string, now time.Time) (bool, error) {
	unlock := e.locks.Lock(noteID)
	defer unlock()

	oid, err := parseID(noteID)
	if err != nil {
		return false, err
	}
	note, err := e.store.FindByID(ctx, oid)
	if errors.Is(err, notes.ErrNoteNotFound) {
		return false, nil // deleted since the scan
	}
	if err != nil {
		return false, err
	}

	d := Classify(note, now)
	if !d.Fire() {
		return false, nil
	}
	if note.Owner == "" {
		return false, ErrMissingOwner
	}

	if note.HasMethod(notes.MethodInApp) {
		typ := notify.TypeReminder
		if d.Overdue {
			typ = notify.TypeOverdue
		}
		e.sink.Append(note.Owner, notify.Notification{
			NoteID:  noteID,
			Title:   note.Title,
			Content: note.Content,
			DueDate: d.DueDate,
			Type:    typ,
		})
	}

	markFired(note, now, d.Overdue)
	if err := e.store.Save(ctx, note); err != nil {
		return false, fmt.Errorf("save note: %w", err)
	}

	e.log.Debug("reminder fired", "note_id", noteID, "owner", note.Owner, "overdue", d.Overdue)
	return true, nil
}

package reminders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"notekeeper/internal/notes"
	"notekeeper/internal/notify"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakyStore fails Save for selected notes.
type flakyStore struct {
	*notes.MemoryStore

	mu       sync.Mutex
	failSave map[primitive.ObjectID]bool
	failScan bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: notes.NewMemoryStore(), failSave: map[primitive.ObjectID]bool{}}
}

func (f *flakyStore) Save(ctx context.Context, n *notes.Note) error {
	f.mu.Lock()
	fail := f.failSave[n.ID]
	f.mu.Unlock()
	if fail {
		return errors.New("write conflict")
	}
	return f.MemoryStore.Save(ctx, n)
}

func (f *flakyStore) FindWithReminderOrDeadline(ctx context.Context) ([]*notes.Note, error) {
	if f.failScan {
		return nil, errors.New("connection refused")
	}
	return f.MemoryStore.FindWithReminderOrDeadline(ctx)
}

type env struct {
	store *flakyStore
	sink  *notify.Sink
	clk   clock.FakeClock
	locks *Locks
	eval  *Evaluator
	svc   *Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clk := clock.NewFake()
	clk.Set(epoch)
	store := newFlakyStore()
	sink := notify.NewSink(clk)
	locks := NewLocks()
	return &env{
		store: store,
		sink:  sink,
		clk:   clk,
		locks: locks,
		eval:  NewEvaluator(store, sink, locks, clk, discardLogger()),
		svc:   NewService(store, locks, clk),
	}
}

func (e *env) insert(t *testing.T, n *notes.Note) *notes.Note {
	t.Helper()
	if n.Title == "" {
		n.Title = "note"
	}
	if err := e.store.Insert(context.Background(), n); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	return n
}

func (e *env) reload(t *testing.T, n *notes.Note) *notes.Note {
	t.Helper()
	got, err := e.store.FindByID(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	return got
}

func (e *env) run(t *testing.T) Summary {
	t.Helper()
	sum, err := e.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return sum
}

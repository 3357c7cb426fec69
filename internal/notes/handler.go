package notes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"notekeeper/internal/auth"
	"notekeeper/internal/httpjson"
)

const defaultPageSize = 50

// Handler serves the caller's notes over REST. Every route is scoped to the
// user resolved by the auth middleware.
type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input CreateNoteInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), input)
	if err != nil {
		h.fail(w, "create note", err)
		return
	}
	httpjson.Write(w, note, http.StatusCreated)
}

// GetNote handles GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetByID(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.fail(w, "get note", err)
		return
	}
	httpjson.Write(w, note, http.StatusOK)
}

// ListNotes handles GET /api/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r.URL.Query())
	list, err := h.svc.List(r.Context(), ListQuery{
		Owner:  auth.UserID(r.Context()),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.fail(w, "list notes", err)
		return
	}
	httpjson.Write(w, list, http.StatusOK)
}

// SearchNotes handles GET /api/notes/search?q=&since=&until=
func (h *Handler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := SearchQuery{Owner: auth.UserID(r.Context()), Query: v.Get("q")}
	q.Limit, q.Offset = page(v)

	var err error
	if q.Since, err = optionalTime(v, "since"); err != nil {
		h.fail(w, "search notes", err)
		return
	}
	if q.Until, err = optionalTime(v, "until"); err != nil {
		h.fail(w, "search notes", err)
		return
	}

	list, err := h.svc.Search(r.Context(), q)
	if err != nil {
		h.fail(w, "search notes", err)
		return
	}
	httpjson.Write(w, list, http.StatusOK)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), r.PathValue("id")); err != nil {
		h.fail(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidNote):
		httpjson.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoteNotFound):
		httpjson.Error(w, "note not found", http.StatusNotFound)
	default:
		h.log.Error("failed to "+op, "error", err)
		httpjson.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func page(v url.Values) (limit, offset int) {
	return httpjson.ParseInt(v.Get("limit"), defaultPageSize), httpjson.ParseInt(v.Get("offset"), 0)
}

// optionalTime reads a date filter. Absent is nil; unparseable is ErrInvalidNote.
func optionalTime(v url.Values, key string) (*time.Time, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := ParseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidNote, key, err)
	}
	return &t, nil
}

package reminders

import (
	"errors"
	"log/slog"
	"net/http"

	"notekeeper/internal/auth"
	"notekeeper/internal/httpjson"
	"notekeeper/internal/notes"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// SetReminder handles PUT /api/notes/{id}/reminder
func (h *Handler) SetReminder(w http.ResponseWriter, r *http.Request) {
	var input SetReminderInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.SetReminder(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), input)
	h.respondNote(w, note, err, "set reminder")
}

// RemoveReminder handles DELETE /api/notes/{id}/reminder
func (h *Handler) RemoveReminder(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.RemoveReminder(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	h.respondNote(w, note, err, "remove reminder")
}

// Acknowledge handles POST /api/notes/{id}/reminder/acknowledge
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.Acknowledge(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	h.respondNote(w, note, err, "acknowledge reminder")
}

type snoozeInput struct {
	Minutes *int `json:"minutes"`
}

// Snooze handles POST /api/notes/{id}/reminder/snooze
func (h *Handler) Snooze(w http.ResponseWriter, r *http.Request) {
	var input snoozeInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	d := DefaultSnooze
	if input.Minutes != nil {
		var err error
		if d, err = SnoozeMinutes(*input.Minutes); err != nil {
			httpjson.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	note, err := h.svc.Snooze(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), d)
	h.respondNote(w, note, err, "snooze reminder")
}

// Upcoming handles GET /api/reminders/upcoming
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Upcoming(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.log.Error("failed to list upcoming reminders", "error", err)
		httpjson.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	httpjson.Write(w, map[string]any{"count": len(list), "reminders": list}, http.StatusOK)
}

// Overdue handles GET /api/reminders/overdue
func (h *Handler) Overdue(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Overdue(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.log.Error("failed to list overdue notes", "error", err)
		httpjson.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	httpjson.Write(w, map[string]any{"count": len(list), "notes": list}, http.StatusOK)
}

func (h *Handler) respondNote(w http.ResponseWriter, note *notes.Note, err error, op string) {
	switch {
	case err == nil:
		httpjson.Write(w, note, http.StatusOK)
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, notes.ErrNoteNotFound):
		httpjson.Error(w, "note not found", http.StatusNotFound)
	default:
		h.log.Error("failed to "+op, "error", err)
		httpjson.Error(w, "internal error", http.StatusInternalServerError)
	}
}

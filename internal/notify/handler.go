package notify

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"notekeeper/internal/auth"
	"notekeeper/internal/httpjson"
	"notekeeper/views/components"
	"notekeeper/views/models"
)

// Scanner runs one due-reminder pass on demand.
type Scanner interface {
	RunNow(ctx context.Context) error
}

type Handler struct {
	sink    *Sink
	scanner Scanner
	render  func(markdown string) string
	log     *slog.Logger
}

// NewHandler wires the notification routes. render converts note markdown to
// HTML for the fragment view.
func NewHandler(sink *Sink, scanner Scanner, render func(string) string, log *slog.Logger) *Handler {
	return &Handler{sink: sink, scanner: scanner, render: render, log: log}
}

type listResponse struct {
	Count         int            `json:"count"`
	Unread        int            `json:"unread"`
	Notifications []Notification `json:"notifications"`
}

func (h *Handler) listFor(userID string) listResponse {
	list := h.sink.List(userID)
	return listResponse{Count: len(list), Unread: Unread(list), Notifications: list}
}

// List handles GET /api/notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, h.listFor(auth.UserID(r.Context())), http.StatusOK)
}

// MarkRead handles PUT /api/notifications/{id}/read. Unknown ids are ignored.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if id, err := strconv.ParseInt(r.PathValue("id"), 10, 64); err == nil {
		if !h.sink.MarkRead(userID, id) {
			h.log.Debug("mark read: notification not found", "user", userID, "id", id)
		}
	}
	httpjson.Message(w, "notification marked as read")
}

// Check handles POST /api/notifications/check: one evaluator pass, then the
// caller's notifications.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.scanner.RunNow(r.Context()); err != nil {
		h.log.Error("on-demand reminder check failed", "error", err)
	}
	httpjson.Write(w, h.listFor(auth.UserID(r.Context())), http.StatusOK)
}

// Clear handles DELETE /api/notifications
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.sink.Clear(auth.UserID(r.Context()))
	httpjson.Message(w, "notifications cleared")
}

type testInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AddTest handles POST /api/notifications/test
func (h *Handler) AddTest(w http.ResponseWriter, r *http.Request) {
	var input testInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	userID := auth.UserID(r.Context())
	h.sink.AddTest(userID, input.Title, input.Content)
	httpjson.Write(w, map[string]any{
		"message": "test notification added",
		"count":   len(h.sink.List(userID)),
	}, http.StatusOK)
}

// Fragment handles GET /fragments/notifications (HTMX partial), newest first.
func (h *Handler) Fragment(w http.ResponseWriter, r *http.Request) {
	list := h.sink.List(auth.UserID(r.Context()))
	views := make([]models.NotificationView, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		n := list[i]
		views = append(views, models.NotificationView{
			ID:          n.ID,
			Title:       n.Title,
			ContentHTML: h.render(n.Content),
			Type:        string(n.Type),
			DueDate:     n.DueDate,
			Timestamp:   n.Timestamp,
			Read:        n.Read,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.NotificationList(views, Unread(list)).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render notifications", "error", err)
	}
}

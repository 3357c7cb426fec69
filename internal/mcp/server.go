package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"notekeeper/internal/auth"
	"notekeeper/internal/notes"
	"notekeeper/internal/notify"
	"notekeeper/internal/reminders"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Deps are the services the MCP tools call into.
type Deps struct {
	Notes     *notes.Service
	Reminders *reminders.Service
	Sink      *notify.Sink
}

// NewServer creates an MCP server with tools for reminder operations. Every
// tool acts on behalf of the caller stored in its context by NewHTTPHandler.
func NewServer(d Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"Notekeeper Reminders",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	noteArg := mcp.WithString("note_id",
		mcp.Required(),
		mcp.Description("The note ID (24-character hex string)"),
	)

	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a note with its reminder state."),
			noteArg,
		),
		handleGetNote(d.Notes),
	)

	s.AddTool(
		mcp.NewTool("list_upcoming_reminders",
			mcp.WithDescription("List the user's pending and recurring reminders, soonest first."),
		),
		handleUpcoming(d.Reminders),
	)

	s.AddTool(
		mcp.NewTool("list_overdue_notes",
			mcp.WithDescription("List the user's overdue notes, oldest reminder first."),
		),
		handleOverdue(d.Reminders),
	)

	s.AddTool(
		mcp.NewTool("set_reminder",
			mcp.WithDescription("Set or replace the reminder on a note. The date must be in the future."),
			noteArg,
			mcp.WithString("reminder_date",
				mcp.Required(),
				mcp.Description("When to remind (RFC3339 or YYYY-MM-DD HH:MM, UTC)"),
			),
			mcp.WithString("recurring_pattern",
				mcp.Description("Optional: daily, weekly, monthly or yearly. Omit for a one-shot reminder."),
			),
		),
		handleSetReminder(d.Reminders),
	)

	s.AddTool(
		mcp.NewTool("remove_reminder",
			mcp.WithDescription("Remove the reminder from a note. Its deadline is kept."),
			noteArg,
		),
		handleRemoveReminder(d.Reminders),
	)

	s.AddTool(
		mcp.NewTool("acknowledge_reminder",
			mcp.WithDescription("Acknowledge a reminder. Recurring reminders move to their next occurrence."),
			noteArg,
		),
		handleAcknowledge(d.Reminders),
	)

	s.AddTool(
		mcp.NewTool("snooze_reminder",
			mcp.WithDescription("Push a note's reminder into the future."),
			noteArg,
			mcp.WithNumber("minutes",
				mcp.Description("Minutes from now (default: 10)"),
			),
		),
		handleSnooze(d.Reminders),
	)

	s.AddTool(
		mcp.NewTool("list_notifications",
			mcp.WithDescription("List the user's in-app notifications, oldest first."),
		),
		handleListNotifications(d.Sink),
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP behind authn. Requests without
// a valid bearer token never reach a tool.
func NewHTTPHandler(s *server.MCPServer, authn *auth.Authenticator) http.Handler {
	h := server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return auth.WithUserID(ctx, auth.UserID(r.Context()))
		}),
	)
	return authn.Middleware(h)
}

func handleGetNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, noteID, errResult := requireUserAndNote(ctx, req)
		if errResult != nil {
			return errResult, nil
		}

		note, err := svc.GetByID(ctx, user, noteID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}
		return jsonResult(note), nil
	}
}

func handleUpcoming(svc *reminders.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := auth.UserID(ctx)
		if user == "" {
			return mcp.NewToolResultError("unauthenticated"), nil
		}

		list, err := svc.Upcoming(ctx, user)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list upcoming reminders: %v", err)), nil
		}
		return jsonResult(notesToResults(list)), nil
	}
}

func handleOverdue(svc *reminders.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := auth.UserID(ctx)
		if user == "" {
			return mcp.NewToolResultError("unauthenticated"), nil
		}

		list, err := svc.Overdue(ctx, user)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list overdue notes: %v", err)), nil
		}
		return jsonResult(notesToResults(list)), nil
	}
}

func handleSetReminder(svc *reminders.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, noteID, errResult := requireUserAndNote(ctx, req)
		if errResult != nil {
			return errResult, nil
		}
		date, err := req.RequireString("reminder_date")
		if err != nil {
			return mcp.NewToolResultError("reminder_date is required"), nil
		}

		in := reminders.SetReminderInput{ReminderDate: date}
		if pattern := strings.TrimSpace(req.GetString("recurring_pattern", "")); pattern != "" {
			in.IsRecurring = true
			in.RecurringPattern = pattern
		}

		note, err := svc.SetReminder(ctx, user, noteID, in)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to set reminder: %v", err)), nil
		}
		return jsonResult(noteToResult(note)), nil
	}
}

func handleRemoveReminder(svc *reminders.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, noteID, errResult := requireUserAndNote(ctx, req)
		if errResult != nil {
			return errResult, nil
		}

		note, err := svc.RemoveReminder(ctx, user, noteID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to remove reminder: %v", err)), nil
		}
		return jsonResult(noteToResult(note)), nil
	}
}

func handleAcknowledge(svc *reminders.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, noteID, errResult := requireUserAndNote(ctx, req)
		if errResult != nil {
			return errResult, nil
		}

		note, err := svc.Acknowledge(ctx, user, noteID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to acknowledge reminder: %v", err)), nil
		}
		return jsonResult(noteToResult(note)), nil
	}
}

func handleSnooze(svc *reminders.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, noteID, errResult := requireUserAndNote(ctx, req)
		if errResult != nil {
			return errResult, nil
		}

		d, err := reminders.SnoozeMinutes(req.GetInt("minutes", int(reminders.DefaultSnooze/time.Minute)))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to snooze reminder: %v", err)), nil
		}
		note, err := svc.Snooze(ctx, user, noteID, d)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to snooze reminder: %v", err)), nil
		}
		return jsonResult(noteToResult(note)), nil
	}
}

func handleListNotifications(sink *notify.Sink) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := auth.UserID(ctx)
		if user == "" {
			return mcp.NewToolResultError("unauthenticated"), nil
		}
		return jsonResult(sink.List(user)), nil
	}
}

// NoteResult is a note's reminder state in tool responses
type NoteResult struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	ReminderDate     *time.Time `json:"reminderDate"`
	Deadline         *time.Time `json:"deadline"`
	IsRecurring      bool       `json:"isRecurring"`
	RecurringPattern string     `json:"recurringPattern,omitempty"`
	NotificationSent bool       `json:"notificationSent"`
	IsOverdue        bool       `json:"isOverdue"`
}

// Helper functions

func requireUserAndNote(ctx context.Context, req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	user := auth.UserID(ctx)
	if user == "" {
		return "", "", mcp.NewToolResultError("unauthenticated")
	}
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return "", "", mcp.NewToolResultError("note_id is required")
	}
	return user, noteID, nil
}

func noteToResult(n *notes.Note) NoteResult {
	return NoteResult{
		ID:               n.ID.Hex(),
		Title:            n.Title,
		ReminderDate:     n.ReminderDate,
		Deadline:         n.Deadline,
		IsRecurring:      n.IsRecurring,
		RecurringPattern: string(n.RecurringPattern),
		NotificationSent: n.NotificationSent,
		IsOverdue:        n.IsOverdue,
	}
}

func notesToResults(list []*notes.Note) []NoteResult {
	results := make([]NoteResult, len(list))
	for i, n := range list {
		results[i] = noteToResult(n)
	}
	return results
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}

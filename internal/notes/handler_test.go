package notes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notekeeper/internal/auth"
)

func newTestMux() *http.ServeMux {
	h := NewHandler(NewService(NewMemoryStore()), slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/notes", h.CreateNote)
	mux.HandleFunc("GET /api/notes", h.ListNotes)
	mux.HandleFunc("GET /api/notes/search", h.SearchNotes)
	mux.HandleFunc("GET /api/notes/{id}", h.GetNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)
	return mux
}

func do(mux http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req = req.WithContext(auth.WithUserID(req.Context(), user))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestNoteLifecycle(t *testing.T) {
	mux := newTestMux()

	w := do(mux, http.MethodPost, "/api/notes", "alice", `{"title":"Taxes","content":"file **early**","deadline":"2025-04-15"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created Note
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Owner != "alice" || created.Deadline == nil || created.ReminderDate != nil {
		t.Errorf("unexpected note %+v", created)
	}
	id := created.ID.Hex()

	if w := do(mux, http.MethodGet, "/api/notes/"+id, "alice", ""); w.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", w.Code)
	}
	if w := do(mux, http.MethodGet, "/api/notes/"+id, "bob", ""); w.Code != http.StatusNotFound {
		t.Errorf("get by other user: expected 404, got %d", w.Code)
	}

	w = do(mux, http.MethodGet, "/api/notes/search?q=taxes", "alice", "")
	var found []Note
	json.NewDecoder(w.Body).Decode(&found)
	if len(found) != 1 {
		t.Errorf("search: expected 1 result, got %d", len(found))
	}

	w = do(mux, http.MethodGet, "/api/notes", "bob", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("bob's list should be empty, got %s", w.Body.String())
	}

	if w := do(mux, http.MethodDelete, "/api/notes/"+id, "bob", ""); w.Code != http.StatusNotFound {
		t.Errorf("delete by other user: expected 404, got %d", w.Code)
	}
	if w := do(mux, http.MethodDelete, "/api/notes/"+id, "alice", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	if w := do(mux, http.MethodGet, "/api/notes/"+id, "alice", ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	mux := newTestMux()
	for name, body := range map[string]string{
		"missing title": `{"content":"x"}`,
		"bad deadline":  `{"title":"x","deadline":"someday"}`,
		"bad json":      `{`,
	} {
		t.Run(name, func(t *testing.T) {
			if w := do(mux, http.MethodPost, "/api/notes", "alice", body); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if got := svc.RenderMarkdown("**bold**"); !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("unexpected render %q", got)
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-06-01T12:00:00Z", "2024-06-01T12:00:00.5+02:00", "2024-06-01 12:00", "2024-06-01"} {
		if _, err := ParseTime(s); err != nil {
			t.Errorf("ParseTime(%q) failed: %v", s, err)
		}
	}
	for _, s := range []string{"", "tomorrow", "06/01/2024"} {
		if _, err := ParseTime(s); err == nil {
			t.Errorf("ParseTime(%q) expected error", s)
		}
	}
}

func TestSearchNotesDateFilters(t *testing.T) {
	mux := newTestMux()
	if w := do(mux, http.MethodPost, "/api/notes", "alice", `{"title":"groceries"}`); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	tests := []struct {
		name  string
		query string
		code  int
		count int
	}{
		{"no filters", "q=groceries", http.StatusOK, 1},
		{"since far future", "q=groceries&since=2999-01-01", http.StatusOK, 0},
		{"until far past", "q=groceries&until=2000-01-01", http.StatusOK, 0},
		{"bad since", "q=groceries&since=yesterday", http.StatusBadRequest, 0},
		{"bad until", "q=groceries&until=soon", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(mux, http.MethodGet, "/api/notes/search?"+tt.query, "alice", "")
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
			if tt.code != http.StatusOK {
				return
			}
			var found []Note
			if err := json.NewDecoder(w.Body).Decode(&found); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(found) != tt.count {
				t.Errorf("expected %d results, got %d", tt.count, len(found))
			}
		})
	}
}

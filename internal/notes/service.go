package notes

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	store Store
	md    goldmark.Markdown
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		md:    goldmark.New(),
	}
}

// Create creates a new note owned by owner
func (s *Service) Create(ctx context.Context, owner string, input CreateNoteInput) (*Note, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidNote)
	}

	note := &Note{
		Owner:   owner,
		Title:   title,
		Content: input.Content,
	}

	if input.Deadline != "" {
		deadline, err := ParseTime(input.Deadline)
		if err != nil {
			return nil, fmt.Errorf("%w: deadline: %v", ErrInvalidNote, err)
		}
		note.Deadline = &deadline
	}

	if err := s.store.Insert(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// GetByID retrieves one of the owner's notes. Notes owned by someone else
// are reported as not found.
func (s *Service) GetByID(ctx context.Context, owner, id string) (*Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoteNotFound
	}
	note, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if note.Owner != owner {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// List retrieves the owner's notes
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Note, error) {
	return s.store.List(ctx, q)
}

// Search performs full-text search
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]*Note, error) {
	return s.store.Search(ctx, q)
}

// Delete removes one of the owner's notes
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoteNotFound
	}
	return s.store.Delete(ctx, owner, oid)
}

// RenderMarkdown converts markdown content to HTML
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return content // Return raw content on error
	}
	return buf.String()
}

// Count returns the owner's note count
func (s *Service) Count(ctx context.Context, owner string) (int64, error) {
	return s.store.Count(ctx, owner)
}

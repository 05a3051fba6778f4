package service

import (
	"context"
	"errors"
	"strings"

	"codefusion/internal/domain"
	"codefusion/internal/repository"
)

// ErrSnippetNotFound is returned when the requested snippet does not exist.
var ErrSnippetNotFound = errors.New("snippet not found")

// SnippetService coordinates snippet operations backed by the repository.
type SnippetService interface {
	SaveNew(ctx context.Context, username, title, htmlCode, cssCode, jsCode string) (*domain.Snippet, error)
	Save(ctx context.Context, id int64, htmlCode, cssCode, jsCode string) error
	Get(ctx context.Context, id int64) (*domain.Snippet, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Snippet, error)
	Search(ctx context.Context, username, title string) ([]domain.Snippet, error)
	Delete(ctx context.Context, id int64) error
}

type snippetService struct {
	snippets repository.SnippetRepository
}

func NewSnippetService(snippets repository.SnippetRepository) SnippetService {
	return &snippetService{snippets: snippets}
}

func (s *snippetService) SaveNew(ctx context.Context, username, title, htmlCode, cssCode, jsCode string) (*domain.Snippet, error) {
	username = strings.TrimSpace(username)
	title = strings.TrimSpace(title)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if title == "" {
		return nil, errors.New("title is required")
	}

	snippet := &domain.Snippet{
		Username: username,
		Title:    title,
		HTMLCode: htmlCode,
		CSSCode:  cssCode,
		JSCode:   jsCode,
	}
	if _, err := s.snippets.Create(ctx, snippet); err != nil {
		return nil, err
	}
	return snippet, nil
}

func (s *snippetService) Save(ctx context.Context, id int64, htmlCode, cssCode, jsCode string) error {
	if err := s.snippets.UpdateCode(ctx, id, htmlCode, cssCode, jsCode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSnippetNotFound
		}
		return err
	}
	return nil
}

func (s *snippetService) Get(ctx context.Context, id int64) (*domain.Snippet, error) {
	snippet, err := s.snippets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSnippetNotFound
		}
		return nil, err
	}
	return snippet, nil
}

func (s *snippetService) ListByUsername(ctx context.Context, username string) ([]domain.Snippet, error) {
	return s.snippets.ListByUsername(ctx, username)
}

func (s *snippetService) Search(ctx context.Context, username, title string) ([]domain.Snippet, error) {
	return s.snippets.SearchByTitle(ctx, username, title)
}

func (s *snippetService) Delete(ctx context.Context, id int64) error {
	if err := s.snippets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSnippetNotFound
		}
		return err
	}
	return nil
}

package repository

import (
	"context"

	"codefusion/internal/domain"
)

// SnippetRepository exposes persistence operations for code snippets.
type SnippetRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, snippet *domain.Snippet) (int64, error)
	UpdateCode(ctx context.Context, id int64, htmlCode, cssCode, jsCode string) error
	Get(ctx context.Context, id int64) (*domain.Snippet, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Snippet, error)
	SearchByTitle(ctx context.Context, username, title string) ([]domain.Snippet, error)
	Delete(ctx context.Context, id int64) error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codefusion/internal/domain"
	"codefusion/internal/repository"
)

const createSnippetsTable = `
CREATE TABLE IF NOT EXISTS snippets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	title TEXT NOT NULL,
	html_code TEXT NOT NULL DEFAULT '',
	css_code TEXT NOT NULL DEFAULT '',
	js_code TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snippets_username ON snippets(username);
`

type SnippetRepository struct {
	db *sql.DB
}

func NewSnippetRepository(db *sql.DB) repository.SnippetRepository {
	return &SnippetRepository{db: db}
}

func (r *SnippetRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSnippetsTable); err != nil {
		return fmt.Errorf("create snippets table: %w", err)
	}
	return nil
}

func (r *SnippetRepository) Create(ctx context.Context, snippet *domain.Snippet) (int64, error) {
	now := time.Now().UTC()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO snippets (username, title, html_code, css_code, js_code, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snippet.Username,
		snippet.Title,
		snippet.HTMLCode,
		snippet.CSSCode,
		snippet.JSCode,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snippet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snippet last insert id: %w", err)
	}
	snippet.ID = id
	return id, nil
}

func (r *SnippetRepository) UpdateCode(ctx context.Context, id int64, htmlCode, cssCode, jsCode string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE snippets SET html_code = ?, css_code = ?, js_code = ?, updated_at = ? WHERE id = ?`,
		htmlCode,
		cssCode,
		jsCode,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update snippet code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update snippet rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("snippet %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *SnippetRepository) Get(ctx context.Context, id int64) (*domain.Snippet, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, title, html_code, css_code, js_code, created_at, updated_at
FROM snippets
WHERE id = ?`,
		id,
	)
	return scanSnippet(row)
}

func (r *SnippetRepository) ListByUsername(ctx context.Context, username string) ([]domain.Snippet, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, title, html_code, css_code, js_code, created_at, updated_at
FROM snippets
WHERE username = ?
ORDER BY updated_at DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	defer rows.Close()
	return collectSnippets(rows)
}

func (r *SnippetRepository) SearchByTitle(ctx context.Context, username, title string) ([]domain.Snippet, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, title, html_code, css_code, js_code, created_at, updated_at
FROM snippets
WHERE username = ? AND title LIKE '%' || ? || '%'
ORDER BY updated_at DESC`,
		username,
		title,
	)
	if err != nil {
		return nil, fmt.Errorf("search snippets: %w", err)
	}
	defer rows.Close()
	return collectSnippets(rows)
}

func (r *SnippetRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snippet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snippet rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("snippet %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func collectSnippets(rows *sql.Rows) ([]domain.Snippet, error) {
	var snippets []domain.Snippet
	for rows.Next() {
		snippet, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, *snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snippets: %w", err)
	}
	return snippets, nil
}

func scanSnippet(row interface {
	Scan(dest ...any) error
}) (*domain.Snippet, error) {
	var snippet domain.Snippet
	if err := row.Scan(
		&snippet.ID,
		&snippet.Username,
		&snippet.Title,
		&snippet.HTMLCode,
		&snippet.CSSCode,
		&snippet.JSCode,
		&snippet.CreatedAt,
		&snippet.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snippet: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan snippet: %w", err)
	}
	return &snippet, nil
}

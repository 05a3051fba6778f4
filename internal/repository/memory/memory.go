// Package memory provides in-memory repository implementations for tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"codefusion/internal/domain"
	"codefusion/internal/repository"
)

type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) Init(ctx context.Context) error { return nil }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return 0, fmt.Errorf("user: %w", repository.ErrDuplicate)
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return 0, fmt.Errorf("user: %w", repository.ErrDuplicate)
		}
	}

	r.nextID++
	user.ID = r.nextID
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.users[user.Username] = &clone
	return user.ID, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) SetLoggedIn(ctx context.Context, username string, loggedIn bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	user.IsLoggedIn = loggedIn
	user.UpdatedAt = time.Now().UTC()
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

type SnippetRepository struct {
	mu       sync.Mutex
	nextID   int64
	snippets map[int64]*domain.Snippet
}

func NewSnippetRepository() *SnippetRepository {
	return &SnippetRepository{snippets: make(map[int64]*domain.Snippet)}
}

func (r *SnippetRepository) Init(ctx context.Context) error { return nil }

func (r *SnippetRepository) Create(ctx context.Context, snippet *domain.Snippet) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	snippet.ID = r.nextID
	now := time.Now().UTC()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	clone := *snippet
	r.snippets[snippet.ID] = &clone
	return snippet.ID, nil
}

func (r *SnippetRepository) UpdateCode(ctx context.Context, id int64, htmlCode, cssCode, jsCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snippet, ok := r.snippets[id]
	if !ok {
		return fmt.Errorf("snippet %d: %w", id, repository.ErrNotFound)
	}
	snippet.HTMLCode = htmlCode
	snippet.CSSCode = cssCode
	snippet.JSCode = jsCode
	snippet.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *SnippetRepository) Get(ctx context.Context, id int64) (*domain.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snippet, ok := r.snippets[id]
	if !ok {
		return nil, fmt.Errorf("snippet: %w", repository.ErrNotFound)
	}
	clone := *snippet
	return &clone, nil
}

func (r *SnippetRepository) ListByUsername(ctx context.Context, username string) ([]domain.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Snippet
	for _, snippet := range r.snippets {
		if snippet.Username == username {
			result = append(result, *snippet)
		}
	}
	return result, nil
}

func (r *SnippetRepository) SearchByTitle(ctx context.Context, username, title string) ([]domain.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// sqlite LIKE is case-insensitive for ASCII; match that here
	needle := strings.ToLower(title)
	var result []domain.Snippet
	for _, snippet := range r.snippets {
		if snippet.Username == username && strings.Contains(strings.ToLower(snippet.Title), needle) {
			result = append(result, *snippet)
		}
	}
	return result, nil
}

func (r *SnippetRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snippets[id]; !ok {
		return fmt.Errorf("snippet %d: %w", id, repository.ErrNotFound)
	}
	delete(r.snippets, id)
	return nil
}

var _ repository.SnippetRepository = (*SnippetRepository)(nil)

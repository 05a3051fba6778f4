package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"codefusion/internal/domain"
	"codefusion/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when the named user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when signing up with a taken username or email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrWrongAnswers indicates the recovery challenge answers did not match.
	ErrWrongAnswers = errors.New("wrong answers")
)

// UserService describes account lifecycle and credential operations.
type UserService interface {
	Register(ctx context.Context, username, email, password, school, firstName, birthCity string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	VerifyRecoveryAnswers(ctx context.Context, username, school, firstName, birthCity string) (*domain.User, error)
	ChangePassword(ctx context.Context, username, newPassword string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, username, email, password, school, firstName, birthCity string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" {
		return nil, errors.New("username is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		School:       strings.TrimSpace(school),
		FirstName:    strings.TrimSpace(firstName),
		BirthCity:    strings.TrimSpace(birthCity),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Advisory flag only; nothing in the auth flow enforces single-session.
	if err := s.users.SetLoggedIn(ctx, username, true); err != nil {
		return nil, err
	}
	user.IsLoggedIn = true

	return sanitizeUser(user), nil
}

func (s *userService) VerifyRecoveryAnswers(ctx context.Context, username, school, firstName, birthCity string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(school), user.School) ||
		!strings.EqualFold(strings.TrimSpace(firstName), user.FirstName) ||
		!strings.EqualFold(strings.TrimSpace(birthCity), user.BirthCity) {
		return nil, ErrWrongAnswers
	}

	return sanitizeUser(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, username, newPassword string) error {
	username = strings.TrimSpace(username)
	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return errors.New("password is required")
	}

	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, username, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// sanitizeUser strips the password hash before the user leaves the service layer.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}

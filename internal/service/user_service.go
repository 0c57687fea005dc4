package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"iron-coder/internal/domain"
	"iron-coder/internal/repository"
)

var (
	// ErrDuplicateUsername is returned when registering a username that is already stored.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidUsername indicates an empty username or one containing whitespace.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword indicates a password the store cannot represent.
	ErrInvalidPassword = errors.New("invalid password")
)

const (
	// MaxUsernameLength bounds usernames in bytes.
	MaxUsernameLength = 256
	maxStoredPassword = 1024
)

// UserService exposes the credential store operations to the UI layer.
type UserService interface {
	Exists(ctx context.Context, username string) (bool, error)
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Verify(ctx context.Context, username, password string) (bool, error)
}

type userService struct {
	users  repository.UserRepository
	hasher Hasher
	logger logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, hasher Hasher, logger logrus.FieldLogger) UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &userService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

func (s *userService) Exists(ctx context.Context, username string) (bool, error) {
	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidPassword)
	}

	// cheap rejection before paying for a hash; Create re-checks atomically
	taken, err := s.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	if strings.IndexFunc(hash, unicode.IsSpace) >= 0 {
		return nil, fmt.Errorf("%w: must not contain whitespace", ErrInvalidPassword)
	}
	if len(hash) > maxStoredPassword {
		return nil, fmt.Errorf("%w: longer than %d bytes", ErrInvalidPassword, maxStoredPassword)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.WithField("username", username).Info("user registered")
	return sanitizeUser(user), nil
}

// Verify is read-only. A missing user and a wrong password both yield false.
func (s *userService) Verify(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	users, err := s.users.ListByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("verify credentials: %w", err)
	}
	for _, user := range users {
		if s.hasher.Compare(user.PasswordHash, password) {
			return true, nil
		}
	}
	return false, nil
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUsername)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidUsername, MaxUsernameLength)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: must not contain whitespace", ErrInvalidUsername)
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"iron-coder/internal/domain"
)

var (
	// ErrUserExists is returned by Create when the username is already stored.
	ErrUserExists = errors.New("user already exists")
	// ErrMalformedRecord is returned by strict stores on an unparsable record.
	ErrMalformedRecord = errors.New("malformed record")
)

// ParseMode controls how a store treats records it cannot parse.
type ParseMode string

const (
	// ParsePermissive skips malformed records.
	ParsePermissive ParseMode = "permissive"
	// ParseStrict fails the whole scan on the first malformed record.
	ParseStrict ParseMode = "strict"
)

// ParseParseMode validates a configured parse mode. Empty means permissive.
func ParseParseMode(s string) (ParseMode, error) {
	switch ParseMode(s) {
	case "", ParsePermissive:
		return ParsePermissive, nil
	case ParseStrict:
		return ParseStrict, nil
	default:
		return "", fmt.Errorf("unknown parse mode %q", s)
	}
}

// UserRepository is the append-only credential store.
type UserRepository interface {
	Init(ctx context.Context) error
	// Exists reports whether any record carries exactly this username.
	Exists(ctx context.Context, username string) (bool, error)
	// Create appends the user unless the username is taken, in which case it
	// returns ErrUserExists and writes nothing. The check and the append are atomic.
	Create(ctx context.Context, user *domain.User) error
	// ListByUsername returns every record for username in storage order.
	ListByUsername(ctx context.Context, username string) ([]domain.User, error)
}

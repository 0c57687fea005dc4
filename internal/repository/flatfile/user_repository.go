package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"iron-coder/internal/domain"
	"iron-coder/internal/repository"
)

const maxLineSize = 64 * 1024

// UserRepository stores one record per line in a plain text file. Records are only
// ever appended.
type UserRepository struct {
	path   string
	mode   repository.ParseMode
	logger logrus.FieldLogger

	// mu serialises the read-check-append in Create against all other access.
	mu sync.RWMutex
}

func NewUserRepository(path string, mode repository.ParseMode, logger logrus.FieldLogger) *UserRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if mode == "" {
		mode = repository.ParsePermissive
	}
	return &UserRepository{
		path:   path,
		mode:   mode,
		logger: logger.WithField("store", path),
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Path returns the backing file.
func (r *UserRepository) Path() string {
	return r.path
}

// Init makes sure the parent directory exists. The file itself is created lazily
// on the first registration.
func (r *UserRepository) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	return nil
}

func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exists(ctx, username)
}

func (r *UserRepository) exists(ctx context.Context, username string) (bool, error) {
	found := false
	err := r.scan(ctx, func(user domain.User) bool {
		if user.Username == username {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	line, err := formatRecord(user)
	if err != nil {
		return fmt.Errorf("format record: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.touch(); err != nil {
		return err
	}

	taken, err := r.exists(ctx, user.Username)
	if err != nil {
		return err
	}
	if taken {
		return repository.ErrUserExists
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open store for append: %w", err)
	}

	needsNewline, err := missingTrailingNewline(r.path)
	if err != nil {
		_ = f.Close()
		return err
	}
	if needsNewline {
		line = "\n" + line
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	r.logger.WithField("username", user.Username).Debug("record appended")
	return nil
}

func (r *UserRepository) ListByUsername(ctx context.Context, username string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []domain.User
	err := r.scan(ctx, func(user domain.User) bool {
		if user.Username == username {
			users = append(users, user)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// touch creates an empty store file if none exists.
func (r *UserRepository) touch() error {
	f, err := os.OpenFile(r.path, os.O_RDONLY|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	return f.Close()
}

// scan feeds every parsable record to fn in file order until fn returns false.
// A missing file is an empty store.
func (r *UserRepository) scan(ctx context.Context, fn func(domain.User) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	lineNo := 0
	for {
		line, tooLong, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read store: %w", err)
		}
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			user domain.User
			ok   bool
		)
		if tooLong {
			err = fmt.Errorf("%w: longer than %d bytes", repository.ErrMalformedRecord, maxLineSize)
		} else {
			user, ok, err = parseRecord(line, r.mode)
		}
		if err != nil {
			if r.mode == repository.ParseStrict {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			r.logger.WithField("line", lineNo).Warnf("skipping record: %v", err)
			continue
		}
		if !ok {
			continue
		}
		if !fn(user) {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. Lines over maxLineSize
// are consumed in full but reported as tooLong with no content. err is io.EOF
// only when no line is left.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func missingTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat store: %w", err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read store tail: %w", err)
	}
	return last[0] != '\n', nil
}

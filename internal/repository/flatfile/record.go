package flatfile

import (
	"fmt"
	"strings"
	"unicode"

	"iron-coder/internal/domain"
	"iron-coder/internal/repository"
)

// formatRecord renders a user as a single newline-terminated line.
func formatRecord(user *domain.User) (string, error) {
	if err := checkField("username", user.Username); err != nil {
		return "", err
	}
	if err := checkField("password", user.PasswordHash); err != nil {
		return "", err
	}
	line := user.Username + " " + user.PasswordHash + "\n"
	if len(line) > maxLineSize {
		return "", fmt.Errorf("record exceeds %d bytes", maxLineSize)
	}
	return line, nil
}

func checkField(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is empty", name)
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%s contains whitespace", name)
	}
	return nil
}

// parseRecord splits a line into username and password. ok is false for blank
// lines, which are not records at all.
func parseRecord(line string, mode repository.ParseMode) (user domain.User, ok bool, err error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return domain.User{}, false, nil
	case len(fields) < 2:
		return domain.User{}, false, fmt.Errorf("%w: missing password", repository.ErrMalformedRecord)
	case len(fields) > 2 && mode == repository.ParseStrict:
		return domain.User{}, false, fmt.Errorf("%w: %d fields", repository.ErrMalformedRecord, len(fields))
	}
	return domain.User{Username: fields[0], PasswordHash: fields[1]}, true, nil
}

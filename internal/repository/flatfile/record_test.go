package flatfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iron-coder/internal/domain"
	"iron-coder/internal/repository"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		mode     repository.ParseMode
		wantUser string
		wantPass string
		wantOK   bool
		wantErr  bool
	}{
		{name: "plain", line: "alice pw1", mode: repository.ParsePermissive, wantUser: "alice", wantPass: "pw1", wantOK: true},
		{name: "extra spacing", line: "  alice\t pw1  ", mode: repository.ParsePermissive, wantUser: "alice", wantPass: "pw1", wantOK: true},
		{name: "blank", line: "   ", mode: repository.ParseStrict},
		{name: "missing password", line: "alice", mode: repository.ParsePermissive, wantErr: true},
		{name: "extra token permissive", line: "alice pw1 junk", mode: repository.ParsePermissive, wantUser: "alice", wantPass: "pw1", wantOK: true},
		{name: "extra token strict", line: "alice pw1 junk", mode: repository.ParseStrict, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ok, err := parseRecord(tt.line, tt.mode)
			if tt.wantErr {
				assert.ErrorIs(t, err, repository.ErrMalformedRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantUser, user.Username)
			assert.Equal(t, tt.wantPass, user.PasswordHash)
		})
	}
}

func TestFormatRecord(t *testing.T) {
	line, err := formatRecord(&domain.User{Username: "bob", PasswordHash: "x"})
	require.NoError(t, err)
	assert.Equal(t, "bob x\n", line)

	_, err = formatRecord(&domain.User{Username: "bob smith", PasswordHash: "x"})
	assert.ErrorContains(t, err, "username contains whitespace")
}

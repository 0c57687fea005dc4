package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iron-coder/internal/service"
)

// executeCommand runs a fresh root command and captures its output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func storeArgs(t *testing.T) []string {
	t.Helper()
	t.Setenv("IRONCODER_AUTH_BCRYPTCOST", "4")
	t.Setenv("IRONCODER_LOG_LEVEL", "error")
	dir := t.TempDir()
	return []string{"--config-dir", dir, "--store", filepath.Join(dir, "users.txt")}
}

func TestRegisterVerifyExists(t *testing.T) {
	base := storeArgs(t)

	out, err := executeCommand(t, "", append([]string{"exists", "alice"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = executeCommand(t, "pw1\n", append([]string{"register", "alice"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "registered alice")

	out, err = executeCommand(t, "", append([]string{"exists", "alice"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = executeCommand(t, "", append([]string{"verify", "alice", "--password", "pw1"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, err = executeCommand(t, "pw2\n", append([]string{"verify", "alice"}, base...)...)
	assert.ErrorIs(t, err, errInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	base := storeArgs(t)

	_, err := executeCommand(t, "", append([]string{"register", "bob", "-p", "x"}, base...)...)
	require.NoError(t, err)

	_, err = executeCommand(t, "", append([]string{"register", "bob", "-p", "y"}, base...)...)
	assert.ErrorIs(t, err, service.ErrDuplicateUsername)
}

func TestRegisterNeedsPassword(t *testing.T) {
	base := storeArgs(t)

	_, err := executeCommand(t, "", append([]string{"register", "carol"}, base...)...)
	assert.ErrorContains(t, err, "password is required")
}

func TestSQLiteDriverFlag(t *testing.T) {
	t.Setenv("IRONCODER_AUTH_BCRYPTCOST", "4")
	t.Setenv("IRONCODER_LOG_LEVEL", "error")
	dir := t.TempDir()
	base := []string{"--config-dir", dir, "--driver", "sqlite", "--store", filepath.Join(dir, "users.db")}

	_, err := executeCommand(t, "", append([]string{"register", "dave", "-p", "pw"}, base...)...)
	require.NoError(t, err)

	out, err := executeCommand(t, "", append([]string{"exists", "dave"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = os.Stat(filepath.Join(dir, "users.db"))
	assert.NoError(t, err)
}

func TestBackupNeedsBucket(t *testing.T) {
	base := storeArgs(t)
	t.Setenv("IRONCODER_BACKUP_BUCKET", "")

	_, err := executeCommand(t, "", append([]string{"backup"}, base...)...)
	assert.ErrorContains(t, err, "bucket is required")
}

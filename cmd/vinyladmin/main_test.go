package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinylhub/internal/config"
	"vinylhub/internal/repos"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(config.Config{DBDSN: "data.sqlite", AdminUser: "admin", AdminPass: "1234"})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsAgainstFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data.sqlite")
	db, err := repos.OpenDB(dbPath, repos.AdminSeed{Username: "admin", Password: "1234"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	csvPath := filepath.Join(dir, "users.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("username,password\ntestuser1,a\ntestuser2,b\nmalo1,c\n"), 0o600))

	out, err := run(t, "import", csvPath, "--db", dbPath, "--hash", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted=3 existing=0 skipped_bad=1")

	out, err = run(t, "count-test", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "testusers: 2")

	out, err = run(t, "remove-header", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted: 1")

	out, err = run(t, "keep-admin", "--db", dbPath, "--pass", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted=2")

	out, err = run(t, "users", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "s3cret")
	assert.NotContains(t, out, "testuser1")

	out, err = run(t, "check", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "users columns: id, username, password")
}

func TestMissingDatabase(t *testing.T) {
	_, err := run(t, "users", "--db", filepath.Join(t.TempDir(), "nope.sqlite"))
	assert.Error(t, err)
}

func TestImportRejectsUnknownHashMode(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data.sqlite")
	db, err := repos.OpenDB(dbPath, repos.AdminSeed{Username: "admin", Password: "1234"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = run(t, "import", "x.csv", "--db", dbPath, "--hash", "sha1")
	assert.Error(t, err)
}

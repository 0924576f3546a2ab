package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/config"
)

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestMigrationsRunAsScripts(t *testing.T) {
	dir := t.TempDir()
	first := "CREATE TABLE a (id TEXT PRIMARY KEY);\nCREATE INDEX idx_a ON a (id);\n"
	second := "ALTER TABLE a ADD COLUMN note TEXT;\n"
	writeMigration(t, dir, "002_alter.sql", second)
	writeMigration(t, dir, "001_init.sql", first)

	transport := &fakeTransport{name: "fake"}
	e := NewExecutor(config.PostgresConfig{QueryRetryWait: time.Millisecond}, zap.NewNop())
	e.transport = transport

	err := runMigrationsDir(context.Background(), e, dir, zap.NewNop())
	require.NoError(t, err)

	// Multi-command files must take the script path; the parameterized
	// statement path would reject them.
	require.Equal(t, []string{first, second}, transport.scripts, "files apply in sorted order")
	assert.Equal(t, 0, transport.calls, "migrations must not run as parameterized statements")
}

func TestMigrationsStopOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_init.sql", "CREATE TABLE a (id TEXT);")
	writeMigration(t, dir, "002_bad.sql", "CREATE TABLE b (id TEXT);")

	transport := &fakeTransport{name: "fake", scriptErr: errors.New("syntax error")}
	e := NewExecutor(config.PostgresConfig{QueryRetryWait: time.Millisecond}, zap.NewNop())
	e.transport = transport

	err := runMigrationsDir(context.Background(), e, dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_init.sql")
	assert.Len(t, transport.scripts, 1, "later migrations must not run after a failure")
}

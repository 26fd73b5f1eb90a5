package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add residents index", "add_residents_index"},
		{"Add-Family-Cards", "add_family_cards"},
		{"RT__per__RW", "rt_per_rw"},
		{"   spaces   ", "spaces"},
		{"audit!@#logs", "audit_logs"},
		{"_leading_and_trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add residents index", "Speed up lookups by family card")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_residents_index.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_residents_index.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- add residents index\n")
	assert.Contains(t, string(up), "Speed up lookups by family card")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(rollback)")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"20261018090000_create_registry_tables.up.sql",
		"20261018090000_create_registry_tables.down.sql",
		"20250101000000_older.up.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	names, err := ListMigrations(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"20250101000000_older", "20261018090000_create_registry_tables"}, names)
}

func TestFindPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DefaultPath), 0o755))
	nested := filepath.Join(root, "internal", "infrastructure")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, filepath.Join(root, DefaultPath), FindPath(nested))
	assert.Empty(t, FindPath(t.TempDir()))
}

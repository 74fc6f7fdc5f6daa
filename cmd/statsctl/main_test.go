package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const standardSnapshot = `{
  "league": "ITA-Serie A",
  "season": "2425",
  "rows": [
    {"team": "Juventus", "player": "Dušan Vlahović", "values": {"games": 18, "minutes": "1,390", "goals": 9, "assists": 2}},
    {"team": "Inter", "player": "Marcus Thuram", "values": {"games": 20, "minutes": 1650, "goals": 12, "assists": 4}}
  ]
}`

func setupEnv(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standard.json"), []byte(standardSnapshot), 0o600))

	t.Setenv("APP_ENV", "dev")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STATS_PROVIDER", "file")
	t.Setenv("STATS_DATA_DIR", dir)
	t.Setenv("ALIAS_FILE", "")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQueryCommand(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "query", "vlahovic", "--team", "juventus", "--explain", "--top", "1")
	require.NoError(t, err)
	require.Contains(t, out, `normalized to "dusan vlahovic"`)
	require.Contains(t, out, " 1. Dušan Vlahović")
	require.Contains(t, out, `"fantacalcio_insights"`)
	require.Contains(t, out, `"name": "Dušan Vlahović"`)
}

func TestQueryCommand_NotFound(t *testing.T) {
	setupEnv(t)

	_, stderr, err := run(t, "query", "zzzzzz")
	require.Error(t, err)
	require.Contains(t, stderr, "PlayerNotFound")
	require.Contains(t, stderr, "available:")
}

func TestWarmCommand(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "warm", "--categories", "standard,keeper")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, []string{"standard", "2"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"keeper", "0"}, strings.Fields(lines[1]))

	_, _, err = run(t, "warm", "--categories", "xg")
	require.Error(t, err)
}

func TestWarmCommand_HelpListsCategories(t *testing.T) {
	out, _, err := run(t, "warm", "--help")
	require.NoError(t, err)
	require.Contains(t, out, "standard,passing,shooting,keeper")
}

func TestAliasesCommand(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "aliases")
	require.NoError(t, err)
	require.Contains(t, out, "version 2024-25.1, 16 aliases")
	require.Contains(t, out, "kvara")
}

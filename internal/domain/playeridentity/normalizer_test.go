package playeridentity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize_DefaultAliases(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(DefaultAliases())
	cases := map[string]string{
		"thuram":         "marcus thuram",
		"vlahovic":       "dusan vlahovic",
		"  Martinez L. ": "lautaro martinez",
		"KVARA":          "khvicha kvaratskhelia",
		"Kenan Y.":       "kenan yildiz",
		"Nicolò Barella": "nicolò barella",
		"":               "",
	}
	for raw, want := range cases {
		if got := n.Normalize(raw); got != want {
			t.Fatalf("Normalize(%q)=%q want %q", raw, got, want)
		}
	}
}

func TestDefaultAliases_Coverage(t *testing.T) {
	t.Parallel()

	table := DefaultAliases()
	if table.Len() != 16 {
		t.Fatalf("expected 16 aliases, got %d", table.Len())
	}
	if table.Version == "" {
		t.Fatalf("expected a version")
	}
	entries := table.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1][0] > entries[i][0] {
			t.Fatalf("entries not sorted: %v", entries)
		}
	}
}

func TestLoadAliasFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.json")
	body := `{"version":"2025-26.0","aliases":{" Pulisic ":"Christian Pulisic","leao":"rafael leao"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write alias file: %v", err)
	}

	table, err := LoadAliasFile(path)
	if err != nil {
		t.Fatalf("LoadAliasFile: %v", err)
	}
	n := NewNormalizer(table)
	if got := n.Normalize("pulisic"); got != "christian pulisic" {
		t.Fatalf("got %q", got)
	}
	if got := n.Normalize("thuram"); got != "thuram" {
		t.Fatalf("file table must replace the default, got %q", got)
	}
}

func TestLoadAliasFile_EmptyPathUsesDefault(t *testing.T) {
	t.Parallel()

	table, err := LoadAliasFile("")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if table.Len() != DefaultAliases().Len() {
		t.Fatalf("expected default table")
	}
}

func TestParseAliases_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad json":      `{"version":`,
		"no version":    `{"aliases":{"a":"b"}}`,
		"empty mapping": `{"version":"1","aliases":{"a":" "}}`,
	}
	for name, body := range cases {
		if _, err := ParseAliases([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

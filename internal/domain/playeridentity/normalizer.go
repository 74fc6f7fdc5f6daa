package playeridentity

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

//go:embed aliases.json
var defaultAliasResource []byte

// AliasTable maps abbreviated or surname-only spellings to canonical full
// names. Keys and values are stored lowercased and trimmed.
type AliasTable struct {
	Version string
	aliases map[string]string
}

type aliasDocument struct {
	Version string            `json:"version"`
	Aliases map[string]string `json:"aliases"`
}

// DefaultAliases returns the alias table shipped with the binary.
func DefaultAliases() AliasTable {
	table, err := ParseAliases(defaultAliasResource)
	if err != nil {
		panic(errors.Wrap(err, "embedded alias resource"))
	}
	return table
}

func ParseAliases(data []byte) (AliasTable, error) {
	var doc aliasDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return AliasTable{}, errors.Wrap(err, "decode alias table")
	}
	if strings.TrimSpace(doc.Version) == "" {
		return AliasTable{}, errors.New("alias table version is required")
	}

	aliases := make(map[string]string, len(doc.Aliases))
	for from, to := range doc.Aliases {
		key := canonical(from)
		value := canonical(to)
		if key == "" || value == "" {
			return AliasTable{}, errors.Newf("alias table %s: empty mapping %q -> %q", doc.Version, from, to)
		}
		aliases[key] = value
	}

	return AliasTable{Version: strings.TrimSpace(doc.Version), aliases: aliases}, nil
}

// LoadAliasFile reads an alias table from disk. An empty path selects the
// embedded default.
func LoadAliasFile(path string) (AliasTable, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultAliases(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AliasTable{}, errors.Wrapf(err, "read alias file %s", path)
	}
	table, err := ParseAliases(data)
	if err != nil {
		return AliasTable{}, errors.Wrapf(err, "alias file %s", path)
	}
	return table, nil
}

func (a AliasTable) Len() int {
	return len(a.aliases)
}

func (a AliasTable) Lookup(key string) (string, bool) {
	v, ok := a.aliases[key]
	return v, ok
}

// Entries returns the mappings sorted by alias.
func (a AliasTable) Entries() [][2]string {
	out := make([][2]string, 0, len(a.aliases))
	for from, to := range a.aliases {
		out = append(out, [2]string{from, to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Normalizer canonicalizes raw player names.
type Normalizer struct {
	aliases AliasTable
}

func NewNormalizer(aliases AliasTable) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Normalize lowercases and trims raw, then applies an exact alias lookup.
func (n *Normalizer) Normalize(raw string) string {
	name := canonical(raw)
	if n == nil {
		return name
	}
	if mapped, ok := n.aliases.Lookup(name); ok {
		return mapped
	}
	return name
}

func (n *Normalizer) Aliases() AliasTable {
	if n == nil {
		return AliasTable{}
	}
	return n.aliases
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
)

const providerName = "file"

// snapshot is the on-disk layout of one category, <dir>/<category>.json.
type snapshot struct {
	League string        `json:"league"`
	Season string        `json:"season"`
	Rows   []snapshotRow `json:"rows"`
}

type snapshotRow struct {
	Team   string         `json:"team"`
	Player string         `json:"player"`
	Values map[string]any `json:"values"`
}

// Provider serves category tables from JSON snapshots on disk.
type Provider struct {
	dir    string
	logger *logging.Logger
}

func NewProvider(dir string, logger *logging.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.Default()
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, crerr.New("stats data dir is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, crerr.Wrapf(err, "stats data dir %s", dir)
	}
	if !info.IsDir() {
		return nil, crerr.Newf("stats data dir %s is not a directory", dir)
	}
	return &Provider{dir: dir, logger: logger.Named(providerName)}, nil
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) FetchCategory(ctx context.Context, category stattable.Category) (stattable.Table, error) {
	if err := ctx.Err(); err != nil {
		return stattable.Table{}, err
	}
	if !category.Valid() {
		return stattable.Table{}, fmt.Errorf("unknown category %q", category)
	}

	path := filepath.Join(p.dir, string(category)+".json")
	info, err := os.Stat(path)
	if err != nil {
		return stattable.Table{}, crerr.Wrapf(err, "stat %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return stattable.Table{}, crerr.Wrapf(err, "read %s", path)
	}

	var snap snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return stattable.Table{}, crerr.Wrapf(err, "decode %s", path)
	}

	rows := make([]stattable.Row, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		player := strings.TrimSpace(r.Player)
		if player == "" {
			continue
		}
		values := make(map[string]string, len(r.Values))
		for col, v := range r.Values {
			values[col] = stringify(v)
		}
		rows = append(rows, stattable.NewRow(stattable.Key{
			League: snap.League,
			Season: snap.Season,
			Team:   strings.TrimSpace(r.Team),
			Player: player,
		}, values))
	}

	p.logger.DebugContext(ctx, "snapshot loaded", "category", category, "rows", len(rows), "path", path)
	return stattable.New(category, info.ModTime().UTC(), rows), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

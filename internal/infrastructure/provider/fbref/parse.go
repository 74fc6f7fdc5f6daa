package fbref

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
)

var (
	errTableNotFound = crerr.New("fbref stats table not found")

	// FBref ships most stats tables inside HTML comments.
	commentMarkers = strings.NewReplacer("<!--", "", "-->", "")
	cellCleaner    = strings.NewReplacer(",", "", "\u00a0", " ", "\u2009", "")
	wsRe           = regexp.MustCompile(`\s+`)
	seasonRe       = regexp.MustCompile(`\b(\d{4})-(\d{4})\b`)
)

// parseTable extracts every player row of table#tableID. Cells are keyed by
// their data-stat attribute. A blank base.Season is taken from the page
// heading, then from fallbackSeason.
func parseTable(body []byte, tableID string, base stattable.Key, fallbackSeason string) ([]stattable.Row, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := commentMarkers.WriteString(buf, string(body)); err != nil {
		return nil, crerr.Wrap(err, "strip html comments")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.B))
	if err != nil {
		return nil, crerr.Wrap(err, "parse fbref page")
	}

	if base.Season == "" {
		base.Season = pageSeason(doc)
	}
	if base.Season == "" {
		base.Season = fallbackSeason
	}

	table := doc.Find("table#" + tableID).First()
	if table.Length() == 0 {
		return nil, crerr.Wrapf(errTableNotFound, "table id %s", tableID)
	}

	rows := make([]stattable.Row, 0, 600)
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		class := tr.AttrOr("class", "")
		if strings.Contains(class, "thead") || strings.Contains(class, "spacer") {
			return
		}

		values := make(map[string]string, 32)
		tr.Find("th[data-stat], td[data-stat]").Each(func(_ int, cell *goquery.Selection) {
			stat := strings.TrimSpace(cell.AttrOr("data-stat", ""))
			if stat == "" {
				return
			}
			values[stat] = cleanCell(cell.Text())
		})

		player := values["player"]
		if player == "" {
			return
		}
		team := values["team"]
		if team == "" {
			team = values["squad"]
		}

		key := base
		key.Player = player
		key.Team = team
		rows = append(rows, stattable.NewRow(key, values))
	})

	return rows, nil
}

// pageSeason reads "2024-2025" style labels from the h1 or the title.
func pageSeason(doc *goquery.Document) string {
	for _, text := range []string{doc.Find("h1").First().Text(), doc.Find("title").First().Text()} {
		if m := seasonRe.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// seasonAt is the Serie A season running at now; seasons start in July.
func seasonAt(now time.Time) string {
	start := now.Year()
	if now.Month() < time.July {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

func cleanCell(s string) string {
	s = cellCleaner.Replace(s)
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

package fbref

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
)

type page struct {
	path    string
	tableID string
}

var pages = map[stattable.Category]page{
	stattable.CategoryStandard:    {path: "stats", tableID: "stats_standard"},
	stattable.CategoryPassing:     {path: "passing", tableID: "stats_passing"},
	stattable.CategoryShooting:    {path: "shooting", tableID: "stats_shooting"},
	stattable.CategoryKeeper:      {path: "keepers", tableID: "stats_keeper"},
	stattable.CategoryDefense:     {path: "defense", tableID: "stats_defense"},
	stattable.CategoryPossession:  {path: "possession", tableID: "stats_possession"},
	stattable.CategoryMisc:        {path: "misc", tableID: "stats_misc"},
	stattable.CategoryPlayingTime: {path: "playingtime", tableID: "stats_playing_time"},
}

// pageURL builds the competition stats page, e.g.
// https://fbref.com/en/comps/11/2024-2025/stats/2024-2025-Serie-A-Stats.
// Without a season FBref serves the current one.
func pageURL(baseURL, compID, compSlug, season string, p page) string {
	season = strings.TrimSpace(season)
	if season == "" {
		return fmt.Sprintf("%s/en/comps/%s/%s/%s-Stats", baseURL, compID, p.path, compSlug)
	}
	return fmt.Sprintf("%s/en/comps/%s/%s/%s/%s-%s-Stats", baseURL, compID, season, p.path, season, compSlug)
}

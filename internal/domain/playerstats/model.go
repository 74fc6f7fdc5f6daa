package playerstats

// Result is the aggregated answer for one player query. JSON keys are part of
// the public contract and stay in Italian.
type Result struct {
	Player              PlayerInfo `json:"player"`
	Stats               Stats      `json:"stats"`
	FantacalcioInsights Insights   `json:"fantacalcio_insights"`
	Source              string     `json:"fonte"`
	LastUpdated         string     `json:"ultimo_aggiornamento"`
}

type PlayerInfo struct {
	Name   string `json:"name"`
	Team   string `json:"team"`
	League string `json:"league"`
	Season string `json:"season"`
}

type Stats struct {
	General    GeneralStats  `json:"generale"`
	Passing    *PassingStats `json:"passaggi,omitempty"`
	Goalkeeper *KeeperStats  `json:"portiere,omitempty"`
}

type GeneralStats struct {
	MatchesPlayed int `json:"partite_giocate"`
	Minutes       int `json:"minuti_totali"`
	Goals         int `json:"gol"`
	Assists       int `json:"assist"`
	YellowCards   int `json:"cartellini_gialli"`
	RedCards      int `json:"cartellini_rossi"`
}

type PassingStats struct {
	Attempted  int     `json:"passaggi_totali"`
	Completion float64 `json:"precisione_passaggi"`
}

type KeeperStats struct {
	MatchesPlayed  int     `json:"partite_giocate"`
	GoalsConceded  int     `json:"gol_subiti"`
	Saves          int     `json:"parate"`
	SavePct        float64 `json:"percentuale_parate"`
	CleanSheets    int     `json:"clean_sheets"`
	CleanSheetsPct float64 `json:"percentuale_clean_sheets"`
}

type Insights struct {
	EstimatedRating float64  `json:"voto_medio_stimato"`
	BonusMalus      float64  `json:"bonus_malus_attesi"`
	Reliability     string   `json:"affidabilita"`
	Trend           string   `json:"trend"`
	Advice          []string `json:"consigli"`
	Role            string   `json:"ruolo,omitempty"`
}

const (
	ReliabilityHigh   = "Alta"
	ReliabilityMedium = "Media"
	TrendStable       = "Stabile"
	RoleGoalkeeper    = "Portiere"
)

// Clone returns a deep copy so cached results cannot be changed through a
// returned value.
func (r Result) Clone() Result {
	out := r
	if r.Stats.Passing != nil {
		p := *r.Stats.Passing
		out.Stats.Passing = &p
	}
	if r.Stats.Goalkeeper != nil {
		k := *r.Stats.Goalkeeper
		out.Stats.Goalkeeper = &k
	}
	if r.FantacalcioInsights.Advice != nil {
		out.FantacalcioInsights.Advice = append([]string(nil), r.FantacalcioInsights.Advice...)
	}
	return out
}

// Package models defines the canonical "v1" matchup schema. Vendor documents
// arrive in whatever shape the capture happened to produce; everything in this
// package is the fixed contract downstream consumers (widgets, prompt builders)
// rely on. Every top-level key of CompiledDocument is always present: absent
// source data yields an empty container, never a missing key.
package models

// SchemaVersion is stamped into meta of every compiled document.
const SchemaVersion = "v1"

// SideValue is a two-sided numeric observation. Either side may be null when
// the source only carried one column.
type SideValue struct {
	Home *float64 `json:"home"`
	Away *float64 `json:"away"`
}

// MovementPoint is one row of a line-movement series. At least one of
// Home/Away is non-nil; rows with no signal on either side are dropped before
// they reach the document.
type MovementPoint struct {
	Timestamp *string  `json:"timestamp"`
	Label     *string  `json:"label"`
	Home      *float64 `json:"home"`
	Away      *float64 `json:"away"`
}

// Movement is an ordered line history plus the resolved current value.
type Movement struct {
	Current SideValue       `json:"current"`
	History []MovementPoint `json:"history"`
}

// EmptyMovement is the documented default for a movement section that could
// not be located: null current sides and an empty (not null) history.
func EmptyMovement() Movement {
	return Movement{History: []MovementPoint{}}
}

// RangeAggregate is the open/high/low/last summary of a line. Each field is
// set at most once per conversion; unset buckets stay null.
type RangeAggregate struct {
	Open *float64 `json:"open"`
	High *float64 `json:"high"`
	Low  *float64 `json:"low"`
	Last *float64 `json:"last"`
}

// Metric is one normalized statistic. Value is a number for coercible input
// (percentages as decimals in [0,1]); when the source string matched no known
// shape the original string is preserved so nothing is silently lost.
type Metric struct {
	Value any  `json:"value"`
	Rank  *int `json:"rank,omitempty"`
}

// TeamMetrics holds per-team metric maps keyed by normalized stat identifier.
type TeamMetrics struct {
	Home map[string]Metric `json:"home"`
	Away map[string]Metric `json:"away"`
}

// EmptyTeamMetrics returns the default container with both sides present.
func EmptyTeamMetrics() TeamMetrics {
	return TeamMetrics{Home: map[string]Metric{}, Away: map[string]Metric{}}
}

// InjuryEntry is one player line of the injury report. Status is one of
// QUESTIONABLE, PROBABLE, OUT, I-R, or the uppercased original when the vendor
// used a token outside the known set.
type InjuryEntry struct {
	Player   string `json:"player"`
	Position string `json:"position,omitempty"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Date     string `json:"date,omitempty"`
}

// InjuryReport splits injury entries by side.
type InjuryReport struct {
	Home []InjuryEntry `json:"home"`
	Away []InjuryEntry `json:"away"`
}

// EmptyInjuryReport returns the default report with empty (not null) sides.
func EmptyInjuryReport() InjuryReport {
	return InjuryReport{Home: []InjuryEntry{}, Away: []InjuryEntry{}}
}

// Row is one key-normalized record of a tabular section: keys are stable
// identifiers, values are numbers where the source was numeric-looking and
// strings otherwise.
type Row map[string]any

// Meta describes the conversion itself.
type Meta struct {
	ConversionID  string `json:"conversion_id"`
	Home          string `json:"home"`
	Away          string `json:"away"`
	SeasonYear    *int   `json:"season_year"`
	CompiledAt    string `json:"compiled_at"`
	SchemaVersion string `json:"schema_version"`
}

// CompiledDocument is the canonical matchup document. Field order matches the
// serialized key order of the v1 contract.
type CompiledDocument struct {
	Meta                    Meta           `json:"meta"`
	DualGameLog             []Row          `json:"dualgamelog"`
	EfficiencyStats         TeamMetrics    `json:"efficiencystats"`
	HeadToHead              []Row          `json:"headtohead"`
	InjuryReport            InjuryReport   `json:"injuryreport"`
	MatchupStats            TeamMetrics    `json:"matchupstats"`
	MoneyLineAnalysis       RangeAggregate `json:"moneylineanalysis"`
	MoneyLineMovement       Movement       `json:"moneylinemovement"`
	OverUnderAnalysis       RangeAggregate `json:"overunderanalysis"`
	OverUnderLineMovement   Movement       `json:"overunderlinemovement"`
	Overview                Row            `json:"overview"`
	PointSpreadAnalysis     RangeAggregate `json:"pointspreadanalysis"`
	PointSpreadLineMovement Movement       `json:"pointspreadlinemovement"`
	PowerRatings            TeamMetrics    `json:"powerratings"`
	SimilarGamesAnalysis    []Row          `json:"similargamesanalysis"`
	SituationalTrends       []Row          `json:"situationaltrends"`
	StatSplits              []Row          `json:"statsplits"`
	TravelAnalysis          []Row          `json:"travelanalysis"`
}

// NewCompiledDocument returns a document with every container initialized to
// its empty default so serialization emits {} / [] rather than null.
func NewCompiledDocument() *CompiledDocument {
	return &CompiledDocument{
		DualGameLog:             []Row{},
		EfficiencyStats:         EmptyTeamMetrics(),
		HeadToHead:              []Row{},
		InjuryReport:            EmptyInjuryReport(),
		MatchupStats:            EmptyTeamMetrics(),
		MoneyLineMovement:       EmptyMovement(),
		OverUnderLineMovement:   EmptyMovement(),
		Overview:                Row{},
		PointSpreadLineMovement: EmptyMovement(),
		PowerRatings:            EmptyTeamMetrics(),
		SimilarGamesAnalysis:    []Row{},
		SituationalTrends:       []Row{},
		StatSplits:              []Row{},
		TravelAnalysis:          []Row{},
	}
}

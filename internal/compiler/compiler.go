// Package compiler is the normalization engine: it converts an
// inconsistently-shaped vendor matchup document into the canonical v1 schema.
// The conversion is a pure transformation with no I/O and no state kept
// between calls, so multiple conversions may run concurrently without
// coordination. Recoverable problems (missing sections, shape mismatches,
// unparseable values) degrade to documented empty defaults and are reported
// through the Diagnostics channel; only a non-object root or an unusable team
// context is fatal.
package compiler

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stattrust/matchup-compiler/internal/pkg/coerce"
	"github.com/stattrust/matchup-compiler/internal/pkg/models"
	"github.com/stattrust/matchup-compiler/internal/pkg/rawdoc"
)

// ErrRootNotObject is returned when the raw document's root is not a JSON
// object. Nothing can be located in a scalar or array root, so no partial
// document is produced.
var ErrRootNotObject = errors.New("raw document: root must be a JSON object")

// Vendor section names. The locator tolerates drift away from these paths;
// the names themselves are the stable part of the vendor contract.
const (
	sectionDualGameLog          = "Dual Game Log"
	sectionEfficiencyStats      = "Efficiency Stats"
	sectionHeadToHead           = "Head To Head"
	sectionInjuryReport         = "Injury Report"
	sectionMatchupStats         = "Matchup Stats"
	sectionMoneyLineAnalysis    = "Money Line Analysis"
	sectionMoneyLineHistory     = "Money Line History"
	sectionOverUnderAnalysis    = "Over Under Analysis"
	sectionOverUnderHistory     = "Over Under History"
	sectionOverview             = "Overview"
	sectionPointSpreadAnalysis  = "Point Spread Analysis"
	sectionPointSpreadHistory   = "Point Spread History"
	sectionPowerRatings         = "Power Ratings"
	sectionSimilarGamesAnalysis = "Similar Games Analysis"
	sectionSituationalTrends    = "Situational Trends"
	sectionStatSplits           = "Stat Splits"
	sectionTravelAnalysis       = "Travel Analysis"
)

// state carries one conversion's inputs and outputs through the mapper set.
type state struct {
	doc   map[string]any
	tc    models.TeamContext
	out   *models.CompiledDocument
	diags *models.Diagnostics
}

// locate resolves a section and reports absence as a diagnostic against the
// output key. Absence is not an error: the caller keeps the empty default.
func (st *state) locate(outKey string, spec rawdoc.Spec) (rawdoc.Section, bool) {
	sec, ok := rawdoc.Locate(st.doc, spec)
	if !ok {
		st.diags.Add(outKey, "section %q not located; using empty default", spec.Name)
	}
	return sec, ok
}

// rows narrows a located section to an array, reporting a shape mismatch
// otherwise.
func (st *state) rows(outKey string, sec rawdoc.Section) ([]any, bool) {
	arr, ok := rawdoc.AsArray(sec.Value)
	if !ok {
		st.diags.Add(outKey, "section at %s is not an array; using empty default", sec.Path)
	}
	return arr, ok
}

// sectionMappers runs in this fixed order. Every mapper writes its output key
// unconditionally (the assembler pre-fills empty defaults), and no mapper's
// failure can abort another's.
var sectionMappers = []func(*state){
	mapDualGameLog,
	mapEfficiencyStats,
	mapHeadToHead,
	mapInjuryReport,
	mapMatchupStats,
	mapMoneyLineAnalysis,
	mapMoneyLineMovement,
	mapOverUnderAnalysis,
	mapOverUnderMovement,
	mapOverview,
	mapPointSpreadAnalysis,
	mapPointSpreadMovement,
	mapPowerRatings,
	mapSimilarGames,
	mapSituationalTrends,
	mapStatSplits,
	mapTravelAnalysis,
}

// Convert transforms a raw vendor document into the canonical v1 schema.
// root must be the decoded JSON document (object root). The returned
// Diagnostics lists every section or value that had to be defaulted; it is
// informational and never implies failure. On fatal input (non-object root,
// missing team abbreviations) no document is returned.
func Convert(root any, tc models.TeamContext) (*models.CompiledDocument, models.Diagnostics, error) {
	doc, ok := rawdoc.AsObject(root)
	if !ok {
		return nil, nil, ErrRootNotObject
	}
	if err := tc.Validate(); err != nil {
		return nil, nil, err
	}

	diags := models.Diagnostics{}
	st := &state{
		doc:   doc,
		tc:    tc,
		out:   models.NewCompiledDocument(),
		diags: &diags,
	}

	st.out.Meta = buildMeta(tc)
	for _, mapper := range sectionMappers {
		mapper(st)
	}
	return st.out, diags, nil
}

func buildMeta(tc models.TeamContext) models.Meta {
	var season *int
	if tc.SeasonYear > 0 {
		year := tc.SeasonYear
		season = &year
	}
	return models.Meta{
		ConversionID:  uuid.NewString(),
		Home:          tc.HomeAbbr,
		Away:          tc.AwayAbbr,
		SeasonYear:    season,
		CompiledAt:    time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		SchemaVersion: models.SchemaVersion,
	}
}

func mapMoneyLineMovement(st *state) {
	spec := rawdoc.Spec{
		Name:      sectionMoneyLineHistory,
		DomainKey: "moneylinemovement",
		Shape:     rawdoc.SignatureHistory,
		PathHint:  "money",
	}
	if sec, ok := st.locate("moneylinemovement", spec); ok {
		st.out.MoneyLineMovement = st.extractMovement("moneylinemovement", sec, coerce.ParseMoney)
	}
}

func mapPointSpreadMovement(st *state) {
	spec := rawdoc.Spec{
		Name:      sectionPointSpreadHistory,
		DomainKey: "pointspreadlinemovement",
		Shape:     rawdoc.SignatureHistory,
		PathHint:  "spread",
	}
	if sec, ok := st.locate("pointspreadlinemovement", spec); ok {
		st.out.PointSpreadLineMovement = st.extractMovement("pointspreadlinemovement", sec, coerce.ParseNumber)
	}
}

func mapOverUnderMovement(st *state) {
	spec := rawdoc.Spec{
		Name:      sectionOverUnderHistory,
		DomainKey: "overunderlinemovement",
		Shape:     rawdoc.SignatureHistory,
		PathHint:  "over",
	}
	if sec, ok := st.locate("overunderlinemovement", spec); ok {
		st.out.OverUnderLineMovement = st.extractMovement("overunderlinemovement", sec, coerce.ParseNumber)
	}
}

func mapMoneyLineAnalysis(st *state) {
	spec := rawdoc.Spec{
		Name:      sectionMoneyLineAnalysis,
		DomainKey: "moneylineanalysis",
		Shape:     rawdoc.SignatureRange,
		PathHint:  "money",
	}
	if sec, ok := st.locate("moneylineanalysis", spec); ok {
		st.out.MoneyLineAnalysis = st.extractRange("moneylineanalysis", sec)
	}
}

func mapPointSpreadAnalysis(st *state) {
	spec := rawdoc.Spec{
		Name:      sectionPointSpreadAnalysis,
		DomainKey: "pointspreadanalysis",
		Shape:     rawdoc.SignatureRange,
		PathHint:  "spread",
	}
	if sec, ok := st.locate("pointspreadanalysis", spec); ok {
		st.out.PointSpreadAnalysis = st.extractRange("pointspreadanalysis", sec)
	}
}

func mapOverUnderAnalysis(st *state) {
	spec := rawdoc.Spec{
		Name:      sectionOverUnderAnalysis,
		DomainKey: "overunderanalysis",
		Shape:     rawdoc.SignatureRange,
		PathHint:  "over",
	}
	if sec, ok := st.locate("overunderanalysis", spec); ok {
		st.out.OverUnderAnalysis = st.extractRange("overunderanalysis", sec)
	}
}

func mapEfficiencyStats(st *state) {
	spec := rawdoc.Spec{Name: sectionEfficiencyStats, DomainKey: "efficiencystats"}
	if sec, ok := st.locate("efficiencystats", spec); ok {
		st.out.EfficiencyStats = st.extractTeamMetrics("efficiencystats", sec)
	}
}

func mapMatchupStats(st *state) {
	spec := rawdoc.Spec{Name: sectionMatchupStats, DomainKey: "matchupstats"}
	if sec, ok := st.locate("matchupstats", spec); ok {
		st.out.MatchupStats = st.extractTeamMetrics("matchupstats", sec)
	}
}

func mapPowerRatings(st *state) {
	spec := rawdoc.Spec{Name: sectionPowerRatings, DomainKey: "powerratings"}
	if sec, ok := st.locate("powerratings", spec); ok {
		st.out.PowerRatings = st.extractTeamMetrics("powerratings", sec)
	}
}

func mapInjuryReport(st *state) {
	spec := rawdoc.Spec{Name: sectionInjuryReport, DomainKey: "injuryreport"}
	if sec, ok := st.locate("injuryreport", spec); ok {
		st.out.InjuryReport = st.extractInjuryReport("injuryreport", sec)
	}
}

func mapOverview(st *state) {
	spec := rawdoc.Spec{Name: sectionOverview, DomainKey: "overview"}
	if sec, ok := st.locate("overview", spec); ok {
		st.out.Overview = st.extractKeyValues("overview", sec)
	}
}

func mapDualGameLog(st *state) {
	spec := rawdoc.Spec{Name: sectionDualGameLog, DomainKey: "dualgamelog"}
	if sec, ok := st.locate("dualgamelog", spec); ok {
		st.out.DualGameLog = st.extractRows("dualgamelog", sec)
	}
}

func mapHeadToHead(st *state) {
	spec := rawdoc.Spec{Name: sectionHeadToHead, DomainKey: "headtohead"}
	if sec, ok := st.locate("headtohead", spec); ok {
		st.out.HeadToHead = st.extractRows("headtohead", sec)
	}
}

func mapSimilarGames(st *state) {
	spec := rawdoc.Spec{Name: sectionSimilarGamesAnalysis, DomainKey: "similargamesanalysis"}
	if sec, ok := st.locate("similargamesanalysis", spec); ok {
		st.out.SimilarGamesAnalysis = st.extractRows("similargamesanalysis", sec)
	}
}

func mapSituationalTrends(st *state) {
	spec := rawdoc.Spec{Name: sectionSituationalTrends, DomainKey: "situationaltrends"}
	if sec, ok := st.locate("situationaltrends", spec); ok {
		st.out.SituationalTrends = st.extractRows("situationaltrends", sec)
	}
}

func mapStatSplits(st *state) {
	spec := rawdoc.Spec{Name: sectionStatSplits, DomainKey: "statsplits"}
	if sec, ok := st.locate("statsplits", spec); ok {
		st.out.StatSplits = st.extractRows("statsplits", sec)
	}
}

func mapTravelAnalysis(st *state) {
	spec := rawdoc.Spec{Name: sectionTravelAnalysis, DomainKey: "travelanalysis"}
	if sec, ok := st.locate("travelanalysis", spec); ok {
		st.out.TravelAnalysis = st.extractRows("travelanalysis", sec)
	}
}

package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stattrust/matchup-compiler/internal/pkg/models"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

var testCtx = models.TeamContext{HomeAbbr: "BUF", AwayAbbr: "TB", SeasonYear: 2021}

func TestConvertFatalInput(t *testing.T) {
	_, _, err := Convert([]any{1, 2}, testCtx)
	assert.ErrorIs(t, err, ErrRootNotObject)

	_, _, err = Convert("scalar", testCtx)
	assert.ErrorIs(t, err, ErrRootNotObject)

	_, _, err = Convert(map[string]any{}, models.TeamContext{AwayAbbr: "TB"})
	assert.Error(t, err)

	_, _, err = Convert(map[string]any{}, models.TeamContext{HomeAbbr: "BUF"})
	assert.Error(t, err)
}

func TestConvertEmptyDocument(t *testing.T) {
	doc, diags, err := Convert(map[string]any{}, testCtx)
	require.NoError(t, err)
	require.NotNil(t, doc)

	// Every canonical top-level key is present at its empty default.
	var serialized map[string]json.RawMessage
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &serialized))

	wantKeys := []string{
		"meta", "dualgamelog", "efficiencystats", "headtohead", "injuryreport",
		"matchupstats", "moneylineanalysis", "moneylinemovement",
		"overunderanalysis", "overunderlinemovement", "overview",
		"pointspreadanalysis", "pointspreadlinemovement", "powerratings",
		"similargamesanalysis", "situationaltrends", "statsplits", "travelanalysis",
	}
	for _, key := range wantKeys {
		assert.Contains(t, serialized, key)
	}
	assert.Len(t, serialized, len(wantKeys))

	// Empty containers serialize as [] / {}, never null.
	assert.Equal(t, "[]", string(serialized["dualgamelog"]))
	assert.Equal(t, "{}", string(serialized["overview"]))
	assert.JSONEq(t, `{"home": {}, "away": {}}`, string(serialized["efficiencystats"]))
	assert.JSONEq(t, `{"current": {"home": null, "away": null}, "history": []}`, string(serialized["moneylinemovement"]))
	assert.JSONEq(t, `{"open": null, "high": null, "low": null, "last": null}`, string(serialized["moneylineanalysis"]))

	// One diagnostic per section that could not be located.
	assert.Len(t, diags, len(sectionMappers))
	for _, d := range diags {
		assert.Contains(t, d.Message, "not located")
	}
}

func TestConvertMeta(t *testing.T) {
	doc, _, err := Convert(map[string]any{}, testCtx)
	require.NoError(t, err)

	assert.Equal(t, "BUF", doc.Meta.Home)
	assert.Equal(t, "TB", doc.Meta.Away)
	require.NotNil(t, doc.Meta.SeasonYear)
	assert.Equal(t, 2021, *doc.Meta.SeasonYear)
	assert.Equal(t, models.SchemaVersion, doc.Meta.SchemaVersion)
	assert.NotEmpty(t, doc.Meta.ConversionID)
	assert.NotEmpty(t, doc.Meta.CompiledAt)

	noSeason, _, err := Convert(map[string]any{}, models.TeamContext{HomeAbbr: "BUF", AwayAbbr: "TB"})
	require.NoError(t, err)
	assert.Nil(t, noSeason.Meta.SeasonYear)
}

func TestConvertMoneyLineScenario(t *testing.T) {
	root := decode(t, `{
		"sections": {
			"Money Line History": {
				"moneylinemovement": [
					{"time stamp": "Current", "BUF": "-160", "TB": "140"},
					{"time stamp": "Nov 16 12:18 PM", "BUF": "-150", "TB": "130"}
				]
			}
		}
	}`)

	doc, diags, err := Convert(root, testCtx)
	require.NoError(t, err)

	ml := doc.MoneyLineMovement
	require.NotNil(t, ml.Current.Home)
	require.NotNil(t, ml.Current.Away)
	assert.Equal(t, float64(-160), *ml.Current.Home)
	assert.Equal(t, float64(140), *ml.Current.Away)

	require.Len(t, ml.History, 2)
	require.NotNil(t, ml.History[1].Timestamp)
	assert.Equal(t, "2021-11-16T12:18:00Z", *ml.History[1].Timestamp)
	assert.Nil(t, ml.History[0].Timestamp) // "Current" is a label, not a time

	// The located section produced no diagnostics; the 16 other sections
	// were defaulted.
	assert.Len(t, diags, len(sectionMappers)-1)
}

func TestConvertFullDocument(t *testing.T) {
	root := decode(t, `{
		"sections": {
			"Money Line History": {
				"moneylinemovement": [
					{"time stamp": "Current", "BUF": "-160", "TB": "140"},
					{"time stamp": "Nov 16 12:18 PM", "BUF": "-150", "TB": "130"}
				]
			},
			"Money Line Analysis": {
				"moneylineanalysis": [
					{"price_label_1": "Open", "price_1": "-155", "price_label_2": "High", "price_2": "-145"},
					{"price_label_1": "Low", "price_1": "-165", "price_label_2": "Last", "price_2": "-160"}
				]
			},
			"Efficiency Stats": {
				"efficiencystats": [
					{"stat": "Offensive Efficiency", "BUF": "36.52% (#24)", "TB": "41.10% (#8)"},
					{"stat": "Net Rating", "BUF": "24.4 (#11)", "TB": "18.9 (#19)"}
				]
			},
			"Injury Report": {
				"injuryreport": [
					{"team": "BUF", "player": "J. Poyer", "position": "S", "status": "Questionable", "injury": "ankle"},
					{"team": "TB", "player": "A. Winfield", "position": "S", "status": "out"},
					{"team": "NE", "player": "Someone Else", "status": "IR"}
				]
			},
			"Overview": {
				"overview": {"Venue": "Highmark Stadium", "Surface": "Turf", "Temperature": "41"}
			},
			"Head To Head": {
				"headtohead": [
					{"Date": "2020-09-13", "Winner": "BUF", "Score": "27-17"}
				]
			}
		},
		"raw": {
			"powerratings": {
				"data": {
					"sections": {
						"Power Ratings": {
							"powerratings": [
								{"stat": "Overall", "BUF": "88.2 (#5)", "TB": "90.1 (#3)"}
							]
						}
					}
				}
			}
		}
	}`)

	doc, diags, err := Convert(root, testCtx)
	require.NoError(t, err)

	// Range aggregate from label/value pairs.
	require.NotNil(t, doc.MoneyLineAnalysis.Open)
	assert.Equal(t, float64(-155), *doc.MoneyLineAnalysis.Open)
	require.NotNil(t, doc.MoneyLineAnalysis.Last)
	assert.Equal(t, float64(-160), *doc.MoneyLineAnalysis.Last)

	// Percent-with-rank coercion into per-team metrics.
	off := doc.EfficiencyStats.Home["offensive_efficiency"]
	assert.Equal(t, 0.3652, off.Value)
	require.NotNil(t, off.Rank)
	assert.Equal(t, 24, *off.Rank)
	net := doc.EfficiencyStats.Away["net_rating"]
	assert.Equal(t, 18.9, net.Value)

	// Injury rows split by side, status normalized, foreign team dropped.
	require.Len(t, doc.InjuryReport.Home, 1)
	assert.Equal(t, "QUESTIONABLE", doc.InjuryReport.Home[0].Status)
	assert.Equal(t, "ankle", doc.InjuryReport.Home[0].Detail)
	require.Len(t, doc.InjuryReport.Away, 1)
	assert.Equal(t, "OUT", doc.InjuryReport.Away[0].Status)

	// Overview flattened with normalized keys and numeric coercion.
	assert.Equal(t, "Highmark Stadium", doc.Overview["venue"])
	assert.Equal(t, float64(41), doc.Overview["temperature"])

	// Row table normalization.
	require.Len(t, doc.HeadToHead, 1)
	assert.Equal(t, "BUF", doc.HeadToHead[0]["winner"])

	// Mirrored-path fallback located the power ratings.
	overall := doc.PowerRatings.Away["overall"]
	assert.Equal(t, 90.1, overall.Value)
	require.NotNil(t, overall.Rank)
	assert.Equal(t, 3, *overall.Rank)

	// Defaulted sections and the dropped injury row are all reported.
	var droppedInjuries, notLocated int
	for _, d := range diags {
		switch {
		case d.Section == "injuryreport" && d.Message != "":
			droppedInjuries++
		default:
			notLocated++
		}
	}
	assert.Equal(t, 1, droppedInjuries)
	assert.Equal(t, len(sectionMappers)-7, notLocated)
}

func TestConvertDoesNotMutateInput(t *testing.T) {
	raw := `{"sections": {"Overview": {"overview": {"Venue": "X"}}}}`
	root := decode(t, raw)

	_, _, err := Convert(root, testCtx)
	require.NoError(t, err)

	after, err := json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(after))
}

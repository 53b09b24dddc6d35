package compiler

import (
	"testing"

	"github.com/stattrust/matchup-compiler/internal/pkg/models"
	"github.com/stattrust/matchup-compiler/internal/pkg/rawdoc"
)

func rangeSection(rows ...any) rawdoc.Section {
	return rawdoc.Section{Path: rawdoc.Path{"sections", "test"}, Value: rows}
}

func TestExtractRange(t *testing.T) {
	st := newTestState(models.TeamContext{HomeAbbr: "BUF", AwayAbbr: "TB"})
	sec := rangeSection(
		map[string]any{"price_label_1": "Open", "price_1": "-110", "price_label_2": "High", "price_2": "-102"},
		map[string]any{"price_label_1": "Low", "price_1": "-118", "price_label_2": "Last", "price_2": "-112"},
	)

	agg := st.extractRange("pointspreadanalysis", sec)

	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"open", agg.Open, -110},
		{"high", agg.High, -102},
		{"low", agg.Low, -118},
		{"last", agg.Last, -112},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestExtractRangeFirstWriterWins(t *testing.T) {
	st := newTestState(models.TeamContext{HomeAbbr: "BUF", AwayAbbr: "TB"})
	sec := rangeSection(
		map[string]any{"price_label_1": "Open", "price_1": "-110"},
		map[string]any{"price_label_1": "Open", "price_1": "-200"},
	)

	agg := st.extractRange("moneylineanalysis", sec)

	if agg.Open == nil || *agg.Open != -110 {
		t.Errorf("open = %v, want first-encountered -110", agg.Open)
	}
}

func TestExtractRangeUnparseableLeavesBucketOpen(t *testing.T) {
	st := newTestState(models.TeamContext{HomeAbbr: "BUF", AwayAbbr: "TB"})
	sec := rangeSection(
		map[string]any{"price_label_1": "Open", "price_1": "n/a"},
		map[string]any{"price_label_1": "Opening Line", "price_1": "-115"},
	)

	agg := st.extractRange("moneylineanalysis", sec)

	// The unparseable first row does not claim the bucket, so the second
	// row (substring match on "open") fills it.
	if agg.Open == nil || *agg.Open != -115 {
		t.Errorf("open = %v, want -115", agg.Open)
	}
	if agg.High != nil || agg.Low != nil || agg.Last != nil {
		t.Errorf("unexpected buckets set: %+v", agg)
	}
}

func TestExtractRangeUnrecognizedLabels(t *testing.T) {
	st := newTestState(models.TeamContext{HomeAbbr: "BUF", AwayAbbr: "TB"})
	sec := rangeSection(
		map[string]any{"price_label_1": "Consensus", "price_1": "-105"},
		"not a row object",
	)

	agg := st.extractRange("moneylineanalysis", sec)

	if agg.Open != nil || agg.High != nil || agg.Low != nil || agg.Last != nil {
		t.Errorf("unrecognized labels must contribute nothing, got %+v", agg)
	}
}

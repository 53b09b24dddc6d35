package compiler

import (
	"strconv"
	"strings"

	"github.com/stattrust/matchup-compiler/internal/pkg/coerce"
	"github.com/stattrust/matchup-compiler/internal/pkg/models"
	"github.com/stattrust/matchup-compiler/internal/pkg/rawdoc"
)

// extractRange folds price_label_N/price_N row pairs into the open/high/low/
// last aggregate. First writer wins per bucket: later rows cannot overwrite a
// bucket an earlier row already claimed, which makes the reduction
// deterministic under conflicting source rows.
func (st *state) extractRange(outKey string, sec rawdoc.Section) models.RangeAggregate {
	var agg models.RangeAggregate

	arr, ok := st.rows(outKey, sec)
	if !ok {
		return agg
	}

	for _, elem := range arr {
		row, isObj := rawdoc.AsObject(elem)
		if !isObj {
			continue
		}
		for _, pair := range []int{1, 2} {
			labelV, hasLabel := rawdoc.Field(row, "price_label_"+strconv.Itoa(pair))
			if !hasLabel {
				continue
			}
			label, isStr := labelV.(string)
			if !isStr {
				continue
			}
			value, _ := rawdoc.Field(row, "price_"+strconv.Itoa(pair))
			applyRangeBucket(&agg, label, value)
		}
	}
	return agg
}

// applyRangeBucket tests the label for bucket substrings, case-insensitively.
// A label literally containing several substrings claims several buckets.
func applyRangeBucket(agg *models.RangeAggregate, label string, value any) {
	parsed := coerce.ParseNumber(value)
	if parsed == nil {
		return
	}
	lower := strings.ToLower(label)
	for substr, target := range map[string]**float64{
		"open": &agg.Open,
		"high": &agg.High,
		"low":  &agg.Low,
		"last": &agg.Last,
	} {
		if strings.Contains(lower, substr) && *target == nil {
			v := *parsed
			*target = &v
		}
	}
}

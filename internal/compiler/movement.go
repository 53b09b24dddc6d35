package compiler

import (
	"sort"
	"strings"

	"github.com/stattrust/matchup-compiler/internal/pkg/coerce"
	"github.com/stattrust/matchup-compiler/internal/pkg/models"
	"github.com/stattrust/matchup-compiler/internal/pkg/rawdoc"
)

// markerLabels are sentinel rows vendors interleave with real history rows.
// They carry no observation and are dropped without affecting row order.
var markerLabels = map[string]bool{
	"historic_line_movement": true,
}

// reserved column identifiers that never bind to a side.
var reservedColumnIDs = []string{"time_stamp", "timestamp", "label"}

// columnBinding is the once-per-section decision of which row keys carry the
// away and home values. Heuristic bindings are low-confidence and flagged in
// Diagnostics.
type columnBinding struct {
	awayKey   string
	homeKey   string
	heuristic bool
}

// bindColumns decides the value columns once and keeps that decision for the
// whole series. The first row carrying both team abbreviations (matched
// case-insensitively) wins, so a leading marker row cannot hide an explicit
// binding; otherwise the first two non-reserved columns, in sorted key order,
// bind away-then-home. Sorted order stands in for source order because the
// JSON decoder does not preserve object member order.
func bindColumns(rows []map[string]any, tc models.TeamContext) (columnBinding, bool) {
	homeID := coerce.ToIdentifier(tc.HomeAbbr)
	awayID := coerce.ToIdentifier(tc.AwayAbbr)
	for _, row := range rows {
		homeKey, homeOK := rawdoc.FieldKey(row, homeID)
		awayKey, awayOK := rawdoc.FieldKey(row, awayID)
		if homeOK && awayOK {
			return columnBinding{awayKey: awayKey, homeKey: homeKey}, true
		}
	}

	for _, row := range rows {
		candidates := make([]string, 0, len(row))
		for k := range row {
			if !isReservedColumn(k) {
				candidates = append(candidates, k)
			}
		}
		if len(candidates) < 2 {
			continue
		}
		sort.Strings(candidates)
		return columnBinding{awayKey: candidates[0], homeKey: candidates[1], heuristic: true}, true
	}
	return columnBinding{}, false
}

func isReservedColumn(key string) bool {
	id := coerce.ToIdentifier(key)
	for _, r := range reservedColumnIDs {
		if id == r {
			return true
		}
	}
	return false
}

// extractMovement turns a located history array into an ordered, typed series
// plus the resolved current value. parse is the side-value coercer: integer
// moneyline parsing for moneyline sections, float parsing for spread and
// total lines.
func (st *state) extractMovement(outKey string, sec rawdoc.Section, parse func(any) *float64) models.Movement {
	movement := models.EmptyMovement()

	arr, ok := st.rows(outKey, sec)
	if !ok {
		return movement
	}

	rows := make([]map[string]any, 0, len(arr))
	for _, elem := range arr {
		if row, isObj := rawdoc.AsObject(elem); isObj {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		st.diags.Add(outKey, "section at %s has no row objects; using empty default", sec.Path)
		return movement
	}

	binding, ok := bindColumns(rows, st.tc)
	if !ok {
		st.diags.Add(outKey, "no value columns found at %s; using empty default", sec.Path)
		return movement
	}
	if binding.heuristic {
		st.diags.Add(outKey, "columns %q/%q bound to away/home by position, not by abbreviation (heuristic match)",
			binding.awayKey, binding.homeKey)
	}

	currentIdx := -1
	for _, row := range rows {
		rawLabel, hasLabel := rowLabel(row)
		if hasLabel && markerLabels[coerce.ToIdentifier(rawLabel)] {
			continue
		}

		var labelPtr, tsPtr *string
		if hasLabel {
			label, ts := coerce.ParseTimestampLabel(rawLabel, st.tc.SeasonYear)
			labelPtr, tsPtr = &label, ts
		}

		home := parse(row[binding.homeKey])
		away := parse(row[binding.awayKey])
		if home == nil && away == nil {
			continue
		}

		if currentIdx < 0 && hasLabel && strings.EqualFold(strings.TrimSpace(rawLabel), "current") {
			currentIdx = len(movement.History)
		}
		movement.History = append(movement.History, models.MovementPoint{
			Timestamp: tsPtr,
			Label:     labelPtr,
			Home:      home,
			Away:      away,
		})
	}

	switch {
	case currentIdx >= 0:
		movement.Current = models.SideValue{
			Home: movement.History[currentIdx].Home,
			Away: movement.History[currentIdx].Away,
		}
	case len(movement.History) > 0:
		movement.Current = models.SideValue{
			Home: movement.History[0].Home,
			Away: movement.History[0].Away,
		}
	}
	return movement
}

// rowLabel picks the row's label from the first present of the reserved
// columns, in priority order: "time stamp", "timestamp", "label".
func rowLabel(row map[string]any) (string, bool) {
	v, ok := rawdoc.Field(row, reservedColumnIDs...)
	if !ok {
		return "", false
	}
	s, isStr := v.(string)
	if !isStr {
		return "", false
	}
	return s, true
}

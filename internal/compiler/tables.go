package compiler

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stattrust/matchup-compiler/internal/pkg/coerce"
	"github.com/stattrust/matchup-compiler/internal/pkg/models"
	"github.com/stattrust/matchup-compiler/internal/pkg/rawdoc"
)

// statLabelIDs are the column identifiers tried, in order, for a metric row's
// stat label.
var statLabelIDs = []string{"stat", "category", "label", "name", "title"}

// extractTeamMetrics maps rows of the shape {stat, <HOME>, <AWAY>} into
// per-team metric maps keyed by normalized stat identifier. Team columns bind
// the same way movement columns do: abbreviations first, position second
// (flagged as heuristic).
func (st *state) extractTeamMetrics(outKey string, sec rawdoc.Section) models.TeamMetrics {
	metrics := models.EmptyTeamMetrics()

	arr, ok := st.rows(outKey, sec)
	if !ok {
		return metrics
	}

	rows := make([]map[string]any, 0, len(arr))
	for _, elem := range arr {
		if row, isObj := rawdoc.AsObject(elem); isObj {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		st.diags.Add(outKey, "section at %s has no row objects; using empty default", sec.Path)
		return metrics
	}

	binding, ok := bindMetricColumns(rows, st.tc)
	if !ok {
		st.diags.Add(outKey, "no team columns found at %s; using empty default", sec.Path)
		return metrics
	}
	if binding.heuristic {
		st.diags.Add(outKey, "columns %q/%q bound to away/home by position, not by abbreviation (heuristic match)",
			binding.awayKey, binding.homeKey)
	}

	for _, row := range rows {
		key := metricKey(row, binding)
		if key == "" {
			continue
		}
		if m := coerce.ParsePercentOrRank(row[binding.homeKey]); m != nil {
			metrics.Home[key] = models.Metric{Value: m.Value, Rank: m.Rank}
		}
		if m := coerce.ParsePercentOrRank(row[binding.awayKey]); m != nil {
			metrics.Away[key] = models.Metric{Value: m.Value, Rank: m.Rank}
		}
	}
	return metrics
}

// bindMetricColumns is column binding for metric tables: the label column is
// reserved in addition to the timestamp-like ones.
func bindMetricColumns(rows []map[string]any, tc models.TeamContext) (columnBinding, bool) {
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
			if !isReservedColumn(k) && !isStatLabelColumn(k) {
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

func isStatLabelColumn(key string) bool {
	id := coerce.ToIdentifier(key)
	for _, labelID := range statLabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}

// metricKey derives the stat map key from the row's label column, falling
// back to the first column that is neither a team column nor reserved.
func metricKey(row map[string]any, binding columnBinding) string {
	if v, ok := rawdoc.Field(row, statLabelIDs...); ok {
		if s, isStr := v.(string); isStr {
			return coerce.ToIdentifier(s)
		}
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		if k == binding.homeKey || k == binding.awayKey || isReservedColumn(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, isStr := row[k].(string); isStr && s != "" {
			return coerce.ToIdentifier(s)
		}
	}
	return ""
}

// extractRows normalizes a tabular section: every row object becomes a Row
// with identifier keys and lightly coerced scalar values. Non-object elements
// are skipped.
func (st *state) extractRows(outKey string, sec rawdoc.Section) []models.Row {
	arr, ok := st.rows(outKey, sec)
	if !ok {
		return []models.Row{}
	}

	out := make([]models.Row, 0, len(arr))
	for _, elem := range arr {
		row, isObj := rawdoc.AsObject(elem)
		if !isObj {
			continue
		}
		out = append(out, normalizeRow(row))
	}
	if len(out) == 0 && len(arr) > 0 {
		st.diags.Add(outKey, "section at %s has no row objects; using empty default", sec.Path)
	}
	return out
}

func normalizeRow(row map[string]any) models.Row {
	norm := models.Row{}
	for k, v := range row {
		key := coerce.ToIdentifier(k)
		if key == "" {
			continue
		}
		norm[key] = coerceScalar(v)
	}
	return norm
}

// coerceScalar converts bare numeric strings to numbers and leaves everything
// else (including percent strings, which keep their meaning only with the
// percent sign) untouched.
func coerceScalar(v any) any {
	s, isStr := v.(string)
	if !isStr {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if f, err := strconv.ParseFloat(strings.TrimPrefix(trimmed, "+"), 64); err == nil {
		return f
	}
	return s
}

// extractKeyValues flattens the overview section, which appears either as an
// object of fields or as an array of label/value rows.
func (st *state) extractKeyValues(outKey string, sec rawdoc.Section) models.Row {
	if obj, ok := rawdoc.AsObject(sec.Value); ok {
		return normalizeRow(obj)
	}

	arr, ok := rawdoc.AsArray(sec.Value)
	if !ok {
		st.diags.Add(outKey, "section at %s is neither an object nor an array; using empty default", sec.Path)
		return models.Row{}
	}

	out := models.Row{}
	for _, elem := range arr {
		row, isObj := rawdoc.AsObject(elem)
		if !isObj {
			continue
		}
		labelV, hasLabel := rawdoc.Field(row, "label", "name", "stat")
		value, hasValue := rawdoc.Field(row, "value")
		if !hasLabel || !hasValue {
			continue
		}
		label, isStr := labelV.(string)
		if !isStr {
			continue
		}
		if key := coerce.ToIdentifier(label); key != "" {
			out[key] = coerceScalar(value)
		}
	}
	return out
}

// injuryTeamIDs, in priority order, name the column carrying the row's team.
var injuryTeamIDs = []string{"team", "team_abbr", "abbr", "tm"}

// extractInjuryReport splits injury rows by side on the team column and
// normalizes each status to the canonical tokens. Rows naming neither team
// are dropped with a diagnostic rather than guessed at.
func (st *state) extractInjuryReport(outKey string, sec rawdoc.Section) models.InjuryReport {
	report := models.EmptyInjuryReport()

	arr, ok := st.rows(outKey, sec)
	if !ok {
		return report
	}

	homeID := coerce.ToIdentifier(st.tc.HomeAbbr)
	awayID := coerce.ToIdentifier(st.tc.AwayAbbr)
	dropped := 0

	for _, elem := range arr {
		row, isObj := rawdoc.AsObject(elem)
		if !isObj {
			continue
		}
		entry, teamID := injuryEntry(row)
		if entry.Player == "" {
			continue
		}
		switch teamID {
		case homeID:
			report.Home = append(report.Home, entry)
		case awayID:
			report.Away = append(report.Away, entry)
		default:
			dropped++
		}
	}
	if dropped > 0 {
		st.diags.Add(outKey, "%d injury rows dropped: team column matched neither abbreviation", dropped)
	}
	return report
}

func injuryEntry(row map[string]any) (models.InjuryEntry, string) {
	entry := models.InjuryEntry{
		Player:   fieldString(row, "player", "player_name", "name"),
		Position: fieldString(row, "position", "pos"),
		Status:   coerce.NormalizeStatus(fieldString(row, "status", "designation")),
		Detail:   fieldString(row, "injury", "detail", "description", "note"),
		Date:     fieldString(row, "date", "updated", "reported"),
	}
	return entry, coerce.ToIdentifier(fieldString(row, injuryTeamIDs...))
}

func fieldString(row map[string]any, ids ...string) string {
	v, ok := rawdoc.Field(row, ids...)
	if !ok {
		return ""
	}
	s, isStr := v.(string)
	if !isStr {
		return ""
	}
	return strings.TrimSpace(s)
}

package coerce

import (
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   any
		want *float64
	}{
		{"+233", fptr(233)},
		{"-267", fptr(-267)},
		{" +105 ", fptr(105)},
		{"140", fptr(140)},
		{float64(-160), fptr(-160)},
		{7, fptr(7)},
		{"", nil},
		{"N/A", nil},
		{"-2.5", nil}, // moneylines are integers; fractional input is not money
		{nil, nil},
		{true, nil},
	}
	for _, tt := range tests {
		got := ParseMoney(tt.in)
		if !floatPtrEq(got, tt.want) {
			t.Errorf("ParseMoney(%v) = %v, want %v", tt.in, fmtPtr(got), fmtPtr(tt.want))
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   any
		want *float64
	}{
		{"-2.5", fptr(-2.5)},
		{"+47.5", fptr(47.5)},
		{"3", fptr(3)},
		{float64(1.5), fptr(1.5)},
		{"", nil},
		{"even", nil},
		{nil, nil},
	}
	for _, tt := range tests {
		got := ParseNumber(tt.in)
		if !floatPtrEq(got, tt.want) {
			t.Errorf("ParseNumber(%v) = %v, want %v", tt.in, fmtPtr(got), fmtPtr(tt.want))
		}
	}
}

func TestParsePercentOrRank(t *testing.T) {
	tests := []struct {
		in       any
		want     any
		wantRank *int
	}{
		{"36.52% (#24)", 0.3652, iptr(24)},
		{"24.4 (#11)", 24.4, iptr(11)},
		{"36.52%", 0.3652, nil},
		{"102.3", 102.3, nil},
		{"+3.5", 3.5, nil},
		{float64(88), 88.0, nil},
		{"3rd in division", "3rd in division", nil}, // lossless fallback
	}
	for _, tt := range tests {
		got := ParsePercentOrRank(tt.in)
		if got == nil {
			t.Errorf("ParsePercentOrRank(%v) = nil, want value %v", tt.in, tt.want)
			continue
		}
		if got.Value != tt.want {
			t.Errorf("ParsePercentOrRank(%v).Value = %v, want %v", tt.in, got.Value, tt.want)
		}
		if !intPtrEq(got.Rank, tt.wantRank) {
			t.Errorf("ParsePercentOrRank(%v).Rank = %v, want %v", tt.in, got.Rank, tt.wantRank)
		}
	}

	if got := ParsePercentOrRank(nil); got != nil {
		t.Errorf("ParsePercentOrRank(nil) = %v, want nil", got)
	}
	if got := ParsePercentOrRank("  "); got != nil {
		t.Errorf("ParsePercentOrRank(blank) = %v, want nil", got)
	}
}

func TestParseTimestampLabel(t *testing.T) {
	tests := []struct {
		label  string
		season int
		wantTS string // "" means nil timestamp expected
	}{
		{"Nov 16 12:18 PM", 2021, "2021-11-16T12:18:00Z"},
		{"Nov 16 12:18 AM", 2021, "2021-11-16T00:18:00Z"},
		{"Dec 3 9:05 pm", 2021, "2021-12-03T21:05:00Z"},
		{"11/16 12:18 PM", 2021, "2021-11-16T12:18:00Z"},
		{"1/2 8:00 AM", 2022, "2022-01-02T08:00:00Z"},
		{"2021-11-16T12:18:00Z", 2021, "2021-11-16T12:18:00Z"},
		{"Current", 2021, ""},
		{"historic_line_movement", 2021, ""},
		{"13/40 9:00 AM", 2021, ""}, // month out of range
	}
	for _, tt := range tests {
		label, ts := ParseTimestampLabel(tt.label, tt.season)
		if label != tt.label {
			t.Errorf("ParseTimestampLabel(%q) label = %q, want original preserved", tt.label, label)
		}
		if tt.wantTS == "" {
			if ts != nil {
				t.Errorf("ParseTimestampLabel(%q) = %q, want nil timestamp", tt.label, *ts)
			}
			continue
		}
		if ts == nil || *ts != tt.wantTS {
			t.Errorf("ParseTimestampLabel(%q) = %v, want %q", tt.label, fmtStrPtr(ts), tt.wantTS)
		}
	}
}

func TestParseTimestampLabelFallbackYear(t *testing.T) {
	// seasonYear 0 falls back to the current UTC year.
	_, ts := ParseTimestampLabel("Nov 16 12:18 PM", 0)
	if ts == nil {
		t.Fatal("expected a timestamp with fallback year")
	}
	wantPrefix := time.Now().UTC().Format("2006")
	if (*ts)[:4] != wantPrefix {
		t.Errorf("fallback year = %s, want %s", (*ts)[:4], wantPrefix)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Questionable", "QUESTIONABLE"},
		{"questionable - ankle", "QUESTIONABLE"},
		{"Probable", "PROBABLE"},
		{"Out", "OUT"},
		{"out for season", "OUT"},
		{"IR", "I-R"},
		{"Injured Reserve", "I-R"},
		{"I-R (knee)", "I-R"},
		{"Day-To-Day", "DAY-TO-DAY"},
	}
	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Money Line History", "money_line_history"},
		{"Time Stamp", "time_stamp"},
		{"Off. Efficiency (Rank)", "off_efficiency_rank"},
		{"  3rd Down %  ", "3rd_down"},
		{"ALREADY_OK", "already_ok"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := ToIdentifier(tt.in); got != tt.want {
			t.Errorf("ToIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func fmtStrPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

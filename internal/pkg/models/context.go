package models

import "fmt"

// TeamContext identifies the two sides of a matchup and the season the document
// was captured in. It is supplied once per conversion and never mutated.
// SeasonYear 0 means unknown; timestamp coercion then falls back to the current
// UTC year.
type TeamContext struct {
	HomeAbbr   string
	AwayAbbr   string
	SeasonYear int
}

// Validate reports whether the context is usable for a conversion.
// Missing abbreviations are fatal: without them team-keyed columns cannot be
// bound to sides at all.
func (tc TeamContext) Validate() error {
	if tc.HomeAbbr == "" {
		return fmt.Errorf("team context: home abbreviation is required")
	}
	if tc.AwayAbbr == "" {
		return fmt.Errorf("team context: away abbreviation is required")
	}
	return nil
}

// Diagnostic is one non-fatal warning produced during a conversion: a section
// that was defaulted, a value that could not be coerced, a heuristic that had
// to be applied.
type Diagnostic struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// Diagnostics is the append-only warning channel of a single conversion.
// It is owned by the conversion call; the engine holds no state between calls.
type Diagnostics []Diagnostic

// Add appends a formatted warning for the named section.
func (d *Diagnostics) Add(section, format string, args ...any) {
	*d = append(*d, Diagnostic{Section: section, Message: fmt.Sprintf(format, args...)})
}

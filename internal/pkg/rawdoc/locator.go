package rawdoc

import (
	"strings"

	"github.com/stattrust/matchup-compiler/internal/pkg/coerce"
)

// Signature describes the structural shape of a section's rows, used by the
// last locator tier when no key matches the section name anywhere.
type Signature int

const (
	// SignatureNone disables shape-based matching for the section.
	SignatureNone Signature = iota
	// SignatureHistory matches arrays of row objects carrying a
	// timestamp-like column plus at least two value columns.
	SignatureHistory
	// SignatureRange matches arrays of row objects carrying a
	// price_label_1/price_1 style pair.
	SignatureRange
)

// Spec names one logical section and where it is known to live.
type Spec struct {
	// Name is the vendor section name, e.g. "Money Line History".
	Name string
	// DomainKey is the key the section's payload sits under, e.g.
	// "moneylinemovement".
	DomainKey string
	// Shape is the structural fallback signature; SignatureNone means only
	// key-based structural matches apply.
	Shape Signature
	// PathHint, when set, restricts structural matches to paths containing
	// the substring (case-insensitive). Exact and mirrored lookups are not
	// filtered: a known path is trusted as-is.
	PathHint string
}

// Section is a located subtree. A section that is not found is reported by
// the ok return of Locate, not by an error: absence is a normal condition of
// vendor captures.
type Section struct {
	Path  Path
	Value any
}

// Locate resolves a logical section against a drifting document in three
// tiers, stopping at the first success:
//
//  1. exact primary path     sections.<name>.<domainKey>
//  2. mirrored fallback path raw.<domainKey>.data.sections.<name>.<domainKey>
//  3. structural search over the whole tree: first an array whose immediate
//     key matches the section name tokens, then (only if no key matches) an
//     array whose row shape matches the spec's signature.
//
// Structural matching is deterministic: pre-order traversal, object keys in
// sorted order, first qualifying match wins.
func Locate(doc map[string]any, spec Spec) (Section, bool) {
	exact := Path{"sections", spec.Name, spec.DomainKey}
	if v, ok := Get(doc, exact...); ok {
		return Section{Path: exact, Value: v}, true
	}

	mirrored := Path{"raw", spec.DomainKey, "data", "sections", spec.Name, spec.DomainKey}
	if v, ok := Get(doc, mirrored...); ok {
		return Section{Path: mirrored, Value: v}, true
	}

	return structuralSearch(doc, spec)
}

func structuralSearch(doc map[string]any, spec Spec) (Section, bool) {
	tokens := strings.Split(coerce.ToIdentifier(spec.Name), "_")
	hint := strings.ToLower(spec.PathHint)

	var found Section
	var ok bool

	// Key-based pass: an array whose immediate key carries every token of
	// the section name.
	Walk(doc, func(path Path, value any) bool {
		if _, isArr := AsArray(value); !isArr || len(path) == 0 {
			return false
		}
		key, isKey := path[len(path)-1].(string)
		if !isKey || !keyMatchesTokens(key, tokens) {
			return false
		}
		if hint != "" && !strings.Contains(strings.ToLower(path.String()), hint) {
			return false
		}
		found, ok = Section{Path: path, Value: value}, true
		return true
	})
	if ok || spec.Shape == SignatureNone {
		return found, ok
	}

	// Shape-based pass: only reached when no key anywhere matched the name.
	Walk(doc, func(path Path, value any) bool {
		arr, isArr := AsArray(value)
		if !isArr || !matchesSignature(arr, spec.Shape) {
			return false
		}
		if hint != "" && !strings.Contains(strings.ToLower(path.String()), hint) {
			return false
		}
		found, ok = Section{Path: path, Value: value}, true
		return true
	})
	return found, ok
}

func keyMatchesTokens(key string, tokens []string) bool {
	norm := coerce.ToIdentifier(key)
	if norm == "" {
		return false
	}
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if !strings.Contains(norm, tok) {
			return false
		}
	}
	return true
}

// reserved column identifiers that never count as value columns.
var reservedColumns = map[string]bool{
	"time_stamp": true,
	"timestamp":  true,
	"label":      true,
}

func matchesSignature(arr []any, shape Signature) bool {
	if len(arr) == 0 {
		return false
	}
	row, isObj := AsObject(arr[0])
	if !isObj {
		return false
	}
	switch shape {
	case SignatureHistory:
		hasStamp := false
		others := 0
		for k := range row {
			if reservedColumns[coerce.ToIdentifier(k)] {
				hasStamp = true
			} else {
				others++
			}
		}
		return hasStamp && others >= 2
	case SignatureRange:
		_, hasLabel := Field(row, "price_label_1")
		_, hasPrice := Field(row, "price_1")
		return hasLabel && hasPrice
	default:
		return false
	}
}

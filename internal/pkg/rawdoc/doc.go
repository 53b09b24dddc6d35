// Package rawdoc navigates untyped vendor documents: arbitrarily nested trees
// of objects, arrays and scalars with no schema guarantee. It owns exact path
// lookup, deterministic tree traversal and the resilient section locator the
// compiler is built on. Nothing in this package mutates the input document.
package rawdoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stattrust/matchup-compiler/internal/pkg/coerce"
)

// Path addresses a subtree: string elements are object keys, int elements are
// array indexes.
type Path []any

// String renders the path dotted, with array indexes in brackets:
// "sections.Money Line History.moneylinemovement[2]".
func (p Path) String() string {
	var b strings.Builder
	for _, elem := range p {
		switch e := elem.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", e)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprintf(&b, "%v", e)
		}
	}
	return b.String()
}

// child returns a copy of p extended by one element. Copying keeps sibling
// branches of the traversal from sharing backing arrays.
func (p Path) child(elem any) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = elem
	return next
}

// AsObject reports v as a JSON object.
func AsObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsArray reports v as a JSON array.
func AsArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// Get walks an exact path from root. Any missing key, out-of-range index or
// intermediate scalar yields ok=false.
func Get(root any, path ...any) (any, bool) {
	cur := root
	for _, elem := range path {
		switch e := elem.(type) {
		case string:
			obj, ok := AsObject(cur)
			if !ok {
				return nil, false
			}
			cur, ok = obj[e]
			if !ok {
				return nil, false
			}
		case int:
			arr, ok := AsArray(cur)
			if !ok || e < 0 || e >= len(arr) {
				return nil, false
			}
			cur = arr[e]
		default:
			return nil, false
		}
	}
	return cur, true
}

// sortedKeys returns object keys in sorted order. The JSON decoder loses
// member order, so sorted keys are what keeps every traversal deterministic.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Walk visits every node of the tree pre-order, object keys in sorted order,
// array elements in index order. fn receives the node's path (whose last
// element is the node's immediate key) and value; returning true stops the
// traversal.
func Walk(root any, fn func(path Path, value any) bool) {
	walk(root, Path{}, fn)
}

func walk(v any, path Path, fn func(path Path, value any) bool) bool {
	if fn(path, v) {
		return true
	}
	switch node := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(node) {
			if walk(node[k], path.child(k), fn) {
				return true
			}
		}
	case []any:
		for i, elem := range node {
			if walk(elem, path.child(i), fn) {
				return true
			}
		}
	}
	return false
}

// Field looks a row up by normalized column identifier. ids are tried in
// priority order; within one id, candidate keys are scanned sorted so repeated
// lookups are deterministic.
func Field(row map[string]any, ids ...string) (any, bool) {
	keys := sortedKeys(row)
	for _, id := range ids {
		for _, k := range keys {
			if coerce.ToIdentifier(k) == id {
				return row[k], true
			}
		}
	}
	return nil, false
}

// FieldKey is Field returning the matching original key instead of the value.
func FieldKey(row map[string]any, ids ...string) (string, bool) {
	keys := sortedKeys(row)
	for _, id := range ids {
		for _, k := range keys {
			if coerce.ToIdentifier(k) == id {
				return k, true
			}
		}
	}
	return "", false
}

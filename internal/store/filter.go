package store

import (
	"fmt"
	"sort"
	"strings"
)

// Filter is a set of metadata predicates applied to a vector query.
// Field names refer to document metadata columns. Constructed fresh per
// query; never persisted.
type Filter struct {
	// Equals requires exact field equality.
	Equals map[string]string
	// Contains requires a case-insensitive substring match.
	Contains map[string]string
	// Overlaps requires the array field to share at least one value.
	Overlaps map[string][]string
}

// IsEmpty reports whether the filter has no predicates.
func (f Filter) IsEmpty() bool {
	return len(f.Equals) == 0 && len(f.Contains) == 0 && len(f.Overlaps) == 0
}

// scalarFields are the metadata columns valid for equality and substring
// predicates. Field names are interpolated into SurrealQL, so anything not
// listed here is rejected.
var scalarFields = map[string]bool{
	"source":       true,
	"url":          true,
	"title":        true,
	"section":      true,
	"content_type": true,
}

// arrayFields are the metadata columns valid for set-overlap predicates.
var arrayFields = map[string]bool{
	"tags": true,
}

// filterClauses renders a Filter into SurrealQL "AND ..." fragments plus bind
// variables. Clause order is deterministic (sorted by field) so queries are
// reproducible.
func filterClauses(f Filter) (string, map[string]any, error) {
	var clauses []string
	vars := map[string]any{}

	for i, field := range sortedKeys(f.Equals) {
		if !scalarFields[field] {
			return "", nil, fmt.Errorf("unsupported filter field: %s", field)
		}
		name := fmt.Sprintf("eq_%d", i)
		clauses = append(clauses, fmt.Sprintf("AND %s = $%s", field, name))
		vars[name] = f.Equals[field]
	}

	for i, field := range sortedKeys(f.Contains) {
		if !scalarFields[field] {
			return "", nil, fmt.Errorf("unsupported filter field: %s", field)
		}
		name := fmt.Sprintf("like_%d", i)
		clauses = append(clauses, fmt.Sprintf(
			"AND string::contains(string::lowercase(%s ?? ''), string::lowercase($%s))", field, name))
		vars[name] = f.Contains[field]
	}

	for i, field := range sortedOverlapKeys(f.Overlaps) {
		if !arrayFields[field] {
			return "", nil, fmt.Errorf("unsupported filter field: %s", field)
		}
		name := fmt.Sprintf("any_%d", i)
		clauses = append(clauses, fmt.Sprintf("AND %s CONTAINSANY $%s", field, name))
		vars[name] = f.Overlaps[field]
	}

	return strings.Join(clauses, " "), vars, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedOverlapKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package filter provides the row-filtering predicates used by the bucket
// and file tables. Filtering is client-side: the table narrows what is
// visible without re-fetching from the server.
package filter

import (
	"strings"

	"github.com/bucketops/bucketctl/internal/models"
)

// TagAll is the sentinel category that matches every row.
const TagAll = "all"

// Criteria holds the active filter state. It is constructed fresh per
// interaction and never persisted. Zero value matches everything.
type Criteria struct {
	// Name is a free-text search term. Case-insensitive substring match
	// against the row name. Empty means no name filter.
	Name string

	// Tag is an exact-match category selector. Empty or "all"
	// (case-insensitive) means no tag filter.
	Tag string
}

// IsZero reports whether the criteria match every row.
func (c Criteria) IsZero() bool {
	return c.Name == "" && (c.Tag == "" || strings.EqualFold(c.Tag, TagAll))
}

// MatchName reports whether a row name passes the name predicate.
func (c Criteria) MatchName(name string) bool {
	if c.Name == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(c.Name))
}

// MatchTag reports whether a row category passes the tag predicate.
// The criterion is lower-cased before comparison; row tags are stored
// lower-cased by the server, so the equality itself stays exact.
func (c Criteria) MatchTag(tag string) bool {
	if c.Tag == "" || strings.EqualFold(c.Tag, TagAll) {
		return true
	}
	return tag == strings.ToLower(c.Tag)
}

// Match reports whether a row with the given name and tag stays visible.
// Both predicates must hold: the search box and the category selector are
// independent controls, but the table reapplies both on every pass.
func (c Criteria) Match(name, tag string) bool {
	return c.MatchName(name) && c.MatchTag(tag)
}

// ApplyBuckets returns the subset of buckets matching the criteria.
// An empty result is valid and renders as a "no records" state.
func ApplyBuckets(rows []models.Bucket, c Criteria) []models.Bucket {
	if c.IsZero() {
		return rows
	}
	filtered := make([]models.Bucket, 0, len(rows))
	for _, row := range rows {
		if c.Match(row.Name, row.Tags.Type) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// ApplyFiles returns the subset of file rows matching the criteria.
func ApplyFiles(rows []models.FileRow, c Criteria) []models.FileRow {
	if c.IsZero() {
		return rows
	}
	filtered := make([]models.FileRow, 0, len(rows))
	for _, row := range rows {
		if c.Match(row.Name, row.Tags.Type) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// Package strings provides string utility functions.
package strings

// Pluralize returns singular or plural form based on count.
// Example: Pluralize("bucket", 1) returns "bucket", Pluralize("bucket", 2) returns "buckets".
func Pluralize(word string, count int64) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// Package sizes provides parsing and ordering of human-readable byte sizes.
// The server reports sizes as strings like "512", "10K" or "1.5M"; this
// package turns them back into comparable magnitudes for table sorting.
package sizes

import (
	"fmt"
	"strconv"
	"strings"
)

// Binary multipliers keyed by unit letter. Anything not listed counts as bytes.
var multipliers = map[string]float64{
	"":  1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
}

// Parse normalizes a size string to a byte count.
//
// The numeric part may contain a decimal point ("1.5M" is 1.5 MiB).
// The unit suffix is case-insensitive and defaults to bytes when absent or
// unrecognized. Parse is total: malformed input degrades to 0 rather than
// returning an error, so a table with garbage rows still sorts.
func Parse(s string) float64 {
	var num, unit strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			num.WriteRune(r)
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			unit.WriteRune(r)
		}
	}

	value, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		value = 0
	}

	mult, ok := multipliers[strings.ToUpper(unit.String())]
	if !ok {
		mult = 1
	}
	return value * mult
}

// Compare is a three-way comparator over two size strings, ordering them by
// their true numeric magnitude. It returns -1, 0 or 1 and is suitable for
// slices.SortFunc and sort.Slice. Compare(a, b) == -Compare(b, a) for all
// inputs, and Compare(a, a) == 0.
func Compare(a, b string) int {
	na, nb := Parse(a), Parse(b)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// Format renders a byte count in the same human-readable form the server
// uses: largest binary unit with a value >= 1, one decimal place when the
// value is fractional.
func Format(n int64) string {
	units := []string{"", "K", "M", "G", "T"}
	value := float64(n)
	idx := 0
	for value >= 1024 && idx < len(units)-1 {
		value /= 1024
		idx++
	}
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d%s", int64(value), units[idx])
	}
	return fmt.Sprintf("%.1f%s", value, units[idx])
}

package models

import "fmt"

// Retention measures accepted by the API. Conversions use the server's
// fixed factors (31-day months, 365-day years), not calendar arithmetic,
// so that a policy survives a round trip through the lifecycle rule.
const (
	MeasureDays   = "days"
	MeasureWeeks  = "weeks"
	MeasureMonths = "months"
	MeasureYears  = "years"
)

var measureDays = map[string]int{
	MeasureDays:   1,
	MeasureWeeks:  7,
	MeasureMonths: 31,
	MeasureYears:  365,
}

// RetentionPolicy is a bucket-level expiration rule: a unit plus a value,
// e.g. {weeks, 4}. Stored server-side as a lifecycle rule in whole days.
type RetentionPolicy struct {
	ExpirationMeasure string `json:"expiration_measure"`
	ExpirationValue   int    `json:"expiration_value"`
}

// Days converts the policy to whole days. Unknown measures return an error
// so a typo in a flag fails loudly instead of silently storing 0 days.
func (p RetentionPolicy) Days() (int, error) {
	factor, ok := measureDays[p.ExpirationMeasure]
	if !ok {
		return 0, fmt.Errorf("unknown retention measure %q (want days, weeks, months or years)", p.ExpirationMeasure)
	}
	return p.ExpirationValue * factor, nil
}

// RetentionFromDays reconstructs a readable policy from a lifecycle rule.
// Quantization matches the server: multiples of 365 become years, of 31
// months, of 7 weeks, anything else stays in days.
func RetentionFromDays(days int) RetentionPolicy {
	switch {
	case days != 0 && days%365 == 0:
		return RetentionPolicy{MeasureYears, days / 365}
	case days != 0 && days%31 == 0:
		return RetentionPolicy{MeasureMonths, days / 31}
	case days != 0 && days%7 == 0:
		return RetentionPolicy{MeasureWeeks, days / 7}
	default:
		return RetentionPolicy{MeasureDays, days}
	}
}

// String renders the policy for table output, e.g. "4 weeks".
func (p RetentionPolicy) String() string {
	return fmt.Sprintf("%d %s", p.ExpirationValue, p.ExpirationMeasure)
}

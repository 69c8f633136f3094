package models

import "testing"

func TestRetentionDays(t *testing.T) {
	tests := []struct {
		policy RetentionPolicy
		want   int
	}{
		{RetentionPolicy{MeasureDays, 10}, 10},
		{RetentionPolicy{MeasureWeeks, 4}, 28},
		{RetentionPolicy{MeasureMonths, 2}, 62},
		{RetentionPolicy{MeasureYears, 1}, 365},
	}

	for _, tt := range tests {
		got, err := tt.policy.Days()
		if err != nil {
			t.Fatalf("Days(%v) returned error: %v", tt.policy, err)
		}
		if got != tt.want {
			t.Errorf("Days(%v) = %d, want %d", tt.policy, got, tt.want)
		}
	}
}

func TestRetentionDaysUnknownMeasure(t *testing.T) {
	_, err := RetentionPolicy{"fortnights", 2}.Days()
	if err == nil {
		t.Fatal("expected error for unknown measure")
	}
}

func TestRetentionFromDays(t *testing.T) {
	tests := []struct {
		days int
		want RetentionPolicy
	}{
		{730, RetentionPolicy{MeasureYears, 2}},
		{365, RetentionPolicy{MeasureYears, 1}},
		{62, RetentionPolicy{MeasureMonths, 2}},
		{28, RetentionPolicy{MeasureWeeks, 4}},
		{10, RetentionPolicy{MeasureDays, 10}},
		{0, RetentionPolicy{MeasureDays, 0}},
	}

	for _, tt := range tests {
		if got := RetentionFromDays(tt.days); got != tt.want {
			t.Errorf("RetentionFromDays(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

// Round trip: a policy expressed in whole units must survive conversion to
// lifecycle days and back.
func TestRetentionRoundTrip(t *testing.T) {
	policies := []RetentionPolicy{
		{MeasureDays, 3},
		{MeasureWeeks, 2},
		{MeasureMonths, 6},
		{MeasureYears, 1},
	}

	for _, p := range policies {
		days, err := p.Days()
		if err != nil {
			t.Fatalf("Days(%v): %v", p, err)
		}
		if got := RetentionFromDays(days); got != p {
			t.Errorf("round trip %v -> %d days -> %v", p, days, got)
		}
	}
}

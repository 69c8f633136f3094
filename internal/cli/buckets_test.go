package cli

import (
	"testing"

	"github.com/bucketops/bucketctl/internal/models"
)

func TestParseRetention(t *testing.T) {
	tests := []struct {
		input   string
		measure string
		value   int
	}{
		{"30d", models.MeasureDays, 30},
		{"2w", models.MeasureWeeks, 2},
		{"6m", models.MeasureMonths, 6},
		{"1y", models.MeasureYears, 1},
		{"45", models.MeasureDays, 45}, // bare number means days
		{"1Y", models.MeasureYears, 1}, // case-insensitive
		{" 7d ", models.MeasureDays, 7},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			policy, err := parseRetention(tt.input)
			if err != nil {
				t.Fatalf("parseRetention(%q) error = %v", tt.input, err)
			}
			if policy.ExpirationMeasure != tt.measure || policy.ExpirationValue != tt.value {
				t.Errorf("parseRetention(%q) = {%s %d}, want {%s %d}",
					tt.input, policy.ExpirationMeasure, policy.ExpirationValue, tt.measure, tt.value)
			}
		})
	}
}

func TestParseRetentionInvalid(t *testing.T) {
	for _, input := range []string{"", "x", "30q", "-5d", "d", "1.5y"} {
		if _, err := parseRetention(input); err == nil {
			t.Errorf("parseRetention(%q) expected error", input)
		}
	}
}

package filter

import (
	"testing"

	"github.com/bucketops/bucketctl/internal/models"
)

func TestMatchName(t *testing.T) {
	tests := []struct {
		name     string
		criteria string
		want     bool
	}{
		{"Backup-2023", "backup", true},
		{"Backup-2023", "restore", false},
		{"Backup-2023", "", true},
		{"Backup-2023", "2023", true},
		{"Backup-2023", "BACKUP", true},
		{"", "backup", false},
		{"", "", true},
	}

	for _, tt := range tests {
		c := Criteria{Name: tt.criteria}
		if got := c.MatchName(tt.name); got != tt.want {
			t.Errorf("MatchName(%q) with criteria %q = %v, want %v",
				tt.name, tt.criteria, got, tt.want)
		}
	}
}

func TestMatchTag(t *testing.T) {
	tests := []struct {
		tag      string
		criteria string
		want     bool
	}{
		{"local", "all", true},
		{"local", "ALL", true},
		{"local", "", true},
		{"local", "system", false},
		{"local", "local", true},
		{"local", "Local", true}, // criterion is lower-cased before comparison
		{"system", "system", true},
		{"", "system", false},
		{"", "all", true},
	}

	for _, tt := range tests {
		c := Criteria{Tag: tt.criteria}
		if got := c.MatchTag(tt.tag); got != tt.want {
			t.Errorf("MatchTag(%q) with criteria %q = %v, want %v",
				tt.tag, tt.criteria, got, tt.want)
		}
	}
}

func TestMatchComposition(t *testing.T) {
	// Both predicates must hold when both controls are active.
	c := Criteria{Name: "backup", Tag: "local"}

	if !c.Match("Backup-2023", "local") {
		t.Error("row matching both predicates should be visible")
	}
	if c.Match("Backup-2023", "system") {
		t.Error("row failing the tag predicate should be hidden")
	}
	if c.Match("Results", "local") {
		t.Error("row failing the name predicate should be hidden")
	}
}

func TestApplyBuckets(t *testing.T) {
	rows := []models.Bucket{
		{Name: "Backup-2023", Tags: models.Tags{Type: "local"}},
		{Name: "backup-old", Tags: models.Tags{Type: "system"}},
		{Name: "reports", Tags: models.Tags{Type: "local"}},
	}

	got := ApplyBuckets(rows, Criteria{Name: "backup"})
	if len(got) != 2 {
		t.Fatalf("name filter returned %d rows, want 2", len(got))
	}

	got = ApplyBuckets(rows, Criteria{Name: "backup", Tag: "local"})
	if len(got) != 1 || got[0].Name != "Backup-2023" {
		t.Fatalf("combined filter = %v, want [Backup-2023]", got)
	}

	got = ApplyBuckets(rows, Criteria{Tag: "all"})
	if len(got) != 3 {
		t.Fatalf("tag 'all' returned %d rows, want 3", len(got))
	}
}

func TestApplyFilesIdempotent(t *testing.T) {
	rows := []models.FileRow{
		{Name: "report.html", Tags: models.Tags{Type: "local"}},
		{Name: "trace.zip", Tags: models.Tags{Type: "system"}},
	}
	c := Criteria{Tag: "system"}

	first := ApplyFiles(rows, c)
	second := ApplyFiles(first, c)

	if len(first) != len(second) {
		t.Fatalf("filter not idempotent: %d then %d rows", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("filter not idempotent: %v vs %v", first, second)
		}
	}
}

func TestApplyEmptyInput(t *testing.T) {
	if got := ApplyBuckets(nil, Criteria{Name: "x"}); len(got) != 0 {
		t.Errorf("empty input produced %d rows", len(got))
	}
	if got := ApplyFiles([]models.FileRow{}, Criteria{Tag: "system"}); len(got) != 0 {
		t.Errorf("empty input produced %d rows", len(got))
	}
}

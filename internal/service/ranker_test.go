package service

import (
	"strings"
	"testing"

	"campusguide/internal/model"
)

func candidate(name, city string, score float64) model.CollegeSearchResult {
	return model.CollegeSearchResult{
		College: model.College{Name: name, City: city, Type: "private"},
		Score:   score,
	}
}

func TestTopUnique(t *testing.T) {
	ranker := NewRanker(3)

	results := []model.CollegeSearchResult{
		candidate("IIT Delhi", "Delhi", 0.70),
		candidate("IIM Bangalore", "Bangalore", 0.95),
		candidate("IIT Delhi", "Delhi", 0.90), // duplicate with higher score
		candidate("BITS Pilani", "Pilani", 0.80),
		candidate("VIT Vellore", "Vellore", 0.60),
	}

	top := ranker.TopUnique(results)

	if len(top) != 3 {
		t.Fatalf("len(top) = %d, want 3", len(top))
	}
	wantOrder := []string{"IIM Bangalore", "IIT Delhi", "BITS Pilani"}
	for i, want := range wantOrder {
		if top[i].Name != want {
			t.Errorf("top[%d] = %q, want %q", i, top[i].Name, want)
		}
	}
	// The duplicate keeps its best score.
	if top[1].Score != 0.90 {
		t.Errorf("deduplicated score = %v, want 0.90", top[1].Score)
	}
}

func TestTopUniqueDoesNotMutateInput(t *testing.T) {
	results := []model.CollegeSearchResult{
		candidate("A College", "Delhi", 0.1),
		candidate("B College", "Pune", 0.9),
	}

	NewRanker(3).TopUnique(results)

	if results[0].Name != "A College" || results[1].Name != "B College" {
		t.Errorf("input order changed: %v, %v", results[0].Name, results[1].Name)
	}
}

func TestFormatCollegeLine(t *testing.T) {
	tests := []struct {
		name    string
		college model.College
		want    string
	}{
		{
			"full record",
			model.College{Name: "IIM Bangalore", City: "Bangalore", Type: "government", Fees: 2300000, AvgPackage: 2600000, Ranking: 2},
			"- **IIM Bangalore** (Bangalore): Fees - ₹2,300,000, Avg Package - ₹2,600,000, Type - Government, Ranking - 2",
		},
		{
			"missing numbers",
			model.College{Name: "Some College", City: "Pune", Type: "private"},
			"- **Some College** (Pune): Fees - Not specified, Avg Package - Not specified, Type - Private, Ranking - N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCollegeLine(tt.college); got != tt.want {
				t.Errorf("formatCollegeLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRecommendation(t *testing.T) {
	ranker := NewRanker(3)

	t.Run("plural header without summary", func(t *testing.T) {
		out := ranker.FormatRecommendation([]model.CollegeSearchResult{
			candidate("A College", "Delhi", 0.9),
			candidate("B College", "Pune", 0.8),
		}, "in Delhi", false)

		if !strings.HasPrefix(out, "**Top 2 Colleges matching your query:**\n\n") {
			t.Errorf("unexpected header: %q", out)
		}
		if strings.Contains(out, "in Delhi") {
			t.Errorf("summary leaked into output: %q", out)
		}
	})

	t.Run("singular header with summary", func(t *testing.T) {
		out := ranker.FormatRecommendation([]model.CollegeSearchResult{
			candidate("A College", "Delhi", 0.9),
		}, "in Delhi, for MBA", true)

		if !strings.HasPrefix(out, "**Top 1 College matching your query** (in Delhi, for MBA):\n\n") {
			t.Errorf("unexpected header: %q", out)
		}
		if !strings.Contains(out, "- **A College** (Delhi)") {
			t.Errorf("missing college line: %q", out)
		}
	})
}

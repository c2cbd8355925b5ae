package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"campusguide/internal/config"
	"campusguide/internal/model"
)

// stubExtractor returns a fixed extraction.
type stubExtractor struct {
	extraction Extraction
}

func (s *stubExtractor) Extract(_ context.Context, _ string) Extraction {
	return s.extraction
}

type storeCall struct {
	text      string
	k         int
	predicate map[string]any
}

// stubStore records calls and serves canned results. When failFiltered is
// set, calls carrying a predicate fail.
type stubStore struct {
	results      []model.CollegeSearchResult
	err          error
	failFiltered bool
	calls        []storeCall
}

func (s *stubStore) Query(_ context.Context, text string, k int, _ float64, predicate map[string]any) ([]model.CollegeSearchResult, error) {
	s.calls = append(s.calls, storeCall{text: text, k: k, predicate: predicate})
	if s.err != nil {
		return nil, s.err
	}
	if s.failFiltered && len(predicate) > 0 {
		return nil, fmt.Errorf("unsupported filter attribute")
	}
	return s.results, nil
}

func (s *stubStore) Clear(_ context.Context) error { return nil }

func analysisWith(confidence float64, filters model.CollegeFilters, cleaned string) Extraction {
	return Extraction{Analysis: model.QueryAnalysis{
		OriginalQuery: "original query",
		Filters:       filters,
		CleanedQuery:  cleaned,
		Intent:        "find_colleges",
		Confidence:    confidence,
	}}
}

func newTestService(store CollegeStore, extraction Extraction) *RecommendService {
	return NewRecommendService(store, &stubExtractor{extraction: extraction}, NewRanker(3), config.RetrievalConfig{
		SearchK:        50,
		ScoreThreshold: 0,
		MaxResults:     3,
	})
}

func TestRecommendLowConfidenceDropsFilters(t *testing.T) {
	store := &stubStore{results: []model.CollegeSearchResult{
		candidate("A College", "Delhi", 0.9),
	}}
	svc := newTestService(store, analysisWith(0.2, model.CollegeFilters{City: "Delhi"}, "colleges"))

	if _, err := svc.Recommend(context.Background(), "some vague query"); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(store.calls) != 1 {
		t.Fatalf("store calls = %d, want 1", len(store.calls))
	}
	call := store.calls[0]
	if call.predicate != nil {
		t.Errorf("predicate = %v, want nil", call.predicate)
	}
	if call.text != "some vague query" {
		t.Errorf("search text = %q, want the raw query", call.text)
	}
	if call.k != 50 {
		t.Errorf("k = %d, want 50", call.k)
	}
}

func TestRecommendFilteredSearch(t *testing.T) {
	store := &stubStore{results: []model.CollegeSearchResult{
		{College: model.College{Name: "IIM Delhi", City: "Delhi", Type: "government", Fees: 900000, AvgPackage: 1800000, Ranking: 4}, Score: 0.92},
		{College: model.College{Name: "IIM Delhi", City: "Delhi", Type: "government", Fees: 900000, AvgPackage: 1800000, Ranking: 4}, Score: 0.85},
		{College: model.College{Name: "FMS Delhi", City: "Delhi", Type: "government", Fees: 200000, AvgPackage: 2600000, Ranking: 3}, Score: 0.80},
	}}
	filters := model.CollegeFilters{
		City:   "Delhi",
		Course: "MBA",
		Fees:   &model.NumericFilter{Value: 1000000, Operator: model.OpLessThan},
	}
	svc := newTestService(store, analysisWith(0.9, filters, "MBA colleges"))

	out, err := svc.Recommend(context.Background(), "MBA in Delhi under 10 lakhs")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(store.calls) != 1 {
		t.Fatalf("store calls = %d, want 1", len(store.calls))
	}
	if store.calls[0].text != "MBA colleges" {
		t.Errorf("search text = %q, want the cleaned query", store.calls[0].text)
	}
	if store.calls[0].predicate["city"] != "Delhi" {
		t.Errorf("predicate = %v, want city Delhi", store.calls[0].predicate)
	}

	if !strings.Contains(out, "**Top 2 Colleges matching your query** (in Delhi, for MBA, fees under ₹10.0L):") {
		t.Errorf("missing header with summary: %q", out)
	}
	if strings.Count(out, "IIM Delhi") != 1 {
		t.Errorf("duplicate college not removed: %q", out)
	}
	if !strings.Contains(out, "- **FMS Delhi** (Delhi)") {
		t.Errorf("missing college line: %q", out)
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	store := &stubStore{results: []model.CollegeSearchResult{
		{College: model.College{Name: "FMS Delhi", City: "Delhi", Type: "government", Fees: 200000, AvgPackage: 2600000, Ranking: 3}, Score: 0.91},
		{College: model.College{Name: "IIM Delhi", City: "Delhi", Type: "government", Fees: 900000, AvgPackage: 1800000, Ranking: 4}, Score: 0.88},
		{College: model.College{Name: "DU MBA", City: "Delhi", Type: "government", Fees: 400000, AvgPackage: 1200000, Ranking: 12}, Score: 0.75},
	}}
	filters := model.CollegeFilters{
		City:   "Delhi",
		Course: "MBA",
		Fees:   &model.NumericFilter{Value: 1000000, Operator: model.OpLessThan},
	}
	svc := newTestService(store, analysisWith(0.9, filters, "MBA colleges"))

	out, err := svc.Recommend(context.Background(), "MBA colleges in Delhi under 10 lakhs fees")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if !strings.Contains(out, "3 Colleges") {
		t.Errorf("header does not mention 3 colleges: %q", out)
	}
	if !strings.Contains(out, "in Delhi, for MBA, fees under ₹10.0L") {
		t.Errorf("missing filter summary: %q", out)
	}
	for _, name := range []string{"FMS Delhi", "IIM Delhi", "DU MBA"} {
		if strings.Count(out, name) != 1 {
			t.Errorf("college %q not listed exactly once: %q", name, out)
		}
	}
}

func TestRecommendHidesSummaryAtModerateConfidence(t *testing.T) {
	store := &stubStore{results: []model.CollegeSearchResult{
		candidate("A College", "Delhi", 0.9),
	}}
	svc := newTestService(store, analysisWith(0.4, model.CollegeFilters{City: "Delhi"}, "colleges"))

	out, err := svc.Recommend(context.Background(), "colleges in delhi maybe")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if !strings.Contains(out, "**Top 1 College matching your query:**") {
		t.Errorf("unexpected header: %q", out)
	}
	if strings.Contains(out, "(in Delhi)") {
		t.Errorf("summary shown below confidence threshold: %q", out)
	}
}

func TestRecommendRetriesWithoutFilters(t *testing.T) {
	store := &stubStore{
		failFiltered: true,
		results: []model.CollegeSearchResult{
			candidate("A College", "Delhi", 0.9),
		},
	}
	svc := newTestService(store, analysisWith(0.9, model.CollegeFilters{City: "Delhi"}, "colleges"))

	out, err := svc.Recommend(context.Background(), "colleges in delhi")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(store.calls) != 2 {
		t.Fatalf("store calls = %d, want 2", len(store.calls))
	}
	if store.calls[1].predicate != nil {
		t.Errorf("retry predicate = %v, want nil", store.calls[1].predicate)
	}
	if store.calls[1].text != "colleges in delhi" {
		t.Errorf("retry text = %q, want the raw query", store.calls[1].text)
	}
	// The summary is not shown because the filters were abandoned.
	if strings.Contains(out, "(in Delhi)") {
		t.Errorf("summary shown after unfiltered retry: %q", out)
	}
}

func TestRecommendNoResults(t *testing.T) {
	t.Run("with filters applied", func(t *testing.T) {
		store := &stubStore{}
		svc := newTestService(store, analysisWith(0.9, model.CollegeFilters{City: "Delhi"}, "colleges"))

		out, err := svc.Recommend(context.Background(), "colleges in delhi")
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if !strings.Contains(out, "No colleges found matching your criteria") {
			t.Errorf("unexpected message: %q", out)
		}
		if !strings.Contains(out, "Applied filters: in Delhi") {
			t.Errorf("missing applied filters: %q", out)
		}
	})

	t.Run("without filters", func(t *testing.T) {
		store := &stubStore{}
		svc := newTestService(store, analysisWith(0.2, model.CollegeFilters{}, ""))

		out, err := svc.Recommend(context.Background(), "anything")
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if out != "No matching colleges found for your query." {
			t.Errorf("unexpected message: %q", out)
		}
	})
}

func TestRecommendRetrievalFailure(t *testing.T) {
	store := &stubStore{err: fmt.Errorf("connection refused")}
	svc := newTestService(store, analysisWith(0.2, model.CollegeFilters{}, ""))

	out, err := svc.Recommend(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !strings.Contains(out, "Sorry, something went wrong") {
		t.Errorf("unexpected message: %q", out)
	}
}

func TestRecommendUninitialized(t *testing.T) {
	svc := &RecommendService{}
	if _, err := svc.Recommend(context.Background(), "anything"); err == nil {
		t.Fatal("Recommend() error = nil, want error for uninitialized service")
	}
}

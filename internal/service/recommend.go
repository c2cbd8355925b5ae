package service

import (
	"context"
	"fmt"
	"log"

	"campusguide/internal/config"
	"campusguide/internal/model"
)

const (
	// Below this extraction confidence the filters are discarded and the
	// raw query is searched unfiltered.
	minFilterConfidence = 0.3

	// Above this confidence the filter summary is shown in the header.
	summaryConfidence = 0.5
)

// CollegeStore is the retrieval backend for the recommendation service.
type CollegeStore interface {
	// Query runs a semantic search over the indexed colleges, keeping the
	// k best candidates at or above the score threshold. A non-nil
	// predicate restricts candidates by metadata before ranking.
	Query(ctx context.Context, text string, k int, scoreThreshold float64, predicate map[string]any) ([]model.CollegeSearchResult, error)

	// Clear removes all indexed colleges.
	Clear(ctx context.Context) error
}

// RecommendService runs the full pipeline: query analysis, filtered
// semantic retrieval, ranking and formatting.
type RecommendService struct {
	store     CollegeStore
	extractor Extractor
	ranker    *Ranker
	retrieval config.RetrievalConfig
}

// NewRecommendService wires the recommendation pipeline together.
func NewRecommendService(store CollegeStore, extractor Extractor, ranker *Ranker, retrieval config.RetrievalConfig) *RecommendService {
	return &RecommendService{
		store:     store,
		extractor: extractor,
		ranker:    ranker,
		retrieval: retrieval,
	}
}

// Recommend answers a natural language query with formatted college
// recommendations. Degradations along the pipeline are absorbed into the
// returned text; the error is reserved for a misconfigured service.
func (s *RecommendService) Recommend(ctx context.Context, query string) (string, error) {
	text, _, err := s.RecommendWithAnalysis(ctx, query)
	return text, err
}

// RecommendWithAnalysis is Recommend plus the query analysis that produced
// the answer, for callers that surface the extracted filters.
func (s *RecommendService) RecommendWithAnalysis(ctx context.Context, query string) (string, model.QueryAnalysis, error) {
	if s.store == nil || s.extractor == nil || s.ranker == nil {
		return "", model.QueryAnalysis{}, fmt.Errorf("recommendation service is not initialized")
	}

	extraction := s.extractor.Extract(ctx, query)
	analysis := extraction.Analysis

	predicate := analysis.Filters.ToQueryFilters()
	searchText := analysis.SearchTerms()

	if analysis.Confidence < minFilterConfidence {
		if len(predicate) > 0 {
			log.Printf("Low extraction confidence (%.2f), searching without filters", analysis.Confidence)
		}
		predicate = nil
		searchText = query
	}

	results, err := s.store.Query(ctx, searchText, s.retrieval.SearchK, s.retrieval.ScoreThreshold, predicate)
	predicateApplied := len(predicate) > 0

	if err != nil && predicateApplied {
		// Predicate translation or filtered retrieval failed; fall back to
		// an unfiltered search on the raw query.
		log.Printf("Warning: filtered retrieval failed, retrying without filters: %v", err)
		predicateApplied = false
		results, err = s.store.Query(ctx, query, s.retrieval.SearchK, s.retrieval.ScoreThreshold, nil)
	}
	if err != nil {
		log.Printf("Retrieval failed for query %q: %v", query, err)
		return "Sorry, something went wrong while searching for colleges. Please try again later.", analysis, nil
	}

	if len(results) == 0 {
		if predicateApplied {
			return fmt.Sprintf(
				"No colleges found matching your criteria. Try adjusting your filters or search terms.\n\nApplied filters: %s",
				analysis.Filters.ToReadableSummary(),
			), analysis, nil
		}
		return "No matching colleges found for your query.", analysis, nil
	}

	top := s.ranker.TopUnique(results)
	if len(top) == 0 {
		return "No matching colleges found for your query.", analysis, nil
	}

	showSummary := predicateApplied && analysis.Confidence > summaryConfidence
	return s.ranker.FormatRecommendation(top, analysis.Filters.ToReadableSummary(), showSummary), analysis, nil
}

// ClearData wipes the indexed college data.
func (s *RecommendService) ClearData(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("recommendation service is not initialized")
	}
	return s.store.Clear(ctx)
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"campusguide/internal/model"
	"campusguide/internal/utils"
)

const (
	extractionTemperature = 0.1
	extractionMaxTokens   = 500

	defaultIntent      = "find_colleges"
	defaultConfidence  = 0.7
	degradedConfidence = 0.1
)

// Extraction is the outcome of analyzing one query. Degraded marks the
// fallback analysis produced when the model call or parsing failed; the
// caller still gets a usable QueryAnalysis either way.
type Extraction struct {
	Analysis model.QueryAnalysis
	Degraded bool
	Reason   string
}

// Extractor analyzes a natural language query into structured filters.
type Extractor interface {
	Extract(ctx context.Context, query string) Extraction
}

// FilterExtractor uses a language model to pull structured college filters
// out of free-form queries.
type FilterExtractor struct {
	ai AIClient
}

// NewFilterExtractor creates a filter extractor backed by the given client.
func NewFilterExtractor(ai AIClient) *FilterExtractor {
	return &FilterExtractor{ai: ai}
}

var _ Extractor = (*FilterExtractor)(nil)

const extractionSystemPrompt = `You are a college search assistant for India. Parse the user's natural language query into structured filters.

Respond ONLY with a valid JSON object of this shape:
{
  "filters": {
    "city": "city name if mentioned",
    "state": "state name if mentioned",
    "region": "one of: North, South, East, West, Central",
    "course": "one of: MBA, Engineering, Medical, Law, Design",
    "college_type": "one of: private, government",
    "exam": "entrance exam code if mentioned, e.g. JEE, NEET, CAT, CLAT",
    "fees": {"value": number, "operator": "lt|lte|gt|gte|eq"},
    "avg_package": {"value": number, "operator": "lt|lte|gt|gte|eq"},
    "ranking": {"value": number, "operator": "lt|lte|gt|gte|eq"}
  },
  "cleaned_query": "the query with filter words removed, keeping the search intent",
  "intent": "find_colleges",
  "confidence": 0.0 to 1.0
}

Important rules:
- Omit any filter that is not mentioned. Never guess.
- Amounts are rupees: "5 lakhs" = 500000, "1.2L" = 120000, "10 lakh" = 1000000.
- "under"/"below"/"less than" -> "lt", "at most"/"within" -> "lte", "above"/"more than" -> "gt", "at least"/"minimum" -> "gte".
- For ranking, lower numbers are better: "top 10" means {"value": 10, "operator": "lte"}.
- Use city when a city is named, state when only a state is named, region only when neither is named.
- confidence reflects how sure you are about the extracted filters.

Examples:
Query: "MBA colleges in Delhi under 10 lakhs"
Response: {"filters": {"city": "Delhi", "course": "MBA", "fees": {"value": 1000000, "operator": "lt"}}, "cleaned_query": "MBA colleges", "intent": "find_colleges", "confidence": 0.9}

Query: "top 20 government engineering colleges in Maharashtra"
Response: {"filters": {"state": "Maharashtra", "course": "Engineering", "college_type": "government", "ranking": {"value": 20, "operator": "lte"}}, "cleaned_query": "engineering colleges", "intent": "find_colleges", "confidence": 0.85}

Query: "medical colleges accepting NEET with package above 8 lakhs"
Response: {"filters": {"course": "Medical", "exam": "NEET", "avg_package": {"value": 800000, "operator": "gt"}}, "cleaned_query": "medical colleges", "intent": "find_colleges", "confidence": 0.85}

Query: "good colleges in south india"
Response: {"filters": {"region": "South"}, "cleaned_query": "good colleges", "intent": "find_colleges", "confidence": 0.6}`

// extractionPayload mirrors the JSON shape the model is instructed to emit.
type extractionPayload struct {
	Filters struct {
		City        string          `json:"city"`
		State       string          `json:"state"`
		Region      string          `json:"region"`
		Course      string          `json:"course"`
		CollegeType string          `json:"college_type"`
		Exam        string          `json:"exam"`
		Fees        *numericPayload `json:"fees"`
		AvgPackage  *numericPayload `json:"avg_package"`
		Ranking     *numericPayload `json:"ranking"`
	} `json:"filters"`
	CleanedQuery string   `json:"cleaned_query"`
	Intent       string   `json:"intent"`
	Confidence   *float64 `json:"confidence"`
}

type numericPayload struct {
	Value    float64 `json:"value"`
	Operator string  `json:"operator"`
}

// Extract analyzes a query. It never fails: when the model is unavailable or
// returns garbage, the result is a degraded analysis carrying the original
// query, empty filters and low confidence.
func (e *FilterExtractor) Extract(ctx context.Context, query string) Extraction {
	query = strings.TrimSpace(query)

	if e.ai == nil || !e.ai.IsEnabled() {
		return e.degraded(query, "language model not available")
	}

	raw, err := e.ai.Complete(ctx, extractionSystemPrompt, query, extractionTemperature, extractionMaxTokens)
	if err != nil {
		return e.degraded(query, fmt.Sprintf("completion failed: %v", err))
	}

	var payload extractionPayload
	if err := utils.ParseModelJSON(raw, &payload); err != nil {
		return e.degraded(query, fmt.Sprintf("unparsable model output: %v", err))
	}

	filters := model.CollegeFilters{
		City:        strings.TrimSpace(payload.Filters.City),
		State:       utils.NormalizeState(payload.Filters.State),
		Region:      payload.Filters.Region,
		Course:      utils.NormalizeCourse(payload.Filters.Course),
		CollegeType: payload.Filters.CollegeType,
		Exam:        payload.Filters.Exam,
	}

	for _, nf := range []struct {
		payload *numericPayload
		target  **model.NumericFilter
		name    string
	}{
		{payload.Filters.Fees, &filters.Fees, "fees"},
		{payload.Filters.AvgPackage, &filters.AvgPackage, "avg_package"},
		{payload.Filters.Ranking, &filters.Ranking, "ranking"},
	} {
		if nf.payload == nil {
			continue
		}
		op, err := model.ParseOperator(nf.payload.Operator)
		if err != nil {
			return e.degraded(query, fmt.Sprintf("invalid %s filter: %v", nf.name, err))
		}
		*nf.target = &model.NumericFilter{Value: nf.payload.Value, Operator: op}
	}

	analysis := model.QueryAnalysis{
		OriginalQuery: query,
		Filters:       model.NewCollegeFilters(filters),
		CleanedQuery:  strings.TrimSpace(payload.CleanedQuery),
		Intent:        strings.TrimSpace(payload.Intent),
		Confidence:    defaultConfidence,
	}
	if analysis.CleanedQuery == "" {
		analysis.CleanedQuery = query
	}
	if analysis.Intent == "" {
		analysis.Intent = defaultIntent
	}
	if payload.Confidence != nil {
		analysis.Confidence = *payload.Confidence
	}

	return Extraction{Analysis: analysis}
}

// degraded builds the safe fallback analysis for a query.
func (e *FilterExtractor) degraded(query, reason string) Extraction {
	log.Printf("Warning: filter extraction degraded for query %q: %s", query, reason)
	return Extraction{
		Analysis: model.QueryAnalysis{
			OriginalQuery: query,
			Filters:       model.CollegeFilters{},
			CleanedQuery:  query,
			Intent:        defaultIntent,
			Confidence:    degradedConfidence,
		},
		Degraded: true,
		Reason:   reason,
	}
}

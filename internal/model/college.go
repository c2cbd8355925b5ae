package model

import (
	"github.com/pgvector/pgvector-go"
)

// College represents one indexed college record.
type College struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	City       string          `json:"city" db:"city"`
	Course     string          `json:"course" db:"course"`
	Type       string          `json:"type" db:"type"`
	Fees       float64         `json:"fees" db:"fees"`
	AvgPackage float64         `json:"avg_package" db:"avg_package"`
	Ranking    int             `json:"ranking" db:"ranking"`
	Exam       string          `json:"exam" db:"exam"`
	RowHash    string          `json:"-" db:"row_hash"`
	Content    string          `json:"-" db:"content"`
	Embedding  pgvector.Vector `json:"-" db:"embedding"`
}

// CollegeSearchResult is a college together with its retrieval relevance
// score (higher is better).
type CollegeSearchResult struct {
	College
	Score float64 `json:"score" db:"score"`
}

// RecommendRequest is the request body for a single recommendation.
type RecommendRequest struct {
	Query           string `json:"query" binding:"required,min=1,max=500"`
	IncludeAnalysis bool   `json:"include_analysis"`
}

// QueryAnalysisInfo is the optional analysis echo in a response.
type QueryAnalysisInfo struct {
	Filters      map[string]any `json:"filters"`
	Summary      string         `json:"summary"`
	CleanedQuery string         `json:"cleaned_query"`
	Intent       string         `json:"intent"`
	Confidence   float64        `json:"confidence"`
}

// RecommendResponse is the response for a single recommendation.
type RecommendResponse struct {
	Query           string             `json:"query"`
	Recommendations string             `json:"recommendations"`
	Success         bool               `json:"success"`
	Message         string             `json:"message,omitempty"`
	Analysis        *QueryAnalysisInfo `json:"analysis,omitempty"`
}

// BatchRecommendRequest is the request body for batch recommendations.
type BatchRecommendRequest struct {
	Queries []string `json:"queries" binding:"required"`
}

// BatchRecommendResponse wraps the per-query batch results.
type BatchRecommendResponse struct {
	Results []RecommendResponse `json:"results"`
	Total   int                 `json:"total"`
}

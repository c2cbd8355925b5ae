package handler

import (
	"net/http"

	"campusguide/internal/model"
	"campusguide/internal/service"

	"github.com/gin-gonic/gin"
)

// maxBatchQueries caps the number of queries accepted per batch request.
const maxBatchQueries = 10

// RecommendHandler handles recommendation HTTP requests
type RecommendHandler struct {
	recommendService *service.RecommendService
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(recommendService *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{recommendService: recommendService}
}

// Recommend handles POST /api/v1/recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	text, analysis, err := h.recommendService.RecommendWithAnalysis(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed: " + err.Error()})
		return
	}

	resp := model.RecommendResponse{
		Query:           req.Query,
		Recommendations: text,
		Success:         true,
	}
	if req.IncludeAnalysis {
		resp.Analysis = &model.QueryAnalysisInfo{
			Filters:      analysis.Filters.ToQueryFilters(),
			Summary:      analysis.Filters.ToReadableSummary(),
			CleanedQuery: analysis.CleanedQuery,
			Intent:       analysis.Intent,
			Confidence:   analysis.Confidence,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// RecommendBatch handles POST /api/v1/recommend/batch
func (h *RecommendHandler) RecommendBatch(c *gin.Context) {
	var req model.BatchRecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No queries provided"})
		return
	}
	if len(req.Queries) > maxBatchQueries {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many queries: batch is limited to 10"})
		return
	}

	results := make([]model.RecommendResponse, 0, len(req.Queries))
	for _, query := range req.Queries {
		text, err := h.recommendService.Recommend(c.Request.Context(), query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed: " + err.Error()})
			return
		}
		results = append(results, model.RecommendResponse{
			Query:           query,
			Recommendations: text,
			Success:         true,
		})
	}

	c.JSON(http.StatusOK, model.BatchRecommendResponse{
		Results: results,
		Total:   len(results),
	})
}

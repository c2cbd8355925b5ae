package service

import (
	"fmt"
	"sort"
	"strings"

	"campusguide/internal/model"
	"campusguide/internal/utils"
)

// Ranker orders retrieval candidates, removes duplicate colleges and
// renders the final recommendation text.
type Ranker struct {
	maxResults int
}

// NewRanker creates a ranker that keeps at most maxResults unique colleges.
func NewRanker(maxResults int) *Ranker {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Ranker{maxResults: maxResults}
}

// TopUnique sorts candidates by score descending, keeps the best-scoring
// entry per college name and caps the list at the configured maximum.
func (r *Ranker) TopUnique(results []model.CollegeSearchResult) []model.CollegeSearchResult {
	sorted := make([]model.CollegeSearchResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	seen := make(map[string]bool, len(sorted))
	top := make([]model.CollegeSearchResult, 0, r.maxResults)
	for _, res := range sorted {
		if seen[res.Name] {
			continue
		}
		seen[res.Name] = true
		top = append(top, res)
		if len(top) == r.maxResults {
			break
		}
	}
	return top
}

// FormatRecommendation renders the header and one line per college. The
// filter summary is appended to the header only when requested.
func (r *Ranker) FormatRecommendation(results []model.CollegeSearchResult, filterSummary string, showSummary bool) string {
	var b strings.Builder

	plural := ""
	if len(results) != 1 {
		plural = "s"
	}
	if showSummary {
		fmt.Fprintf(&b, "**Top %d College%s matching your query** (%s):\n\n", len(results), plural, filterSummary)
	} else {
		fmt.Fprintf(&b, "**Top %d College%s matching your query:**\n\n", len(results), plural)
	}

	lines := make([]string, 0, len(results))
	for _, res := range results {
		lines = append(lines, formatCollegeLine(res.College))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// formatCollegeLine renders one college as a markdown bullet line.
func formatCollegeLine(c model.College) string {
	fees := "Not specified"
	if c.Fees > 0 {
		fees = "₹" + utils.FormatComma(c.Fees)
	}
	pkg := "Not specified"
	if c.AvgPackage > 0 {
		pkg = "₹" + utils.FormatComma(c.AvgPackage)
	}
	ranking := "N/A"
	if c.Ranking > 0 {
		ranking = fmt.Sprintf("%d", c.Ranking)
	}

	return fmt.Sprintf("- **%s** (%s): Fees - %s, Avg Package - %s, Type - %s, Ranking - %s",
		c.Name, c.City, fees, pkg, capitalize(c.Type), ranking)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

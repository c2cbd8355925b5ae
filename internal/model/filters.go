package model

import (
	"fmt"
	"strings"

	"campusguide/internal/utils"
)

// ComparisonOperator is the comparison applied by a NumericFilter.
type ComparisonOperator string

const (
	OpLessThan         ComparisonOperator = "lt"
	OpLessThanEqual    ComparisonOperator = "lte"
	OpGreaterThan      ComparisonOperator = "gt"
	OpGreaterThanEqual ComparisonOperator = "gte"
	OpEqual            ComparisonOperator = "eq"
)

// operatorSymbols maps operators to the backend predicate symbols.
var operatorSymbols = map[ComparisonOperator]string{
	OpLessThan:         "$lt",
	OpLessThanEqual:    "$lte",
	OpGreaterThan:      "$gt",
	OpGreaterThanEqual: "$gte",
	OpEqual:            "$eq",
}

// ParseOperator validates a wire-format operator string.
func ParseOperator(s string) (ComparisonOperator, error) {
	op := ComparisonOperator(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := operatorSymbols[op]; !ok {
		return "", fmt.Errorf("unknown comparison operator: %q", s)
	}
	return op, nil
}

// NumericFilter is a numeric constraint with a comparison operator.
// Used for fees, average package and ranking.
type NumericFilter struct {
	Value    float64            `json:"value"`
	Operator ComparisonOperator `json:"operator"`
}

// ToPredicate converts the filter to a generic comparison predicate,
// e.g. {"$lt": 1000000}. Unknown operators degrade to equality.
func (f NumericFilter) ToPredicate() map[string]any {
	sym, ok := operatorSymbols[f.Operator]
	if !ok {
		sym = "$eq"
	}
	return map[string]any{sym: f.Value}
}

// CollegeFilters is the structured search filter extracted from a natural
// language query. Build it with NewCollegeFilters so that text fields are
// normalized; treat the value as read-only afterwards.
type CollegeFilters struct {
	City        string         `json:"city,omitempty"`
	State       string         `json:"state,omitempty"`
	Region      string         `json:"region,omitempty"`
	Course      string         `json:"course,omitempty"`
	CollegeType string         `json:"college_type,omitempty"`
	Exam        string         `json:"exam,omitempty"`
	Fees        *NumericFilter `json:"fees,omitempty"`
	AvgPackage  *NumericFilter `json:"avg_package,omitempty"`
	Ranking     *NumericFilter `json:"ranking,omitempty"`
}

// NewCollegeFilters normalizes the text fields of a filter set: title case
// for place names and region, lowercase college type, uppercase exam codes.
// Normalization is idempotent.
func NewCollegeFilters(f CollegeFilters) CollegeFilters {
	f.City = utils.TitleCase(f.City)
	f.State = utils.TitleCase(f.State)
	f.Region = utils.TitleCase(f.Region)
	f.CollegeType = strings.ToLower(strings.TrimSpace(f.CollegeType))
	f.Exam = strings.ToUpper(strings.TrimSpace(f.Exam))
	return f
}

// IsEmpty reports whether no filter field is set.
func (f CollegeFilters) IsEmpty() bool {
	return f.City == "" && f.State == "" && f.Region == "" &&
		f.Course == "" && f.CollegeType == "" && f.Exam == "" &&
		f.Fees == nil && f.AvgPackage == nil && f.Ranking == nil
}

// FilteredCities returns the cities the location filters resolve to, with
// priority city > state > region. State and region are ignored once a city
// is known. The list preserves mapping order and is deduplicated; it is
// empty when no location filter is present or the state/region is unknown.
func (f CollegeFilters) FilteredCities() []string {
	var cities []string
	switch {
	case f.City != "":
		cities = []string{f.City}
	case f.State != "":
		cities = StateCities(f.State)
	case f.Region != "":
		cities = RegionCities(f.Region)
	}

	seen := make(map[string]bool, len(cities))
	unique := make([]string, 0, len(cities))
	for _, c := range cities {
		if seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}
	return unique
}

// ToQueryFilters converts the filter set to a backend-agnostic predicate
// mapping: attribute name to a literal (equality), a set-membership
// predicate ({"$in": [...]}) or a comparison predicate ({"$lt": v}).
// Attributes without a filter are omitted entirely. State and region are
// mapped down to city membership because the store only carries city data.
func (f CollegeFilters) ToQueryFilters() map[string]any {
	filters := map[string]any{}

	if cities := f.FilteredCities(); len(cities) == 1 {
		filters["city"] = cities[0]
	} else if len(cities) > 1 {
		filters["city"] = map[string]any{"$in": cities}
	}

	if f.Course != "" {
		filters["course"] = f.Course
	}
	if f.CollegeType != "" {
		// The indexed data stores lowercase type values.
		filters["type"] = strings.ToLower(f.CollegeType)
	}
	if f.Exam != "" {
		filters["exam"] = f.Exam
	}

	if f.Fees != nil {
		filters["fees"] = f.Fees.ToPredicate()
	}
	if f.AvgPackage != nil {
		filters["avg_package"] = f.AvgPackage.ToPredicate()
	}
	if f.Ranking != nil {
		filters["ranking"] = f.Ranking.ToPredicate()
	}

	return filters
}

var amountOpText = map[ComparisonOperator]string{
	OpLessThan:         "under",
	OpLessThanEqual:    "up to",
	OpGreaterThan:      "above",
	OpGreaterThanEqual: "at least",
	OpEqual:            "exactly",
}

// Lower rank numbers are better, so the phrasing is inverted relative to
// the amount operators.
var rankOpText = map[ComparisonOperator]string{
	OpLessThan:         "better than rank",
	OpLessThanEqual:    "rank up to",
	OpGreaterThan:      "rank worse than",
	OpGreaterThanEqual: "rank at least",
	OpEqual:            "rank exactly",
}

// formatAmount renders a rupee amount for the filter summary: lakhs with
// one decimal at or above ₹1,00,000, plain comma-grouped rupees below.
func formatAmount(v float64) string {
	if v >= 100000 {
		return fmt.Sprintf("₹%.1fL", v/100000)
	}
	return "₹" + utils.FormatComma(v)
}

// ToReadableSummary renders the filters as ordered, comma-joined clauses:
// location, course, type, fees, avg_package, ranking, exam. Returns the
// literal "no specific filters" when nothing is set.
func (f CollegeFilters) ToReadableSummary() string {
	var parts []string

	// Location with priority city > state > region.
	if f.City != "" {
		parts = append(parts, "in "+f.City)
	} else if f.State != "" {
		if cities := StateCities(f.State); len(cities) == 1 {
			parts = append(parts, fmt.Sprintf("in %s (%s)", cities[0], f.State))
		} else {
			parts = append(parts, fmt.Sprintf("in %s state", f.State))
		}
	} else if f.Region != "" {
		if cities := RegionCities(f.Region); len(cities) > 0 && len(cities) <= 3 {
			parts = append(parts, fmt.Sprintf("in %s India (%s)", f.Region, strings.Join(cities, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("in %s India", f.Region))
		}
	}

	if f.Course != "" {
		parts = append(parts, "for "+f.Course)
	}
	if f.CollegeType != "" {
		parts = append(parts, strings.ToLower(f.CollegeType)+" colleges")
	}

	if f.Fees != nil {
		parts = append(parts, fmt.Sprintf("fees %s %s", amountOpText[f.Fees.Operator], formatAmount(f.Fees.Value)))
	}
	if f.AvgPackage != nil {
		parts = append(parts, fmt.Sprintf("package %s %s", amountOpText[f.AvgPackage.Operator], formatAmount(f.AvgPackage.Value)))
	}
	if f.Ranking != nil {
		parts = append(parts, fmt.Sprintf("%s %.0f", rankOpText[f.Ranking.Operator], f.Ranking.Value))
	}

	if f.Exam != "" {
		parts = append(parts, "accepting "+f.Exam)
	}

	if len(parts) == 0 {
		return "no specific filters"
	}
	return strings.Join(parts, ", ")
}

// QueryAnalysis is the complete analysis of one user query. It is built
// once by the filter extractor and read-only afterwards.
type QueryAnalysis struct {
	OriginalQuery string         `json:"original_query"`
	Filters       CollegeFilters `json:"filters"`
	CleanedQuery  string         `json:"cleaned_query"`
	Intent        string         `json:"intent"`
	Confidence    float64        `json:"confidence"`
}

// SearchTerms returns the text used for semantic search: the cleaned query
// when present, otherwise a course-derived phrase, otherwise a generic one.
func (a QueryAnalysis) SearchTerms() string {
	if strings.TrimSpace(a.CleanedQuery) != "" {
		return a.CleanedQuery
	}
	if a.Filters.Course != "" {
		return a.Filters.Course + " colleges"
	}
	return "colleges universities institutes"
}

package utils

import (
	"strings"
	"unicode"
)

// TitleCase converts a name to title case ("tamil nadu" -> "Tamil Nadu").
// Applying it twice equals applying it once.
func TitleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// courseSynonyms maps lowercase course spellings to the canonical course
// names used by the indexed data.
var courseSynonyms = map[string]string{
	"mba":         "MBA",
	"engineering": "Engineering",
	"engineer":    "Engineering",
	"medical":     "Medical",
	"medicine":    "Medical",
	"law":         "Law",
	"design":      "Design",
}

// NormalizeCourse maps a course spelling to its canonical form. Unknown
// courses keep their original value.
func NormalizeCourse(course string) string {
	course = strings.TrimSpace(course)
	if canonical, ok := courseSynonyms[strings.ToLower(course)]; ok {
		return canonical
	}
	return course
}

// stateVariants maps common typos and spelling variants (lowercased) to
// the canonical state names used by the location tables.
var stateVariants = map[string]string{
	"maharastra":     "Maharashtra",
	"tamilnadu":      "Tamil Nadu",
	"tamil_nadu":     "Tamil Nadu",
	"westbengal":     "West Bengal",
	"west_bengal":    "West Bengal",
	"uttaranchal":    "Uttarakhand",
	"andharapradesh": "Andhra Pradesh",
	"andhrapradesh":  "Andhra Pradesh",
}

// NormalizeState corrects known state spelling variants and title-cases the
// result.
func NormalizeState(state string) string {
	if canonical, ok := stateVariants[strings.ToLower(strings.TrimSpace(state))]; ok {
		return canonical
	}
	return TitleCase(state)
}

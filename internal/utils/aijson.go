package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseModelJSON extracts and parses a JSON object from language-model
// output, which may be pure JSON, JSON wrapped in a markdown code block,
// JSON with surrounding prose, or slightly malformed JSON.
func ParseModelJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty model output")
	}

	// Direct parse first (most common case).
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// JSON inside a markdown code block.
	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// First balanced JSON object embedded in surrounding text.
	if extracted := ExtractJSONObject(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
		// Last resort: repair common formatting mistakes.
		if cleaned := cleanAndFixJSON(extracted); cleaned != "" {
			if err := json.Unmarshal([]byte(cleaned), target); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("no parsable JSON object in model output: %s", truncateString(input, 100))
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedAnyRe  = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
)

// extractFromMarkdown pulls content out of ```json ... ``` or ``` ... ```
// fences when it looks like JSON.
func extractFromMarkdown(input string) string {
	if m := fencedJSONRe.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := fencedAnyRe.FindStringSubmatch(input); len(m) > 1 {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") {
			return content
		}
	}
	return ""
}

// ExtractJSONObject returns the first balanced {...} span in the input,
// honoring strings and escapes, or "" when no object is present.
func ExtractJSONObject(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}
	input = input[start:]

	depth := 0
	inString := false
	escape := false

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}
	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// cleanAndFixJSON repairs the formatting mistakes models make most often:
// trailing commas, unquoted keys, single-quoted values, control characters.
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	s = controlCharRe.ReplaceAllString(s, "")
	return s
}

// fixSingleQuotes converts quoting single quotes to double quotes while
// leaving apostrophes inside double-quoted strings alone.
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	escape := false

	for i, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			continue
		}
		if ch == '\\' {
			result.WriteRune(ch)
			escape = true
			continue
		}
		if ch == '"' {
			inDoubleQuote = !inDoubleQuote
			result.WriteRune(ch)
			continue
		}
		if ch == '\'' && !inDoubleQuote {
			var prev rune
			if i > 0 {
				prev = rune(input[i-1])
			}
			if i == 0 || prev == ':' || prev == ',' || prev == '[' || prev == '{' || prev == ' ' {
				result.WriteRune('"')
				continue
			}
		}
		result.WriteRune(ch)
	}
	return result.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package utils

import "testing"

type samplePayload struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func TestParseModelJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    samplePayload
		wantErr bool
	}{
		{
			name:  "plain JSON",
			input: `{"intent": "find_colleges", "confidence": 0.9}`,
			want:  samplePayload{Intent: "find_colleges", Confidence: 0.9},
		},
		{
			name:  "json fenced block",
			input: "Here you go:\n```json\n{\"intent\": \"find_colleges\", \"confidence\": 0.8}\n```",
			want:  samplePayload{Intent: "find_colleges", Confidence: 0.8},
		},
		{
			name:  "anonymous fenced block",
			input: "```\n{\"intent\": \"find_colleges\", \"confidence\": 0.7}\n```",
			want:  samplePayload{Intent: "find_colleges", Confidence: 0.7},
		},
		{
			name:  "JSON with surrounding prose",
			input: `Sure! The analysis is {"intent": "find_colleges", "confidence": 0.6} as requested.`,
			want:  samplePayload{Intent: "find_colleges", Confidence: 0.6},
		},
		{
			name:  "trailing comma gets repaired",
			input: `{"intent": "find_colleges", "confidence": 0.5,}`,
			want:  samplePayload{Intent: "find_colleges", Confidence: 0.5},
		},
		{
			name:  "unquoted keys get repaired",
			input: `{intent: "find_colleges", confidence: 0.4}`,
			want:  samplePayload{Intent: "find_colleges", Confidence: 0.4},
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   "I could not determine any filters for this query.",
			wantErr: true,
		},
		{
			name:    "unbalanced braces",
			input:   `{"intent": "find_colleges"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got samplePayload
			err := ParseModelJSON(tt.input, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModelJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseModelJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"nested object", `prefix {"a": {"b": 2}} suffix`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "}"}`, `{"a": "}"}`},
		{"no object", "nothing here", ""},
		{"unbalanced", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.input); got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

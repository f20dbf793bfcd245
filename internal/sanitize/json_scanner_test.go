package sanitize

import (
	"strings"
	"testing"
)

func TestFindJSONCandidates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple_object",
			input: `prefix {"key": "value"} suffix`,
			want:  []string{`{"key": "value"}`},
		},
		{
			name:  "simple_array",
			input: `here you go: [{"functor": "parent"}] done`,
			want:  []string{`[{"functor": "parent"}]`},
		},
		{
			name:  "nested",
			input: `start {"a": {"b": "c"}} end`,
			want:  []string{`{"a": {"b": "c"}}`},
		},
		{
			name:  "array_of_objects",
			input: `[{"id": 1}, {"id": 2}]`,
			want:  []string{`[{"id": 1}, {"id": 2}]`},
		},
		{
			name:  "multiple",
			input: `obj1 {"id": 1} obj2 {"id": 2}`,
			want:  []string{`{"id": 1}`, `{"id": 2}`},
		},
		{
			name:  "string_with_braces",
			input: `{"key": "value with } inside"}`,
			want:  []string{`{"key": "value with } inside"}`},
		},
		{
			name:  "string_with_bracket",
			input: `["value with ] inside"]`,
			want:  []string{`["value with ] inside"]`},
		},
		{
			name:  "escaped_quote",
			input: `{"key": "value with \" inside"}`,
			want:  []string{`{"key": "value with \" inside"}`},
		},
		{
			name:  "incomplete",
			input: `prefix { incomplete`,
			want:  nil,
		},
		{
			name:  "malformed_braces",
			input: `} { valid } {`,
			want:  []string{`{ valid }`},
		},
		{
			name:  "mismatched_closer_discards",
			input: `{ "a": 1 ] {"b": 2}`,
			want:  []string{`{"b": 2}`},
		},
		{
			name:  "escaped_backslash",
			input: `{"key": "value with \\ inside"}`,
			want:  []string{`{"key": "value with \\ inside"}`},
		},
		{
			name:  "empty_object",
			input: `{}`,
			want:  []string{`{}`},
		},
		{
			name:  "empty_array",
			input: `[]`,
			want:  []string{`[]`},
		},
		{
			name:  "prose_quotes_ignored",
			input: `the "answer" is [1, 2]`,
			want:  []string{`[1, 2]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findJSONCandidates(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("findJSONCandidates(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("candidate %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindJSONCandidatesLargeInput(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString("some filler prose with occasional \" quotes and } strays ")
	}
	sb.WriteString(`{"needle": true}`)

	got := findJSONCandidates(sb.String())
	if len(got) != 1 || got[0] != `{"needle": true}` {
		t.Fatalf("expected single needle candidate, got %v", got)
	}
}

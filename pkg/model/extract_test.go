package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "surrounded by noise", input: `noise {"a":1} noise`, expected: `{"a":1}`},
		{name: "already an object", input: `{"a":1}`, expected: `{"a":1}`},
		{name: "whitespace trimmed", input: "\n  {\"a\":1}\t", expected: `{"a":1}`},
		{name: "code fence", input: "```json\n{\"a\":{\"b\":2}}\n```", expected: `{"a":{"b":2}}`},
		{name: "first open to last close", input: `x {"a":1} y {"b":2} z`, expected: `{"a":1} y {"b":2}`},
		{name: "no syntax check", input: `say {not json} ok`, expected: `{not json}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestExtractJSONErrors(t *testing.T) {
	for _, input := range []string{"no braces here", "", "only { open", "only } close", "} reversed {"} {
		t.Run(input, func(t *testing.T) {
			_, err := ExtractJSON(input)
			require.ErrorIs(t, err, ErrNoJSONObject)
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		envelope string
		expected string
	}{
		{
			name:     "convenience field",
			envelope: `{"output_text":"hello","output":[{"content":[{"text":"ignored"}]}]}`,
			expected: "hello",
		},
		{
			name:     "blank convenience field falls through",
			envelope: `{"output_text":"   ","output":[{"content":[{"text":"nested"}]}]}`,
			expected: "nested",
		},
		{
			name:     "non-string convenience field falls through",
			envelope: `{"output_text":42,"output":[{"content":[{"text":"nested"}]}]}`,
			expected: "nested",
		},
		{
			name: "first non-blank fragment across items",
			envelope: `{"output":[
				{"type":"reasoning","content":[]},
				{"type":"message","content":[{"type":"output_text","text":" "},{"type":"refusal"}]},
				{"type":"message","content":[{"type":"output_text","text":"second"},{"text":"third"}]}
			]}`,
			expected: "second",
		},
		{
			name:     "fragment text is returned untrimmed",
			envelope: `{"output":[{"content":[{"text":"  padded  "}]}]}`,
			expected: "  padded  ",
		},
		{
			name:     "nothing usable",
			envelope: `{"output":[{"content":[{"text":""}]},{"content":"nope"}]}`,
			expected: "",
		},
		{
			name:     "empty envelope",
			envelope: `{}`,
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ExtractText([]byte(tc.envelope)))
		})
	}
}

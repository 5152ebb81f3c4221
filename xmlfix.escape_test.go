package xmlfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "ampersand escaped",
			input:    "a & b",
			expected: "a &amp; b",
		},
		{
			name:     "angle brackets escaped",
			input:    "a < b > c",
			expected: "a &lt; b &gt; c",
		},
		{
			name:     "valid named entity preserved",
			input:    "already &amp; fine",
			expected: "already &amp; fine",
		},
		{
			name:     "all five named entities preserved",
			input:    "&lt;&gt;&amp;&quot;&apos;",
			expected: "&lt;&gt;&amp;&quot;&apos;",
		},
		{
			name:     "decimal character reference preserved",
			input:    "x &#65; y",
			expected: "x &#65; y",
		},
		{
			name:     "hex character reference preserved",
			input:    "x &#x1F600; y",
			expected: "x &#x1F600; y",
		},
		{
			name:     "invalid entity escaped",
			input:    "fish &chips;",
			expected: "fish &amp;chips;",
		},
		{
			name:     "bare ampersand next to valid entity",
			input:    "a & b &amp; c",
			expected: "a &amp; b &amp; c",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeText(tt.input))
		})
	}
}

func TestEscapeText_Idempotent(t *testing.T) {
	inputs := []string{
		"a < b & c",
		"already &amp; escaped",
		"mixed & and &lt;",
	}
	for _, input := range inputs {
		once := EscapeText(input)
		assert.Equal(t, once, EscapeText(once), "input %q", input)
	}
}

func TestEscapeAttributeValue(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		quoteChar  byte
		aggressive bool
		expected   string
	}{
		{
			name:      "plain value",
			value:     "hello",
			quoteChar: '"',
			expected:  "hello",
		},
		{
			name:      "double quote escaped in double quoted value",
			value:     `say "hi"`,
			quoteChar: '"',
			expected:  "say &quot;hi&quot;",
		},
		{
			name:      "single quote escaped in single quoted value",
			value:     "it's",
			quoteChar: '\'',
			expected:  "it&apos;s",
		},
		{
			name:      "single quote kept in double quoted value",
			value:     "it's",
			quoteChar: '"',
			expected:  "it's",
		},
		{
			name:      "specials escaped",
			value:     "a<b>&c",
			quoteChar: '"',
			expected:  "a&lt;b&gt;&amp;c",
		},
		{
			name:      "valid entity preserved",
			value:     "5 &lt; 6",
			quoteChar: '"',
			expected:  "5 &lt; 6",
		},
		{
			name:       "aggressive escapes quotes slash and whitespace",
			value:      `a/b "c" d`,
			quoteChar:  '"',
			aggressive: true,
			expected:   "a&#x2F;b&#x20;&quot;c&quot;&#x20;d",
		},
		{
			name:       "aggressive escapes newline and tab",
			value:      "a\tb\nc",
			quoteChar:  '"',
			aggressive: true,
			expected:   "a&#x09;b&#x0A;c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeAttributeValue(tt.value, tt.quoteChar, tt.aggressive))
		})
	}
}

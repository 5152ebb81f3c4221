package xmlfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixMalformedAttributes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare tag name",
			input:    "item",
			expected: "item",
		},
		{
			name:     "already quoted attribute",
			input:    `user name="alice"`,
			expected: `user name="alice"`,
		},
		{
			name:     "single quoted attribute kept",
			input:    `user name='alice'`,
			expected: `user name='alice'`,
		},
		{
			name:     "unquoted value quoted",
			input:    "item id=123",
			expected: `item id="123"`,
		},
		{
			name:     "multiple unquoted values",
			input:    "item id=123 type=product",
			expected: `item id="123" type="product"`,
		},
		{
			name:     "unquoted value with internal space",
			input:    "user name=John Smith age=30",
			expected: `user name="John Smith" age="30"`,
		},
		{
			name:     "duplicate attribute first wins",
			input:    `item id="1" id="2"`,
			expected: `item id="1"`,
		},
		{
			name:     "duplicate check is case insensitive",
			input:    `item id="1" ID="2"`,
			expected: `item id="1"`,
		},
		{
			name:     "duplicate with unquoted later value",
			input:    `item id="1" id=2 type=x`,
			expected: `item id="1" type="x"`,
		},
		{
			name:     "value with special characters escaped",
			input:    `item note=a<b`,
			expected: `item note="a&lt;b"`,
		},
		{
			name:     "quoted value with quote char escaped",
			input:    `item note="say "`,
			expected: `item note="say "`,
		},
		{
			name:     "dangling equals gets opening quote",
			input:    "item id=",
			expected: `item id="`,
		},
		{
			name:     "non attribute trailing content copied",
			input:    "item !!weird",
			expected: "item !!weird",
		},
		{
			name:     "bare equals after whitespace ends unquoted value",
			input:    "tag a=b = c",
			expected: `tag a="b" ="c"`,
		},
		{
			name:     "whitespace around content trimmed",
			input:    "  item id=5  ",
			expected: `item id="5"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := fixMalformedAttributes(tt.input, false)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFixMalformedAttributes_Actions(t *testing.T) {
	t.Run("unquoted value records action", func(t *testing.T) {
		_, actions := fixMalformedAttributes("item id=123", false)
		assert.Len(t, actions, 1)
		assert.Equal(t, RepairMalformedAttribute, actions[0].Type)
		assert.Equal(t, "item", actions[0].Location)
	})

	t.Run("duplicate records action", func(t *testing.T) {
		_, actions := fixMalformedAttributes(`item id="1" id="2"`, false)
		assert.Len(t, actions, 1)
		assert.Equal(t, RepairDuplicateAttribute, actions[0].Type)
	})

	t.Run("clean input records nothing", func(t *testing.T) {
		_, actions := fixMalformedAttributes(`item id="1"`, false)
		assert.Empty(t, actions)
	})
}

package xmlfix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		maxSize int
		wantErr string
	}{
		{
			name:    "valid input",
			input:   "<root/>",
			maxSize: 100,
		},
		{
			name:    "malformed but acceptable",
			input:   "<root><broken",
			maxSize: 100,
		},
		{
			name:    "empty",
			input:   "",
			maxSize: 100,
			wantErr: ErrMsgInputEmpty,
		},
		{
			name:    "whitespace only",
			input:   " \n\t ",
			maxSize: 100,
			wantErr: ErrMsgInputEmpty,
		},
		{
			name:    "over size cap",
			input:   strings.Repeat("x", 101),
			maxSize: 100,
			wantErr: ErrMsgInputTooLarge,
		},
		{
			name:    "cap disabled",
			input:   strings.Repeat("x", 1000),
			maxSize: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.input, tt.maxSize)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

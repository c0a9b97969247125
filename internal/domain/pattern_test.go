package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`^user \d+$`, "user 42", true},
		{`disk(?= full)`, "disk full", true},
		{`disk(?= full)`, "disk empty", false},
		{`A`, "A", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := compilePattern(tt.pattern)
			require.NoError(t, err)

			assert.Equal(t, tt.want, p.MatchString(tt.input))
		})
	}
}

func TestCompilePattern_Invalid(t *testing.T) {
	_, err := compilePattern("(")
	assert.Error(t, err)
}

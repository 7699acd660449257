package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidShortCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{code: "abc123", want: true},
		{code: "ABCdef78", want: true},
		{code: "abc12", want: false},
		{code: "abcdefghi", want: false},
		{code: "abc_12", want: false},
		{code: "", want: false},
		{code: "healthz", want: false},
		{code: "metrics", want: false},
		{code: "swagger", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidShortCode(tt.code))
		})
	}
}

func TestGeneratedLength(t *testing.T) {
	assert.Equal(t, 6, generatedLength(0))
	assert.Equal(t, 7, generatedLength(1))
	assert.Equal(t, 8, generatedLength(2))
	assert.Equal(t, 8, generatedLength(4))
}

func TestGenerateShortCode(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		code, err := generateShortCode(MinShortCodeLength)

		assert.NoError(t, err)
		assert.Regexp(t, `^[A-Za-z0-9]{6}$`, code)
		seen[code] = struct{}{}
	}

	assert.Greater(t, len(seen), 990)
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "lowercase", input: "550e8400-e29b-41d4-a716-446655440000", expected: true},
		{name: "uppercase", input: "A1B2C3D4-E5F6-7890-ABCD-EF1234567890", expected: true},
		{name: "mixed case", input: "a1B2c3D4-e5F6-7890-AbCd-Ef1234567890", expected: true},
		{name: "no dashes", input: "550e8400e29b41d4a716446655440000", expected: false},
		{name: "braces", input: "{550e8400-e29b-41d4-a716-446655440000}", expected: false},
		{name: "non hex", input: "g50e8400-e29b-41d4-a716-446655440000", expected: false},
		{name: "empty", input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidUUID(tt.input))
		})
	}
}

func TestAbbreviateUUID(t *testing.T) {
	assert.Equal(t, "550e8400…", AbbreviateUUID("550e8400-e29b-41d4-a716-446655440000"))
	assert.Equal(t, "order-17", AbbreviateUUID("order-17"))
}

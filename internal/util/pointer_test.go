package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolValueOr(t *testing.T) {
	yes, no := true, false
	assert.True(t, BoolValueOr(nil, true))
	assert.False(t, BoolValueOr(&no, true))
	assert.True(t, BoolValueOr(&yes, false))
}

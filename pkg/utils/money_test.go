package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCents(t *testing.T) {
	// 19.99 is not exactly representable; truncation would give 1998.
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, int64(10), ToCents(0.1))
	assert.Equal(t, int64(7), ToCents(0.07))
	assert.Equal(t, int64(0), ToCents(0))
	assert.Equal(t, int64(30000), ToCents(300.00))
	assert.Equal(t, int64(-1999), ToCents(-19.99))
}

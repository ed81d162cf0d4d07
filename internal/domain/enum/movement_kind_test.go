package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementKindSign(t *testing.T) {
	credits := []MovementKind{MovementOpening, MovementInflow, MovementSale}
	for _, k := range credits {
		assert.True(t, k.IsCredit(), k.String())
		assert.Equal(t, int64(1), k.Sign(), k.String())
	}

	debits := []MovementKind{MovementClosing, MovementOutflow, MovementShortage}
	for _, k := range debits {
		assert.False(t, k.IsCredit(), k.String())
		assert.Equal(t, int64(-1), k.Sign(), k.String())
	}
}

func TestMovementKindString(t *testing.T) {
	assert.Equal(t, "opening", MovementOpening.String())
	assert.Equal(t, "sale", MovementSale.String())
	assert.Equal(t, "shortage", MovementShortage.String())

	// Out-of-range values must not panic.
	assert.Equal(t, "unknown", MovementKind(99).String())
	assert.Equal(t, "unknown", MovementKind(-1).String())
}

func TestMovementKindScanRejectsOutOfRange(t *testing.T) {
	var k MovementKind
	require.NoError(t, k.Scan(int64(4)))
	assert.Equal(t, MovementSale, k)

	assert.Error(t, k.Scan(int64(99)))
	assert.Error(t, k.Scan(int64(-1)))
	assert.Error(t, k.Scan("sale"))
}

func TestMovementKindUnmarshalRejectsUnknown(t *testing.T) {
	var k MovementKind
	require.NoError(t, json.Unmarshal([]byte(`"outflow"`), &k))
	assert.Equal(t, MovementOutflow, k)

	assert.Error(t, json.Unmarshal([]byte(`"refund"`), &k))
}

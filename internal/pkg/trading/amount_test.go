package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxPositionValue(t *testing.T) {
	assert.InDelta(t, 5_000, MaxPositionValue(100_000, 0.05, 0), 1e-9)
	assert.InDelta(t, 4_000, MaxPositionValue(100_000, 0.05, 4_000), 1e-9)
	assert.InDelta(t, 5_000, MaxPositionValue(100_000, 0.05, 9_000), 1e-9)
	assert.Zero(t, MaxPositionValue(0, 0.05, 1_000))
	assert.Zero(t, MaxPositionValue(100_000, 0, 1_000))
}

func TestLotQuantity(t *testing.T) {
	assert.EqualValues(t, 100, LotQuantity(5_000, 50, 100))
	assert.EqualValues(t, 100, LotQuantity(5_000, 33, 100)) // 151 floored
	assert.EqualValues(t, 0, LotQuantity(4_000, 50, 100))   // 80 below one lot
	assert.EqualValues(t, 0, LotQuantity(0, 50, 100))
	assert.EqualValues(t, 0, LotQuantity(5_000, 0, 100))
	assert.EqualValues(t, 0, LotQuantity(5_000, 50, 0))

	// exact lot boundary must not lose a lot to float division
	assert.EqualValues(t, 300, LotQuantity(16.5, 0.055, 100))
}

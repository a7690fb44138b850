package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestSnapLowerTieIdempotent(t *testing.T) {
	values := []float64{-13.7, -2.54, -1.27, 0, 0.3, 1.27, 2.54, 3.9, 100.01}
	for _, v := range values {
		once := SnapLowerTie(v, GridPitch)
		twice := SnapLowerTie(once, GridPitch)
		assert.Equal(t, once, twice, "snap must be idempotent for %v", v)
	}
}

func TestSnapLowerTieHalfGridResolvesDown(t *testing.T) {
	for k := -5; k <= 5; k++ {
		v := float64(k)*GridPitch + GridPitch/2
		got := SnapLowerTie(v, GridPitch)
		assert.InDelta(t, float64(k)*GridPitch, got, 1e-12,
			"half-grid tie at k=%d must resolve to the lower multiple", k)
	}
}

func TestSnapLowerTieNearest(t *testing.T) {
	assert.InDelta(t, 2.54, SnapLowerTie(2.6, GridPitch), 1e-12)
	assert.InDelta(t, 2.54, SnapLowerTie(3.0, GridPitch), 1e-12)
	assert.InDelta(t, 5.08, SnapLowerTie(4.0, GridPitch), 1e-12)
	assert.InDelta(t, 0, SnapLowerTie(1.2, GridPitch), 1e-12)
	assert.InDelta(t, -2.54, SnapLowerTie(-2.0, GridPitch), 1e-12)
}

func TestSnapZeroGridPassthrough(t *testing.T) {
	assert.Equal(t, 1.3, SnapLowerTie(1.3, 0))
}

func TestGridAlignmentOffset(t *testing.T) {
	off := GridAlignmentOffset(r2.Vec{X: 2.6, Y: -1.2})
	assert.InDelta(t, 2.54-2.6, off.X, 1e-12)
	assert.InDelta(t, 0-(-1.2), off.Y, 1e-12)

	// An anchor already on grid needs no offset.
	off = GridAlignmentOffset(r2.Vec{X: 5.08, Y: -2.54})
	assert.InDelta(t, 0, off.X, 1e-12)
	assert.InDelta(t, 0, off.Y, 1e-12)
}

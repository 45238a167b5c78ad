package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquaredL2(t *testing.T) {
	assert.InDelta(t, 0.0, SquaredL2([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 25.0, SquaredL2([]float32{0, 0}, []float32{3, 4}), 1e-9)
	assert.InDelta(t, 2.0, SquaredL2([]float32{1, 1}, []float32{1}), 1e-9, "excess dimension counts against the longer vector")
}

func TestNearest_KeepsClosest(t *testing.T) {
	n := NewNearest[string](3)
	for i, d := range []float64{5, 1, 9, 3, 7, 2} {
		n.Offer(string(rune('a'+i)), d)
	}

	got := n.Sorted()
	assert.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Item)
	assert.Equal(t, "f", got[1].Item)
	assert.Equal(t, "d", got[2].Item)
	assert.InDelta(t, 1.0, got[0].Distance, 1e-9)
}

func TestNearest_FewerThanK(t *testing.T) {
	n := NewNearest[int](10)
	n.Offer(1, 0.5)
	n.Offer(2, 0.25)

	got := n.Sorted()
	assert.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Item)
}

func TestNearest_ZeroK(t *testing.T) {
	n := NewNearest[int](0)
	n.Offer(1, 0)
	assert.Empty(t, n.Sorted())
}

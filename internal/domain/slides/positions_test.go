package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func list(positions ...int) []Slide {
	out := make([]Slide, len(positions))
	for i, p := range positions {
		out[i] = Slide{ID: uint(i + 1), Position: p}
	}
	return out
}

func TestRepackClosesGaps(t *testing.T) {
	updates := Repack(list(0, 2, 5))
	assert.Equal(t, []PositionUpdate{{ID: 2, Position: 1}, {ID: 3, Position: 2}}, updates)
}

func TestRepackNoopWhenDense(t *testing.T) {
	assert.Empty(t, Repack(list(0, 1, 2)))
	assert.Empty(t, Repack(nil))
}

func TestMoveSwapsNeighbours(t *testing.T) {
	moved, ok := Move(list(0, 1, 2), 0, 1)
	assert.True(t, ok)
	assert.Equal(t, []uint{2, 1, 3}, ids(moved))
	assert.Equal(t, []PositionUpdate{{ID: 2, Position: 0}, {ID: 1, Position: 1}}, Repack(moved))
}

func TestMoveOutOfRangeIsNoop(t *testing.T) {
	in := list(0, 1)
	for _, tc := range []struct{ index, dir int }{{0, -1}, {1, 1}, {5, -1}, {-1, 1}, {0, 0}} {
		out, ok := Move(in, tc.index, tc.dir)
		assert.False(t, ok, "index=%d dir=%d", tc.index, tc.dir)
		assert.Equal(t, ids(in), ids(out))
	}
}

func TestTypeFromMIME(t *testing.T) {
	assert.Equal(t, TypeImage, TypeFromMIME("image/png"))
	assert.Equal(t, TypeVideo, TypeFromMIME("video/mp4"))
	assert.Equal(t, TypePDF, TypeFromMIME("application/pdf"))
	assert.Equal(t, "videos", Folder(TypeVideo))
}

func TestNormalizeDuration(t *testing.T) {
	assert.Equal(t, 5000, NormalizeDuration(5))
	assert.Equal(t, MinDuration, NormalizeDuration(0.2))
	assert.Equal(t, MinDuration, NormalizeDuration(-3))
}

func ids(in []Slide) []uint {
	out := make([]uint, len(in))
	for i, s := range in {
		out[i] = s.ID
	}
	return out
}

package palette

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBGR555RGB888RoundTripsOnFiveBitBoundaries(t *testing.T) {
	// only the top 5 bits of each channel survive the BGR555 format, so
	// round-tripping only holds for values already aligned to that grid
	for _, c := range [][3]uint8{{0, 0, 0}, {0xFF, 0xFF, 0xFF}, {0x08, 0x10, 0x18}} {
		word := BGR555(c[0], c[1], c[2])
		got := RGB888(word)
		require.Equal(t, c[0]&0xF8, got[0]&0xF8)
		require.Equal(t, c[1]&0xF8, got[1]&0xF8)
		require.Equal(t, c[2]&0xF8, got[2]&0xF8)
	}
}

func TestSelectCompatibilityPaletteFallsBackToGreyscale(t *testing.T) {
	got := SelectCompatibilityPalette("a title checksum unlikely to be in the table")
	require.Equal(t, Greyscale, got.BG)
	require.Equal(t, Greyscale, got.OBJ0)
	require.Equal(t, Greyscale, got.OBJ1)
}

func TestSelectCompatibilityPaletteIsDeterministic(t *testing.T) {
	a := SelectCompatibilityPalette("TETRIS")
	b := SelectCompatibilityPalette("TETRIS")
	require.Equal(t, a, b)
}

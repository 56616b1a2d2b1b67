package calchart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordAddSub(t *testing.T) {
	a := Coord{X: 10, Y: 20}
	b := Coord{X: 3, Y: 5}
	require.Equal(t, Coord{X: 13, Y: 25}, a.Add(b))
	require.Equal(t, Coord{X: 7, Y: 15}, a.Sub(b))
}

func TestCoordLerp(t *testing.T) {
	a := Coord{X: 0, Y: 0}
	b := Coord{X: 32, Y: 0}
	require.Equal(t, Coord{X: 16, Y: 0}, a.Lerp(b, 0.5))
	require.Equal(t, a, a.Lerp(b, 0))
	require.Equal(t, b, a.Lerp(b, 1))
}

func TestCoordDirectionToCompassPoints(t *testing.T) {
	origin := Coord{X: 0, Y: 0}
	cases := []struct {
		name string
		dst  Coord
		want Degree
	}{
		{"north", Coord{X: 0, Y: -10}, 0},
		{"east", Coord{X: 10, Y: 0}, 90},
		{"south", Coord{X: 0, Y: 10}, 180},
		{"west", Coord{X: -10, Y: 0}, 270},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, origin.DirectionTo(tc.dst))
		})
	}
}

func TestDegreeNormalize(t *testing.T) {
	require.Equal(t, Degree(10), Degree(370).Normalize())
	require.Equal(t, Degree(350), Degree(-10).Normalize())
	require.Equal(t, Degree(0), Degree(360).Normalize())
}

func TestDegreeQuantize8(t *testing.T) {
	require.Equal(t, Degree(45), Degree(40).Quantize8())
	require.Equal(t, Degree(0), Degree(10).Quantize8())
	require.Equal(t, Degree(0), Degree(350).Quantize8())
}

func TestChebyshevDistSq(t *testing.T) {
	a := Coord{X: 0, Y: 0}
	b := Coord{X: 16, Y: 0}
	require.Equal(t, int64(256), a.ChebyshevDistSq(b))

	c := Coord{X: 8, Y: 8}
	require.Equal(t, int64(64), a.ChebyshevDistSq(c))
}

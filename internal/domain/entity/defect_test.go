package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordinatesCenter(t *testing.T) {
	c := Coordinates{Start: Point{X: 10, Y: 20}, End: Point{X: 18, Y: 26}}
	x, y := c.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
}

func TestCoordinatesClamp(t *testing.T) {
	c := Coordinates{Start: Point{X: 120, Y: -5}, End: Point{X: -10, Y: 400}}
	got := c.Clamp(100, 375)
	require.Equal(t, Point{X: 0, Y: 0}, got.Start)
	require.Equal(t, Point{X: 100, Y: 375}, got.End)
	require.LessOrEqual(t, got.Start.X, got.End.X)
	require.LessOrEqual(t, got.Start.Y, got.End.Y)
}

func TestCoordinatesInflateAndContains(t *testing.T) {
	c := Coordinates{Start: Point{X: 10, Y: 10}, End: Point{X: 20, Y: 20}}.Inflate(2)
	require.True(t, c.Contains(8, 8))
	require.True(t, c.Contains(22, 22))
	require.False(t, c.Contains(23, 15))
}

func TestClassMapping(t *testing.T) {
	for i, dt := range DefectTypes() {
		id, ok := ClassID(dt)
		require.True(t, ok)
		require.Equal(t, i, id)

		back, ok := DefectTypeByClass(id)
		require.True(t, ok)
		require.Equal(t, dt, back)
	}

	_, ok := DefectTypeByClass(42)
	require.False(t, ok)
}

func TestParseDefectType(t *testing.T) {
	dt, err := ParseDefectType("noise")
	require.NoError(t, err)
	require.Equal(t, DefectNoise, dt)

	_, err = ParseDefectType("rust")
	require.Error(t, err)
}

func TestCoordinatesEmpty(t *testing.T) {
	require.False(t, Coordinates{Start: Point{X: 1, Y: 1}, End: Point{X: 2, Y: 3}}.Empty())
	require.True(t, Coordinates{Start: Point{X: 54, Y: 0}, End: Point{X: 113, Y: 0}}.Empty())

	// Кривая целиком справа от холста после обрезки превращается в линию на границе.
	outside := Coordinates{Start: Point{X: 130, Y: -10}, End: Point{X: 150, Y: 40}}
	require.True(t, outside.Clamp(120, 90).Empty())
}

package entity

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCanvas_CopiesSource(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 25, 15))
	src.Set(5, 5, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	c := NewCanvas("a.png", src)
	require.Equal(t, 20, c.Width)
	require.Equal(t, 10, c.Height)
	require.Equal(t, image.Rect(0, 0, 20, 10), c.Mask.Bounds())

	c.Defected.Set(0, 0, color.White)
	require.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, c.Original.NRGBAAt(0, 0))
}

func TestCanvas_AddDefectClamps(t *testing.T) {
	c := NewCanvas("a.png", image.NewRGBA(image.Rect(0, 0, 50, 40)))
	d := c.AddDefect(DefectScratch, Coordinates{Start: Point{X: -3, Y: 10}, End: Point{X: 70, Y: 39}})

	require.Equal(t, Point{X: 0, Y: 10}, d.Coordinates.Start)
	require.Equal(t, Point{X: 50, Y: 39}, d.Coordinates.End)
	require.Len(t, c.Defects(), 1)

	// Копия не влияет на холст.
	list := c.Defects()
	list[0].Type = DefectNoise
	require.Equal(t, DefectScratch, c.Defects()[0].Type)
}

func TestCanvas_FinalizeMask(t *testing.T) {
	c := NewCanvas("a.png", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	c.Mask.SetGray(1, 1, color.Gray{Y: 12})
	c.Mask.SetGray(2, 2, color.Gray{Y: 255})

	c.FinalizeMask()
	require.Equal(t, uint8(255), c.Mask.GrayAt(1, 1).Y)
	require.Equal(t, uint8(0), c.Mask.GrayAt(0, 0).Y)
	require.Equal(t, 2, c.MaskPixels())
}

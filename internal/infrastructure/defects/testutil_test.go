package defects

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
)

// gradientCanvas холст с горизонтальным градиентом, чтобы размытие меняло пиксели.
func gradientCanvas(w, h int) *entity.Canvas {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*3) % 256)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: v / 2, A: 255})
		}
	}
	return entity.NewCanvas("test.png", img)
}

func uniformCanvas(w, h int, c color.NRGBA) *entity.Canvas {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return entity.NewCanvas("test.png", img)
}

func requireRecordsInBounds(t *testing.T, c *entity.Canvas, records []entity.Defect) {
	t.Helper()
	for _, d := range records {
		co := d.Coordinates
		require.True(t, 0 <= co.Start.X && co.Start.X <= co.End.X && co.End.X <= c.Width, "x out of bounds: %+v", co)
		require.True(t, 0 <= co.Start.Y && co.Start.Y <= co.End.Y && co.End.Y <= c.Height, "y out of bounds: %+v", co)
	}
}

// requireTouchedInsideRecords проверяет, что каждый изменённый пиксель изображения
// и каждый пиксель маски лежит внутри хотя бы одной записи.
func requireTouchedInsideRecords(t *testing.T, c *entity.Canvas, records []entity.Defect) {
	t.Helper()
	inside := func(x, y int) bool {
		for _, d := range records {
			if d.Coordinates.Contains(x, y) {
				return true
			}
		}
		return false
	}
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			touched := c.Mask.GrayAt(x, y).Y != 0 || c.Defected.NRGBAAt(x, y) != c.Original.NRGBAAt(x, y)
			if touched {
				require.True(t, inside(x, y), "pixel (%d,%d) outside all records", x, y)
			}
		}
	}
}

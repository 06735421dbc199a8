package defects

import (
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"defectgen/internal/domain/entity"
)

// BlurPainter размывает эллиптические области изображения.
type BlurPainter struct {
	MinRegions int // минимум областей
	MaxRegions int // максимум областей
	MinSigma   int
	MaxSigma   int
}

// NewBlurPainter создаёт генератор размытия с параметрами по умолчанию.
func NewBlurPainter() *BlurPainter {
	return &BlurPainter{MinRegions: 7, MaxRegions: 15, MinSigma: 3, MaxSigma: 8}
}

// Type возвращает тип дефекта.
func (p *BlurPainter) Type() entity.DefectType {
	return entity.DefectBlur
}

// Paint размывает случайные эллипсы; размытие считается по обрезку с запасом 3 сигмы.
func (p *BlurPainter) Paint(c *entity.Canvas, rng *rand.Rand) []entity.Defect {
	side := min(c.Width, c.Height)
	minSize, maxSize := side/20, side/5

	var added []entity.Defect
	n := randInt(rng, p.MinRegions, p.MaxRegions)
	for i := 0; i < n; i++ {
		cx := randInt(rng, 0, c.Width)
		cy := randInt(rng, 0, c.Height)
		bw := randInt(rng, minSize, maxSize)
		bh := randInt(rng, minSize, maxSize)
		sigma := randInt(rng, p.MinSigma, p.MaxSigma)

		box := image.Rect(cx-bw/2, cy-bh/2, cx+bw/2, cy+bh/2)
		coords := entity.Coordinates{
			Start: entity.Point{X: box.Min.X, Y: box.Min.Y},
			End:   entity.Point{X: box.Max.X, Y: box.Max.Y},
		}
		if coords.Clamp(c.Width, c.Height).Empty() {
			continue
		}
		p.blurEllipse(c, box, float64(sigma))
		d, _ := addRecord(c, entity.DefectBlur, coords)
		added = append(added, d)
	}
	return added
}

// blurEllipse заменяет пиксели эллипса, вписанного в box, размытой копией.
func (p *BlurPainter) blurEllipse(c *entity.Canvas, box image.Rectangle, sigma float64) {
	rx := float64(box.Dx()) / 2
	ry := float64(box.Dy()) / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	pad := int(3 * sigma)
	region := image.Rect(box.Min.X-pad, box.Min.Y-pad, box.Max.X+pad+1, box.Max.Y+pad+1).
		Intersect(c.Defected.Bounds())
	if region.Empty() {
		return
	}

	blurred := imaging.Blur(imaging.Crop(c.Defected, region), sigma)
	ex := float64(box.Min.X) + rx
	ey := float64(box.Min.Y) + ry

	inner := box.Intersect(c.Defected.Bounds())
	if inner.Empty() {
		return
	}
	for y := inner.Min.Y; y <= inner.Max.Y && y < c.Height; y++ {
		for x := inner.Min.X; x <= inner.Max.X && x < c.Width; x++ {
			dx := (float64(x) + 0.5 - ex) / rx
			dy := (float64(y) + 0.5 - ey) / ry
			if dx*dx+dy*dy > 1 {
				continue
			}
			c.Defected.SetNRGBA(x, y, blurred.NRGBAAt(x-region.Min.X, y-region.Min.Y))
		}
	}
}

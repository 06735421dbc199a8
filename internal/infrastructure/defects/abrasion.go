package defects

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/raster"
)

// AbrasionPainter рисует потёртости: зашумлённые шестиугольники, смешанные с ровным тоном.
type AbrasionPainter struct {
	MinAreas   int
	MaxAreas   int
	NoiseLevel float64 // сигма шума вершин и тона
	Vertices   int
}

// NewAbrasionPainter создаёт генератор потёртостей с параметрами по умолчанию.
func NewAbrasionPainter() *AbrasionPainter {
	return &AbrasionPainter{MinAreas: 10, MaxAreas: 15, NoiseLevel: 15, Vertices: 6}
}

// Type возвращает тип дефекта.
func (p *AbrasionPainter) Type() entity.DefectType {
	return entity.DefectAbrasion
}

// Paint наносит потёртости на холст.
func (p *AbrasionPainter) Paint(c *entity.Canvas, rng *rand.Rand) []entity.Defect {
	if c.Width == 0 || c.Height == 0 {
		return nil
	}
	maxW := max(10, c.Width/10)
	maxH := max(10, c.Height/10)
	normal := distuv.Normal{Mu: 0, Sigma: p.NoiseLevel, Src: rng}

	var added []entity.Defect
	n := randInt(rng, p.MinAreas, p.MaxAreas)
	for i := 0; i < n; i++ {
		center := image.Pt(rng.IntN(c.Width), rng.IntN(c.Height))
		size := image.Pt(randInt(rng, 10, maxW), randInt(rng, 10, maxH))

		area, rect := p.polygonMask(c, center, size, rng, normal)
		bounds, ok := maskBounds(area, rect)
		// Область в один столбец или строку не даёт прямоугольника для разметки.
		if !ok || bounds.Empty() {
			continue
		}
		p.wear(c, area, rect, center, rng, normal)
		added = append(added, c.AddDefect(entity.DefectAbrasion, bounds))
	}
	return added
}

// polygonMask строит маску шестиугольника с шумом в вершинах и прямоугольник,
// за пределами которого маска пуста.
func (p *AbrasionPainter) polygonMask(c *entity.Canvas, center, size image.Point, rng *rand.Rand, normal distuv.Normal) (*image.Gray, image.Rectangle) {
	radius := float64(randInt(rng, 5, max(5, min(size.X, size.Y)/2)))
	pts := make([][2]float64, p.Vertices)
	for k := range pts {
		angle := 2 * math.Pi * float64(k) / float64(p.Vertices)
		x := float64(center.X) + radius*math.Cos(angle) + normal.Rand()
		y := float64(center.Y) + radius*math.Sin(angle) + normal.Rand()
		pts[k] = [2]float64{
			math.Max(0, math.Min(x, float64(c.Width-1))),
			math.Max(0, math.Min(y, float64(c.Height-1))),
		}
	}
	rect := image.Rectangle{Min: image.Pt(c.Width, c.Height)}
	for _, pt := range pts {
		rect.Min.X = min(rect.Min.X, int(pt[0]))
		rect.Min.Y = min(rect.Min.Y, int(pt[1]))
		rect.Max.X = max(rect.Max.X, int(pt[0])+1)
		rect.Max.Y = max(rect.Max.Y, int(pt[1])+1)
	}
	mask := image.NewGray(image.Rect(0, 0, c.Width, c.Height))
	raster.FillPolygonF(mask, pts, 255)
	return mask, rect.Intersect(mask.Bounds())
}

// wear смешивает область с тоном потёртости.
func (p *AbrasionPainter) wear(c *entity.Canvas, area *image.Gray, rect image.Rectangle, center image.Point, rng *rand.Rand, normal distuv.Normal) {
	var tone float64
	if rng.Float64() < 0.1 {
		tone = float64(randInt(rng, 220, 255))
	} else {
		base := float64(raster.Luma(c.Defected.NRGBAAt(center.X, center.Y)))
		tone = math.Max(0, math.Min(255, base+normal.Rand()))
	}

	// В 15% случаев область заливается ровным серым.
	replace := rng.Float64() >= 0.85
	if replace {
		tone = float64(randInt(rng, 200, 255))
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if area.GrayAt(x, y).Y == 0 {
				continue
			}
			px := c.Defected.NRGBAAt(x, y)
			if replace {
				px = color.NRGBA{R: uint8(tone), G: uint8(tone), B: uint8(tone), A: px.A}
			} else {
				px = blend(px, tone)
			}
			// Второй проход сглаживает переход к тону.
			c.Defected.SetNRGBA(x, y, blend(px, tone))
		}
	}
}

func blend(px color.NRGBA, tone float64) color.NRGBA {
	mix := func(v uint8) uint8 {
		return raster.ClampByte(0.6*float64(v) + 0.4*tone)
	}
	return color.NRGBA{R: mix(px.R), G: mix(px.G), B: mix(px.B), A: px.A}
}

// maskBounds ограничивающий прямоугольник ненулевых пикселей маски.
func maskBounds(mask *image.Gray, b image.Rectangle) (entity.Coordinates, bool) {
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := -1, -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}
	if maxX < 0 {
		return entity.Coordinates{}, false
	}
	return entity.Coordinates{
		Start: entity.Point{X: minX, Y: minY},
		End:   entity.Point{X: maxX, Y: maxY},
	}, true
}

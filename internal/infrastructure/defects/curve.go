package defects

import (
	"image"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"defectgen/internal/domain/entity"
)

const (
	// coarseSamples точек для грубой оценки длины кривой Безье
	coarseSamples = 10
	// bezierDensity точек на пиксель длины кривой
	bezierDensity = 1.2
	// catmullRomSamples фиксированное число точек сплайна
	catmullRomSamples = 100
)

// Curve неизменяемая последовательность целочисленных точек кривой.
type Curve struct {
	points []image.Point
}

// NewCurve создаёт кривую из копии точек.
func NewCurve(points []image.Point) Curve {
	cp := make([]image.Point, len(points))
	copy(cp, points)
	return Curve{points: cp}
}

// Len количество точек
func (c Curve) Len() int {
	return len(c.points)
}

// At возвращает i-ю точку.
func (c Curve) At(i int) image.Point {
	return c.points[i]
}

// Points возвращает копию точек.
func (c Curve) Points() []image.Point {
	return NewCurve(c.points).points
}

// Head возвращает новую кривую из первых n точек.
func (c Curve) Head(n int) Curve {
	if n > len(c.points) {
		n = len(c.points)
	}
	if n < 0 {
		n = 0
	}
	return NewCurve(c.points[:n])
}

// Chord возвращает первую и последнюю точки кривой.
func (c Curve) Chord() (image.Point, image.Point, bool) {
	if len(c.points) == 0 {
		return image.Point{}, image.Point{}, false
	}
	return c.points[0], c.points[len(c.points)-1], true
}

// Bounds возвращает ограничивающий прямоугольник всех точек.
func (c Curve) Bounds() (entity.Coordinates, bool) {
	if len(c.points) == 0 {
		return entity.Coordinates{}, false
	}
	minX, minY := c.points[0].X, c.points[0].Y
	maxX, maxY := minX, minY
	for _, p := range c.points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return entity.Coordinates{
		Start: entity.Point{X: minX, Y: minY},
		End:   entity.Point{X: maxX, Y: maxY},
	}, true
}

// record строит запись о царапине по точкам кривой, nil для пустой кривой.
func (c Curve) record() *entity.Defect {
	bounds, ok := c.Bounds()
	if !ok {
		return nil
	}
	return &entity.Defect{Type: entity.DefectScratch, Coordinates: bounds}
}

// touches сообщает, что хотя бы одна точка кривой лежит на холсте w×h.
func (c Curve) touches(w, h int) bool {
	for _, p := range c.points {
		if p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h {
			return true
		}
	}
	return false
}

// addRecord добавляет запись, только если после обрезки по холсту прямоугольник не вырожден.
func addRecord(c *entity.Canvas, t entity.DefectType, coords entity.Coordinates) (entity.Defect, bool) {
	if coords.Clamp(c.Width, c.Height).Empty() {
		return entity.Defect{}, false
	}
	return c.AddDefect(t, coords), true
}

// QuadraticBezier строит квадратичную кривую Безье с шумом.
// Число точек пропорционально длине кривой, оценённой по 10 опорным точкам.
func QuadraticBezier(p0, p1, p2 r2.Vec, noise float64, rng *rand.Rand) (Curve, *entity.Defect) {
	calc := func(t float64) r2.Vec {
		a := r2.Scale((1-t)*(1-t), p0)
		b := r2.Scale(2*t*(1-t), p1)
		c := r2.Scale(t*t, p2)
		return r2.Add(r2.Add(a, b), c)
	}

	var length float64
	prev := calc(0)
	for _, t := range linspace(coarseSamples)[1:] {
		cur := calc(t)
		length += r2.Norm(r2.Sub(cur, prev))
		prev = cur
	}

	ts := linspace(int(math.RoundToEven(length * bezierDensity)))
	points := make([]image.Point, 0, len(ts))
	for _, t := range ts {
		p := calc(t)
		points = append(points, image.Pt(
			int(math.RoundToEven(p.X+jitter(rng, noise))),
			int(math.RoundToEven(p.Y+jitter(rng, noise))),
		))
	}

	curve := Curve{points: points}
	return curve, curve.record()
}

// CatmullRom строит сегмент сплайна Катмулла-Рома между p1 и p2 из 100 точек с шумом.
func CatmullRom(p0, p1, p2, p3 r2.Vec, noise float64, rng *rand.Rand) (Curve, *entity.Defect) {
	blend := func(a, b, c, d, t float64) float64 {
		return 0.5 * ((2 * b) +
			(-a+c)*t +
			(2*a-5*b+4*c-d)*t*t +
			(-a+3*b-3*c+d)*t*t*t)
	}

	ts := linspace(catmullRomSamples)
	points := make([]image.Point, 0, len(ts))
	for _, t := range ts {
		x := blend(p0.X, p1.X, p2.X, p3.X, t)
		y := blend(p0.Y, p1.Y, p2.Y, p3.Y, t)
		points = append(points, image.Pt(int(x+jitter(rng, noise)), int(y+jitter(rng, noise))))
	}

	curve := Curve{points: points}
	return curve, curve.record()
}

// linspace возвращает n равномерных значений на [0,1] включая концы.
func linspace(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(n-1)
	}
	return out
}

// jitter равномерный шум в [-level, level].
func jitter(rng *rand.Rand, level float64) float64 {
	return uniform(rng, -level, level)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// randInt случайное целое в [lo, hi] включительно.
func randInt(rng *rand.Rand, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

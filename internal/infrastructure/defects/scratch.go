package defects

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/raster"
)

// ScratchPainter рисует короткие изогнутые царапины, длинную царапину и прямую линию
// от края до края, после чего разрешает пересечения кривых.
type ScratchPainter struct {
	MinScratches        int     // минимум коротких царапин
	MaxScratches        int     // максимум коротких царапин
	MaxLength           float64 // максимальная длина короткой царапины
	ShortNoise          float64 // шум коротких царапин
	LongNoise           float64 // шум длинной царапины
	StraightNoise       float64 // шум прямой линии
	LongProbability     float64 // вероятность длинной царапины
	StraightProbability float64 // вероятность прямой линии
	CutProbability      float64 // вероятность обрезать пересекающую кривую
	MaskRadius          int     // радиус отметки на маске
}

// NewScratchPainter создаёт генератор царапин с параметрами по умолчанию.
func NewScratchPainter() *ScratchPainter {
	return &ScratchPainter{
		MinScratches:        10,
		MaxScratches:        30,
		MaxLength:           200,
		ShortNoise:          1.0,
		LongNoise:           2.0,
		StraightNoise:       2.0,
		LongProbability:     0.5,
		StraightProbability: 0.5,
		CutProbability:      0.5,
		MaskRadius:          2,
	}
}

// Type возвращает тип дефекта.
func (p *ScratchPainter) Type() entity.DefectType {
	return entity.DefectScratch
}

// Paint наносит царапины на холст и заполняет маску.
func (p *ScratchPainter) Paint(c *entity.Canvas, rng *rand.Rand) []entity.Defect {
	var added []entity.Defect
	var curves []Curve

	n := randInt(rng, p.MinScratches, p.MaxScratches)
	for i := 0; i < n; i++ {
		curve, d := p.drawScratch(c, rng, false)
		curves = append(curves, curve)
		added = append(added, d...)
	}

	if rng.Float64() < p.LongProbability {
		curve, d := p.drawScratch(c, rng, true)
		curves = append(curves, curve)
		added = append(added, d...)
	}

	if rng.Float64() < p.StraightProbability {
		added = append(added, p.drawStraightLine(c, rng)...)
	}

	p.resolveIntersections(c, curves, rng)
	c.FinalizeMask()

	return added
}

// drawScratch строит одну кривую, рисует её на изображении и маске и записывает дефект.
func (p *ScratchPainter) drawScratch(c *entity.Canvas, rng *rand.Rand, long bool) (Curve, []entity.Defect) {
	thickness := int(float64(min(c.Width, c.Height)) * uniform(rng, 0.002, 0.005))

	start := r2.Vec{X: uniform(rng, 0, float64(c.Width)), Y: uniform(rng, 0, float64(c.Height))}
	rho1 := uniform(rng, 50, p.MaxLength)
	noise := p.ShortNoise
	if long {
		rho1 = uniform(rng, 150, 2*p.MaxLength)
		noise = p.LongNoise
	}
	end := r2.Add(start, polar(rho1, uniform(rng, 0, 2*math.Pi)))

	// Смещённая средняя точка задаёт изгиб.
	rho2 := uniform(rng, 0, rho1/2)
	mid := r2.Add(r2.Scale(0.5, r2.Add(start, end)), polar(rho2, uniform(rng, 0, 2*math.Pi)))

	var curve Curve
	var rec *entity.Defect
	if rng.IntN(2) == 0 {
		curve, rec = CatmullRom(start, mid, end, r2.Add(mid, r2.Vec{X: 20, Y: 20}), noise, rng)
	} else {
		curve, rec = QuadraticBezier(start, mid, end, noise, rng)
	}

	p.paintCurve(c, rng, curve, thickness)
	stampMask(c, curve, p.MaskRadius)

	// Кривая целиком за пределами холста ничего не нарисовала.
	if rec == nil || !curve.touches(c.Width, c.Height) {
		return curve, nil
	}
	d, ok := addRecord(c, rec.Type, rec.Coordinates.Inflate(max(thickness, p.MaskRadius)))
	if !ok {
		return curve, nil
	}
	return curve, []entity.Defect{d}
}

// paintCurve рисует точки кривой: в 90% случаев цветом царапины, иначе серым тоном
// исходного пикселя, который светлеет к концу кривой.
func (p *ScratchPainter) paintCurve(c *entity.Canvas, rng *rand.Rand, curve Curve, thickness int) {
	lineColor := float64(randomGray(rng))
	brightness := 1 + float64(thickness)/10
	n := curve.Len()

	for i := 0; i < n; i++ {
		pt := curve.At(i)
		if !c.InBounds(pt.X, pt.Y) {
			continue
		}

		value := lineColor
		if rng.Float64() >= 0.9 {
			gray := float64(raster.Luma(c.Original.NRGBAAt(pt.X, pt.Y)))
			alpha := float64(i) / float64(n)
			value = gray + (255-gray)*alpha
		}
		value = math.Min(value*brightness, 255)

		if (i == 0 || i == n-1) && rng.Float64() < 0.1 {
			value *= 0.8
		}
		raster.FillCircle(c.Defected, pt.X, pt.Y, thickness, grayColor(value))
	}
}

// drawStraightLine рисует прямую между двумя случайными точками на краях изображения.
func (p *ScratchPainter) drawStraightLine(c *entity.Canvas, rng *rand.Rand) []entity.Defect {
	thickness := int(float64(min(c.Width, c.Height)) * uniform(rng, 0.007, 0.01))
	radius := thickness / 2

	from := edgePoint(rng, c.Width, c.Height)
	to := edgePoint(rng, c.Width, c.Height)
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	length := int(math.Hypot(dx, dy))
	step := max(thickness/2, 1)

	var points []image.Point
	for d := 0; d < length; d += step {
		x := int(float64(from.X) + float64(d)*dx/float64(length))
		y := int(float64(from.Y) + float64(d)*dy/float64(length))
		points = append(points, image.Pt(
			int(float64(x)+jitter(rng, p.StraightNoise)),
			int(float64(y)+jitter(rng, p.StraightNoise)),
		))
	}
	line := Curve{points: points}

	lineColor := math.Min(float64(randomGray(rng))*(1+float64(thickness)/10), 255)
	for i, pt := range line.points {
		if !c.InBounds(pt.X, pt.Y) {
			continue
		}
		value := lineColor
		if (i == 0 || i == len(line.points)-1) && rng.Float64() < 0.1 {
			value *= 0.8
		}
		raster.FillCircle(c.Defected, pt.X, pt.Y, radius, grayColor(value))
		raster.FillCircleGray(c.Mask, pt.X, pt.Y, radius, 255)
	}

	bounds, ok := line.Bounds()
	if !ok || !line.touches(c.Width, c.Height) {
		return nil
	}
	d, ok := addRecord(c, entity.DefectScratch, bounds.Inflate(radius))
	if !ok {
		return nil
	}
	return []entity.Defect{d}
}

// resolveIntersections ищет пары кривых с пересекающимися хордами. С вероятностью
// CutProbability более поздняя кривая заменяется в curves своей первой половиной,
// которая перерисовывается заново. Для каждой кривой обрабатывается только первое пересечение.
func (p *ScratchPainter) resolveIntersections(c *entity.Canvas, curves []Curve, rng *rand.Rand) {
	for i := range curves {
		a1, a2, ok := curves[i].Chord()
		if !ok {
			continue
		}
		for j := i + 1; j < len(curves); j++ {
			b1, b2, ok := curves[j].Chord()
			if !ok {
				continue
			}
			if chordsCross(a1, a2, b1, b2) && rng.Float64() < p.CutProbability {
				curves[j] = curves[j].Head(curves[j].Len() / 2)
				p.redrawCut(c, rng, curves[j])
				break
			}
		}
	}
}

// redrawCut перерисовывает обрезанную кривую светлыми тонами.
func (p *ScratchPainter) redrawCut(c *entity.Canvas, rng *rand.Rand, curve Curve) {
	n := curve.Len()
	for i := 0; i < n; i++ {
		pt := curve.At(i)
		if !c.InBounds(pt.X, pt.Y) {
			continue
		}
		value := 255.0
		if rng.Float64() >= 0.2 {
			value = float64(randomGray(rng))
		}
		if (pt == curve.At(0) || pt == curve.At(n-1)) && rng.Float64() < 0.1 {
			value *= 0.8
		}
		raster.FillCircle(c.Defected, pt.X, pt.Y, p.MaskRadius, grayColor(value))
	}
}

// chordsCross строгая проверка пересечения отрезков ab и cd по ориентации троек точек.
func chordsCross(a, b, c, d image.Point) bool {
	return ccw(a, c, d) != ccw(b, c, d) && ccw(a, b, c) != ccw(a, b, d)
}

func ccw(a, b, c image.Point) bool {
	return (c.Y-a.Y)*(b.X-a.X) > (b.Y-a.Y)*(c.X-a.X)
}

// stampMask отмечает точки кривой кругами на маске.
func stampMask(c *entity.Canvas, curve Curve, radius int) {
	for _, pt := range curve.points {
		if c.InBounds(pt.X, pt.Y) {
			raster.FillCircleGray(c.Mask, pt.X, pt.Y, radius, 255)
		}
	}
}

// edgePoint случайная точка на одной из четырёх сторон изображения.
func edgePoint(rng *rand.Rand, w, h int) image.Point {
	switch rng.IntN(4) {
	case 0: // верх
		return image.Pt(randInt(rng, 0, w-1), 0)
	case 1: // низ
		return image.Pt(randInt(rng, 0, w-1), h-1)
	case 2: // лево
		return image.Pt(0, randInt(rng, 0, h-1))
	default: // право
		return image.Pt(w-1, randInt(rng, 0, h-1))
	}
}

func polar(rho, theta float64) r2.Vec {
	return r2.Vec{X: rho * math.Cos(theta), Y: rho * math.Sin(theta)}
}

// randomGray случайный светло-серый тон 160..255.
func randomGray(rng *rand.Rand) uint8 {
	return uint8(randInt(rng, 160, 255))
}

func grayColor(v float64) color.NRGBA {
	g := raster.ClampByte(v)
	return color.NRGBA{R: g, G: g, B: g, A: 255}
}

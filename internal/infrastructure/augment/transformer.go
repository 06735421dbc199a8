// Package augment строит аугментированные варианты пары изображение/разметка.
package augment

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/raster"
)

// Params выбранные случайные параметры одной аугментации.
type Params struct {
	Flipped    bool    // отражение по горизонтали
	Angle      float64 // угол поворота в градусах, положительный по часовой стрелке на экране
	Brightness float64 // множитель яркости
}

// Transformer случайно отражает, поворачивает и меняет яркость изображения
// вместе с многоугольниками разметки.
type Transformer struct {
	RotationAngles  []int
	BrightnessRange [2]float64
}

// NewTransformer создаёт преобразователь; пустой набор углов заменяется на 15, 30, 45, 60.
func NewTransformer(angles []int, brightness [2]float64) *Transformer {
	if len(angles) == 0 {
		angles = []int{15, 30, 45, 60}
	}
	if brightness == [2]float64{} {
		brightness = [2]float64{0.5, 1.5}
	}
	return &Transformer{RotationAngles: angles, BrightnessRange: brightness}
}

// Sample выбирает параметры: отражение с вероятностью 1/2, угол из набора со случайным
// знаком и яркость из диапазона.
func (t *Transformer) Sample(rng *rand.Rand) Params {
	var p Params
	p.Flipped = rng.Float64() > 0.5
	p.Angle = float64(t.RotationAngles[rng.IntN(len(t.RotationAngles))])
	if rng.Float64() > 0.5 {
		p.Angle = -p.Angle
	}
	lo, hi := t.BrightnessRange[0], t.BrightnessRange[1]
	p.Brightness = lo + (hi-lo)*rng.Float64()
	return p
}

// Augment применяет к изображению и разметке случайно выбранные параметры.
func (t *Transformer) Augment(img image.Image, labels []entity.PolygonLabel, rng *rand.Rand) (*image.NRGBA, []entity.PolygonLabel, Params) {
	p := t.Sample(rng)
	out, outLabels := Apply(img, labels, p)
	return out, outLabels, p
}

// Apply детерминированно применяет параметры. Размер изображения не меняется.
func Apply(img image.Image, labels []entity.PolygonLabel, p Params) (*image.NRGBA, []entity.PolygonLabel) {
	out := imaging.Clone(img)
	outLabels := cloneLabels(labels)
	if p.Flipped {
		out = imaging.FlipH(out)
		outLabels = FlipLabels(outLabels)
	}
	if p.Angle != 0 {
		out = RotateImage(out, p.Angle)
		outLabels = RotateLabels(outLabels, p.Angle, out.Bounds().Dx(), out.Bounds().Dy())
	}
	if p.Brightness != 1 {
		out = AdjustBrightness(out, p.Brightness)
	}
	return out, outLabels
}

// FlipLabels отражает вершины относительно вертикальной оси изображения.
func FlipLabels(labels []entity.PolygonLabel) []entity.PolygonLabel {
	out := cloneLabels(labels)
	for i := range out {
		for j := range out[i].Points {
			out[i].Points[j].X = 1 - out[i].Points[j].X
		}
	}
	return out
}

// RotateLabels поворачивает вершины вокруг центра изображения w×h на angle градусов.
func RotateLabels(labels []entity.PolygonLabel, angle float64, w, h int) []entity.PolygonLabel {
	fw, fh := float64(w), float64(h)
	rot := r2.NewRotation(angle*math.Pi/180, r2.Vec{X: fw / 2, Y: fh / 2})

	out := cloneLabels(labels)
	for i := range out {
		for j, pt := range out[i].Points {
			v := rot.Rotate(r2.Vec{X: pt.X * fw, Y: pt.Y * fh})
			out[i].Points[j] = entity.NormPoint{X: v.X / fw, Y: v.Y / fh}
		}
	}
	return out
}

// RotateImage поворачивает изображение вокруг центра без расширения холста.
// Углы, вышедшие за край, обрезаются, открывшиеся области заливаются чёрным.
func RotateImage(img *image.NRGBA, angle float64) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), color.NRGBA{A: 255})

	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	// Отображение из координат источника в координаты результата.
	s2d := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	src := img
	if b.Min != (image.Point{}) {
		src = imaging.Clone(img)
	}
	draw.BiLinear.Transform(dst, s2d, src, src.Bounds(), draw.Over, nil)
	return dst
}

// AdjustBrightness умножает каналы на factor, как смешивание с чёрным.
func AdjustBrightness(img image.Image, factor float64) *image.NRGBA {
	scale := func(v uint8) uint8 {
		return raster.ClampByte(math.Round(float64(v) * factor))
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
	})
}

// RenderMask заполняет многоугольники (от трёх вершин) значением 255 на пустой маске w×h.
func RenderMask(w, h int, labels []entity.PolygonLabel) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for _, l := range labels {
		if len(l.Points) < 3 {
			continue
		}
		pts := make([][2]float64, len(l.Points))
		for i, p := range l.Points {
			pts[i] = [2]float64{p.X * float64(w), p.Y * float64(h)}
		}
		raster.FillPolygonF(mask, pts, 255)
	}
	return mask
}

// ClipLabels отсекает многоугольники единичным квадратом.
// Многоугольники, от которых осталось меньше трёх вершин, отбрасываются.
func ClipLabels(labels []entity.PolygonLabel) []entity.PolygonLabel {
	out := make([]entity.PolygonLabel, 0, len(labels))
	for _, l := range labels {
		pts := make([][2]float64, len(l.Points))
		for i, p := range l.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		pts = raster.ClipPolygon(pts, 1, 1)
		if len(pts) < 3 {
			continue
		}
		clipped := entity.PolygonLabel{ClassID: l.ClassID, Points: make([]entity.NormPoint, len(pts))}
		for i, p := range pts {
			clipped.Points[i] = entity.NormPoint{X: p[0], Y: p[1]}
		}
		out = append(out, clipped)
	}
	return out
}

func cloneLabels(labels []entity.PolygonLabel) []entity.PolygonLabel {
	out := make([]entity.PolygonLabel, len(labels))
	for i, l := range labels {
		out[i] = entity.PolygonLabel{ClassID: l.ClassID, Points: append([]entity.NormPoint(nil), l.Points...)}
	}
	return out
}

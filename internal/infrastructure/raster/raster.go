// Package raster рисует примитивы на изображениях и масках.
// Все операции отбрасывают пиксели за пределами изображения без ошибок.
package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"
)

// Green цвет рамок подсветки дефектов
var Green = color.NRGBA{G: 255, A: 255}

// circle вызывает plot для каждого пикселя круга радиуса r, попадающего в bounds.
func circle(bounds image.Rectangle, cx, cy, r int, plot func(x, y int)) {
	if r < 0 {
		r = 0
	}
	rr := r * r
	for dy := -r; dy <= r; dy++ {
		y := cy + dy
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			x := cx + dx
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			if dx*dx+dy*dy <= rr {
				plot(x, y)
			}
		}
	}
}

// FillCircle рисует закрашенный круг на цветном изображении.
func FillCircle(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	circle(img.Bounds(), cx, cy, r, func(x, y int) {
		img.SetNRGBA(x, y, c)
	})
}

// FillCircleGray рисует закрашенный круг на маске.
func FillCircleGray(mask *image.Gray, cx, cy, r int, v uint8) {
	circle(mask.Bounds(), cx, cy, r, func(x, y int) {
		mask.SetGray(x, y, color.Gray{Y: v})
	})
}

// fillRect закрашивает прямоугольник [x1,x2]×[y1,y2] включительно.
func fillRect(img *image.NRGBA, x1, y1, x2, y2 int, c color.NRGBA) {
	r := image.Rect(x1, y1, x2+1, y2+1).Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// Rectangle рисует рамку толщиной thickness вокруг прямоугольника с углами (x1,y1) и (x2,y2).
func Rectangle(img *image.NRGBA, x1, y1, x2, y2, thickness int, c color.NRGBA) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if thickness < 1 {
		thickness = 1
	}
	lo := thickness / 2
	hi := thickness - 1 - lo
	fillRect(img, x1-lo, y1-lo, x2+hi, y1+hi, c) // верх
	fillRect(img, x1-lo, y2-lo, x2+hi, y2+hi, c) // низ
	fillRect(img, x1-lo, y1-lo, x1+hi, y2+hi, c) // лево
	fillRect(img, x2-lo, y1-lo, x2+hi, y2+hi, c) // право
}

// FillPolygon закрашивает многоугольник значением v на маске.
// Многоугольники меньше чем из трёх вершин пропускаются.
func FillPolygon(mask *image.Gray, pts []image.Point, v uint8) {
	fpts := make([][2]float64, len(pts))
	for i, p := range pts {
		// Центр пикселя, чтобы вершины из контура покрывали сами пиксели.
		fpts[i] = [2]float64{float64(p.X) + 0.5, float64(p.Y) + 0.5}
	}
	FillPolygonF(mask, fpts, v)
}

// FillPolygonF закрашивает многоугольник с вещественными вершинами.
// Пиксель считается закрашенным, если многоугольник покрывает не меньше половины его площади.
// Части многоугольника за пределами маски отсекаются.
func FillPolygonF(mask *image.Gray, pts [][2]float64, v uint8) {
	if len(pts) < 3 {
		return
	}
	b := mask.Bounds()
	local := make([][2]float64, len(pts))
	for i, p := range pts {
		local[i] = [2]float64{p[0] - float64(b.Min.X), p[1] - float64(b.Min.Y)}
	}
	local = ClipPolygon(local, float64(b.Dx()), float64(b.Dy()))
	if len(local) < 3 {
		return
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(local[0][0]), float32(local[0][1]))
	for _, p := range local[1:] {
		z.LineTo(float32(p[0]), float32(p[1]))
	}
	z.ClosePath()

	cover := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	z.Draw(cover, cover.Bounds(), image.Opaque, image.Point{})
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if cover.AlphaAt(x, y).A >= 0x80 {
				mask.SetGray(b.Min.X+x, b.Min.Y+y, color.Gray{Y: v})
			}
		}
	}
}

// ClipPolygon отсекает многоугольник прямоугольником [0,w]×[0,h] (Сазерленд–Ходжмен).
// Полностью внешний многоугольник даёт пустой результат.
func ClipPolygon(pts [][2]float64, w, h float64) [][2]float64 {
	edges := []struct {
		inside func(p [2]float64) bool
		cross  func(a, b [2]float64) [2]float64
	}{
		{func(p [2]float64) bool { return p[0] >= 0 }, func(a, b [2]float64) [2]float64 { return atX(a, b, 0) }},
		{func(p [2]float64) bool { return p[0] <= w }, func(a, b [2]float64) [2]float64 { return atX(a, b, w) }},
		{func(p [2]float64) bool { return p[1] >= 0 }, func(a, b [2]float64) [2]float64 { return atY(a, b, 0) }},
		{func(p [2]float64) bool { return p[1] <= h }, func(a, b [2]float64) [2]float64 { return atY(a, b, h) }},
	}
	out := pts
	for _, e := range edges {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make([][2]float64, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.cross(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

func atX(a, b [2]float64, x float64) [2]float64 {
	t := (x - a[0]) / (b[0] - a[0])
	return [2]float64{x, a[1] + t*(b[1]-a[1])}
}

func atY(a, b [2]float64, y float64) [2]float64 {
	t := (y - a[1]) / (b[1] - a[1])
	return [2]float64{a[0] + t*(b[0]-a[0]), y}
}

// CountNonZero считает ненулевые пиксели маски.
func CountNonZero(mask *image.Gray) int {
	n := 0
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y != 0 {
				n++
			}
		}
	}
	return n
}

// Luma возвращает яркость цвета по весам ITU-R BT.601.
func Luma(c color.NRGBA) uint8 {
	return uint8((299*int(c.R) + 587*int(c.G) + 114*int(c.B) + 500) / 1000)
}

// ClampByte ограничивает значение диапазоном канала.
func ClampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

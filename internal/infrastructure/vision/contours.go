package vision

import (
	"errors"
	"fmt"
	"image"

	"defectgen/internal/domain/port"
)

// ErrUnavailable возвращается адаптерами OpenCV в сборке без тега gocv.
var ErrUnavailable = errors.New("gocv build tag is not enabled")

// foregroundThreshold пиксели маски ярче порога считаются дефектом.
const foregroundThreshold = 127

// Направления обхода окрестности Мура по часовой стрелке (ось y направлена вниз).
var moore = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// MooreContourFinder ищет внешние контуры без OpenCV.
type MooreContourFinder struct{}

// NewMooreContourFinder создаёт поиск контуров на чистом Go.
func NewMooreContourFinder() *MooreContourFinder {
	return &MooreContourFinder{}
}

// FindExternal возвращает внешние контуры 8-связных компонент маски. Компоненты,
// лежащие в дырах других компонент, пропускаются. Точки контура сжаты: остаются
// только вершины, в которых меняется направление обхода.
func (f *MooreContourFinder) FindExternal(mask *image.Gray) [][]image.Point {
	g := newGrid(mask)
	if g.w == 0 || g.h == 0 {
		return nil
	}
	outer := g.outerBackground()
	seen := make([]bool, g.w*g.h)

	var contours [][]image.Point
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			i := y*g.w + x
			if !g.fg[i] || seen[i] {
				continue
			}
			g.markComponent(x, y, seen)
			// Над первым пикселем компоненты всегда фон: внешний или дыра.
			if y > 0 && !outer[i-g.w] {
				continue
			}
			contours = append(contours, compress(g.trace(image.Pt(x, y))))
		}
	}
	return contours
}

type grid struct {
	w, h int
	fg   []bool
}

func newGrid(mask *image.Gray) *grid {
	b := mask.Bounds()
	g := &grid{w: b.Dx(), h: b.Dy(), fg: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			g.fg[y*g.w+x] = mask.GrayAt(b.Min.X+x, b.Min.Y+y).Y > foregroundThreshold
		}
	}
	return g
}

func (g *grid) isFg(p image.Point) bool {
	return p.X >= 0 && p.X < g.w && p.Y >= 0 && p.Y < g.h && g.fg[p.Y*g.w+p.X]
}

// outerBackground отмечает фон, 4-связно достижимый с края изображения.
func (g *grid) outerBackground() []bool {
	outer := make([]bool, g.w*g.h)
	var queue []int
	push := func(x, y int) {
		i := y*g.w + x
		if g.fg[i] || outer[i] {
			return
		}
		outer[i] = true
		queue = append(queue, i)
	}
	for x := 0; x < g.w; x++ {
		push(x, 0)
		push(x, g.h-1)
	}
	for y := 0; y < g.h; y++ {
		push(0, y)
		push(g.w-1, y)
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%g.w, i/g.w
		if x > 0 {
			push(x-1, y)
		}
		if x < g.w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < g.h-1 {
			push(x, y+1)
		}
	}
	return outer
}

// markComponent отмечает 8-связную компоненту, содержащую (x, y).
func (g *grid) markComponent(x, y int, seen []bool) {
	stack := []image.Point{{x, y}}
	seen[y*g.w+x] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range moore {
			q := p.Add(d)
			if !g.isFg(q) || seen[q.Y*g.w+q.X] {
				continue
			}
			seen[q.Y*g.w+q.X] = true
			stack = append(stack, q)
		}
	}
}

// trace обходит границу компоненты по соседям Мура, начиная с её первого пикселя
// в порядке развёртки. Остановка по критерию Якоба: обход снова в начальной точке
// и следующий шаг совпадает с первым.
func (g *grid) trace(start image.Point) []image.Point {
	points := []image.Point{start}
	p, back := start, start.Add(image.Pt(-1, 0))

	var second image.Point
	limit := 4*g.w*g.h + 4
	for step := 0; step < limit; step++ {
		q, nb, ok := g.next(p, back)
		if !ok {
			// Одиночный пиксель.
			return points
		}
		if step == 0 {
			second = q
		} else if p == start && q == second {
			break
		}
		points = append(points, q)
		p, back = q, nb
	}
	if len(points) > 1 && points[len(points)-1] == start {
		points = points[:len(points)-1]
	}
	return points
}

// next ищет следующий пиксель границы по часовой стрелке от back и возвращает
// новую точку возврата: последнего проверенного соседа фона.
func (g *grid) next(p, back image.Point) (image.Point, image.Point, bool) {
	bd := direction(back.Sub(p))
	for k := 1; k <= 8; k++ {
		d := (bd + k) % 8
		q := p.Add(moore[d])
		if g.isFg(q) {
			return q, p.Add(moore[(d+7)%8]), true
		}
	}
	return image.Point{}, image.Point{}, false
}

func direction(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	panic(fmt.Sprintf("vision: %v is not a neighbour offset", d))
}

// compress удаляет точки внутри прямых горизонтальных, вертикальных и диагональных участков.
func compress(points []image.Point) []image.Point {
	n := len(points)
	if n < 3 {
		return points
	}
	out := make([]image.Point, 0, n)
	for i, p := range points {
		in := p.Sub(points[(i+n-1)%n])
		outDir := points[(i+1)%n].Sub(p)
		if in != outDir {
			out = append(out, p)
		}
	}
	return out
}

// NewContourFinder выбирает реализацию поиска контуров по имени.
func NewContourFinder(backend string) (port.ContourFinder, error) {
	switch backend {
	case "", "moore":
		return NewMooreContourFinder(), nil
	case "gocv":
		f := NewGoCVContourFinder()
		if !f.Available() {
			return nil, ErrUnavailable
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown contour backend %q", backend)
	}
}

// Проверка реализации интерфейса
var (
	_ port.ContourFinder = (*MooreContourFinder)(nil)
	_ port.ContourFinder = (*GoCVContourFinder)(nil)
)

var (
	_ port.DefectDetector = (*GoCVDetector)(nil)
	_ port.Inpainter      = (*GoCVInpainter)(nil)
)

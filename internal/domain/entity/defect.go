package entity

import "fmt"

// DefectType тип синтетического дефекта
type DefectType string

const (
	DefectScratch  DefectType = "scratch"  // Царапина
	DefectNoise    DefectType = "noise"    // Шумовое пятно
	DefectBlur     DefectType = "blur"     // Размытие
	DefectAbrasion DefectType = "abrasion" // Потёртость
)

// classMapping фиксированное соответствие типа дефекта и номера класса в аннотации.
var classMapping = map[DefectType]int{
	DefectScratch:  0,
	DefectNoise:    1,
	DefectBlur:     2,
	DefectAbrasion: 3,
}

// DefectTypes возвращает все известные типы в порядке номеров классов.
func DefectTypes() []DefectType {
	return []DefectType{DefectScratch, DefectNoise, DefectBlur, DefectAbrasion}
}

// ParseDefectType проверяет, что строка является известным типом дефекта.
func ParseDefectType(s string) (DefectType, error) {
	t := DefectType(s)
	if _, ok := classMapping[t]; !ok {
		return "", fmt.Errorf("unknown defect type %q", s)
	}
	return t, nil
}

// ClassID возвращает номер класса для типа дефекта.
func ClassID(t DefectType) (int, bool) {
	id, ok := classMapping[t]
	return id, ok
}

// DefectTypeByClass выполняет обратное преобразование номера класса.
func DefectTypeByClass(id int) (DefectType, bool) {
	for t, c := range classMapping {
		if c == id {
			return t, true
		}
	}
	return "", false
}

// Point точка в пиксельных координатах
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Coordinates ограничивающий прямоугольник дефекта
type Coordinates struct {
	Start Point `json:"start"` // левый верхний угол
	End   Point `json:"end"`   // правый нижний угол
}

// Clamp упорядочивает углы и ограничивает прямоугольник размерами изображения.
func (c Coordinates) Clamp(width, height int) Coordinates {
	x1, x2 := minInt(c.Start.X, c.End.X), maxInt(c.Start.X, c.End.X)
	y1, y2 := minInt(c.Start.Y, c.End.Y), maxInt(c.Start.Y, c.End.Y)
	return Coordinates{
		Start: Point{X: clampInt(x1, 0, width), Y: clampInt(y1, 0, height)},
		End:   Point{X: clampInt(x2, 0, width), Y: clampInt(y2, 0, height)},
	}
}

// Inflate расширяет прямоугольник на r пикселей во все стороны.
func (c Coordinates) Inflate(r int) Coordinates {
	return Coordinates{
		Start: Point{X: c.Start.X - r, Y: c.Start.Y - r},
		End:   Point{X: c.End.X + r, Y: c.End.Y + r},
	}
}

// Width ширина прямоугольника в пикселях
func (c Coordinates) Width() int {
	return c.End.X - c.Start.X
}

// Height высота прямоугольника в пикселях
func (c Coordinates) Height() int {
	return c.End.Y - c.Start.Y
}

// Empty сообщает, что у прямоугольника нулевая ширина или высота.
func (c Coordinates) Empty() bool {
	return c.Width() <= 0 || c.Height() <= 0
}

// Center возвращает координаты центра дефекта
func (c Coordinates) Center() (x, y int) {
	return c.Start.X + c.Width()/2, c.Start.Y + c.Height()/2
}

// Contains проверяет попадание пикселя в прямоугольник (границы включительно).
func (c Coordinates) Contains(x, y int) bool {
	return x >= c.Start.X && x <= c.End.X && y >= c.Start.Y && y <= c.End.Y
}

// Defect описание одного синтетического дефекта
type Defect struct {
	Type        DefectType  `json:"type"`
	Coordinates Coordinates `json:"coordinates"`
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

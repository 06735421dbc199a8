package entity

import (
	"image"

	"github.com/disintegration/imaging"
)

// Canvas хранит исходное изображение, изображение с дефектами и бинарную маску.
// Во время генерации холстом владеет один генератор, после генерации он только читается.
type Canvas struct {
	Name     string       // имя исходного файла
	Original *image.NRGBA // исходное изображение, не изменяется
	Defected *image.NRGBA // изображение, на которое наносятся дефекты
	Mask     *image.Gray  // маска дефектов, значения 0 или 255
	Width    int          // ширина изображения
	Height   int          // высота изображения
	defects  []Defect
}

// NewCanvas создаёт холст из изображения. Исходник копируется, координаты начинаются с нуля.
func NewCanvas(name string, src image.Image) *Canvas {
	original := imaging.Clone(src)
	b := original.Bounds()
	return &Canvas{
		Name:     name,
		Original: original,
		Defected: imaging.Clone(original),
		Mask:     image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy())),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}
}

// AddDefect ограничивает прямоугольник границами изображения и добавляет запись о дефекте.
func (c *Canvas) AddDefect(t DefectType, coords Coordinates) Defect {
	d := Defect{Type: t, Coordinates: coords.Clamp(c.Width, c.Height)}
	c.defects = append(c.defects, d)
	return d
}

// Defects возвращает копию списка дефектов в порядке нанесения.
func (c *Canvas) Defects() []Defect {
	out := make([]Defect, len(c.defects))
	copy(out, c.defects)
	return out
}

// InBounds проверяет, что пиксель лежит внутри изображения.
func (c *Canvas) InBounds(x, y int) bool {
	return x >= 0 && x < c.Width && y >= 0 && y < c.Height
}

// FinalizeMask переводит все ненулевые пиксели маски в чистый белый.
func (c *Canvas) FinalizeMask() {
	for i, v := range c.Mask.Pix {
		if v != 0 {
			c.Mask.Pix[i] = 255
		}
	}
}

// MaskPixels считает количество заполненных пикселей маски.
func (c *Canvas) MaskPixels() int {
	n := 0
	for _, v := range c.Mask.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

package entity

import "math"

// NormPoint точка в нормализованных координатах [0,1]
type NormPoint struct {
	X float64
	Y float64
}

// BoxLabel строка аннотации в форме ограничивающего прямоугольника
type BoxLabel struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// ToCoordinates переводит нормализованный прямоугольник обратно в пиксели.
func (b BoxLabel) ToCoordinates(width, height int) Coordinates {
	xc := b.XCenter * float64(width)
	yc := b.YCenter * float64(height)
	w := b.Width * float64(width)
	h := b.Height * float64(height)
	return Coordinates{
		Start: Point{X: int(math.Round(xc - w/2)), Y: int(math.Round(yc - h/2))},
		End:   Point{X: int(math.Round(xc + w/2)), Y: int(math.Round(yc + h/2))},
	}
}

// PolygonLabel строка аннотации в форме многоугольника (контура)
type PolygonLabel struct {
	ClassID int
	Points  []NormPoint
}

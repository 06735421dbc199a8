package port

import "image"

// ContourFinder извлекает внешние контуры бинарной маски
type ContourFinder interface {
	// FindExternal возвращает внешние контуры, дыры не учитываются
	FindExternal(mask *image.Gray) [][]image.Point
}

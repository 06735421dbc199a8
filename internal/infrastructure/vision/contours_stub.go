//go:build !gocv
// +build !gocv

package vision

import "image"

// GoCVContourFinder заглушка без OpenCV.
type GoCVContourFinder struct{}

// NewGoCVContourFinder создаёт заглушку поиска контуров.
func NewGoCVContourFinder() *GoCVContourFinder {
	return &GoCVContourFinder{}
}

// Available возвращает false, если сборка без тега gocv.
func (f *GoCVContourFinder) Available() bool {
	return false
}

// FindExternal ничего не находит без OpenCV.
func (f *GoCVContourFinder) FindExternal(mask *image.Gray) [][]image.Point {
	_ = mask
	return nil
}

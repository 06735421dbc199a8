//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// GoCVContourFinder ищет внешние контуры средствами OpenCV.
type GoCVContourFinder struct{}

// NewGoCVContourFinder создаёт поиск контуров на OpenCV.
func NewGoCVContourFinder() *GoCVContourFinder {
	return &GoCVContourFinder{}
}

// Available сообщает, что OpenCV доступен в этой сборке.
func (f *GoCVContourFinder) Available() bool {
	return true
}

// FindExternal бинаризует маску по порогу 127 и возвращает внешние контуры с простой аппроксимацией.
func (f *GoCVContourFinder) FindExternal(mask *image.Gray) [][]image.Point {
	mat, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil
	}
	defer mat.Close()

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(mat, &bin, foregroundThreshold, 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([][]image.Point, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		out = append(out, contours.At(i).ToPoints())
	}
	return out
}

//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"
)

type GoCVDetector struct {
	MinAreaRatio          float64
	MaxAspectRatio        float64
	MinAspectRatio        float64
	CannyLow              float32
	CannyHigh             float32
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
}

// NewGoCVDetector создаёт детектор-заглушку (без OpenCV).
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{}
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) Segment(ctx context.Context, img image.Image) (*image.Gray, error) {
	_ = ctx
	_ = img
	return nil, ErrUnavailable
}

// CheckQuality возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) CheckQuality(img image.Image) error {
	_ = img
	return ErrUnavailable
}

type GoCVInpainter struct {
	Radius float32
}

// NewGoCVInpainter создаёт восстановитель-заглушку.
func NewGoCVInpainter() *GoCVInpainter {
	return &GoCVInpainter{Radius: 3}
}

// Inpaint возвращает ошибку, если сборка без тега gocv.
func (p *GoCVInpainter) Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error) {
	_ = ctx
	_ = img
	_ = mask
	return nil, ErrUnavailable
}

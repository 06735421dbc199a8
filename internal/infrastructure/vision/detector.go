//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// GoCVDetector базовый детектор: границы Canny, внешние контуры, заливка в маску.
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

// NewGoCVDetector создаёт детектор с порогами по умолчанию.
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{
		MinAreaRatio:          0.0001,
		MinAspectRatio:        0.02,
		MaxAspectRatio:        50.0,
		CannyLow:              50,
		CannyHigh:             150,
		MinImageSide:          64,
		MinSharpnessEdgeRatio: 0.002,
		MaxOverexposedRatio:   0.6,
		MaxUnderexposedRatio:  0.6,
	}
}

// Segment строит бинарную маску предполагаемых дефектов того же размера, что и изображение.
func (d *GoCVDetector) Segment(ctx context.Context, img image.Image) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, d.CannyLow, d.CannyHigh)

	// Соединяем разрывы тонких царапин.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	mask := gocv.Zeros(mat.Rows(), mat.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()

	minArea := int(float64(mat.Cols()*mat.Rows()) * d.MinAreaRatio)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if rect.Dx()*rect.Dy() < minArea || rect.Dy() == 0 {
			continue
		}
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect < d.MinAspectRatio || aspect > d.MaxAspectRatio {
			continue
		}
		gocv.DrawContours(&mask, contours, i, white, -1)
	}

	out, err := mask.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mask: %w", err)
	}
	return toGray(out), nil
}

// CheckQuality отклоняет слишком маленькие, размытые, пересвеченные и тёмные изображения.
func (d *GoCVDetector) CheckQuality(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return errors.New("quality gate failed: empty image")
	}
	if mat.Cols() < d.MinImageSide || mat.Rows() < d.MinImageSide {
		return fmt.Errorf("quality gate failed: image is too small (%dx%d)", mat.Cols(), mat.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	if r := ratioOfMask(edges); r < d.MinSharpnessEdgeRatio {
		return fmt.Errorf("quality gate failed: image is blurry (edge_ratio=%.4f)", r)
	}

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	if r := ratioOfMask(bright); r > d.MaxOverexposedRatio {
		return fmt.Errorf("quality gate failed: overexposed image (ratio=%.4f)", r)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	if r := ratioOfMask(dark); r > d.MaxUnderexposedRatio {
		return fmt.Errorf("quality gate failed: underexposed image (ratio=%.4f)", r)
	}
	return nil
}

// GoCVInpainter восстанавливает области маски методом Telea.
type GoCVInpainter struct {
	Radius float32
}

// NewGoCVInpainter создаёт восстановитель с радиусом 3.
func NewGoCVInpainter() *GoCVInpainter {
	return &GoCVInpainter{Radius: 3}
}

// Inpaint закрашивает пиксели маски по соседям.
func (p *GoCVInpainter) Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img.Bounds().Size() != mask.Bounds().Size() {
		return nil, fmt.Errorf("mask size %v does not match image %v", mask.Bounds().Size(), img.Bounds().Size())
	}
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer src.Close()

	m, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("convert mask: %w", err)
	}
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Inpaint(src, m, &dst, p.Radius, gocv.Telea)

	return dst.ToImage()
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

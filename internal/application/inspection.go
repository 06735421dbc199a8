package app

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"defectgen/internal/domain/port"
	"defectgen/internal/infrastructure/annotation"
	"defectgen/internal/infrastructure/raster"
)

// InspectionService прогоняет внешний детектор по одному снимку.
type InspectionService struct {
	store    port.DatasetStore
	detector port.DefectDetector
	gate     port.QualityGate
	finder   port.ContourFinder
	log      logrus.FieldLogger
}

// InspectionOutput содержит найденные области и путь к картинке с подсветкой.
type InspectionOutput struct {
	Areas       []image.Rectangle
	Lines       []string
	Highlighted string
}

// NewInspectionService создаёт сервис проверки; gate может быть nil.
func NewInspectionService(store port.DatasetStore, detector port.DefectDetector, gate port.QualityGate, finder port.ContourFinder, log logrus.FieldLogger) *InspectionService {
	return &InspectionService{store: store, detector: detector, gate: gate, finder: finder, log: log}
}

// Inspect проверяет качество снимка, строит маску детектором и сохраняет снимок
// с рамками вокруг найденных областей в outPath.
func (s *InspectionService) Inspect(ctx context.Context, imagePath, outPath string) (*InspectionOutput, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}
	img, err := s.store.LoadImage(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	if s.gate != nil {
		if err := s.gate.CheckQuality(img); err != nil {
			return nil, err
		}
	}

	mask, err := s.detector.Segment(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	if mask == nil {
		return nil, errors.New("segment: nil mask")
	}

	contours := s.finder.FindExternal(mask)
	out := &InspectionOutput{
		Lines:       annotation.ContourLines(contours, mask.Bounds(), annotation.ScratchClass),
		Highlighted: outPath,
	}
	highlighted := imaging.Clone(img)
	for _, contour := range contours {
		if len(contour) == 0 {
			continue
		}
		r := boundsOf(contour)
		out.Areas = append(out.Areas, r)
		raster.Rectangle(highlighted, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, 2, raster.Green)
	}
	if err := s.store.SaveImage(ctx, outPath, highlighted); err != nil {
		return nil, err
	}

	s.log.WithField("image", imagePath).WithField("areas", len(out.Areas)).Info("inspection finished")
	return out, nil
}

// boundsOf ожидает непустой контур.
func boundsOf(points []image.Point) image.Rectangle {
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

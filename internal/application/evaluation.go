package app

import (
	"context"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
)

// EvaluationService сравнивает маски внешнего детектора с эталонными масками выборки.
type EvaluationService struct {
	store    port.DatasetStore
	detector port.DefectDetector
	layout   Layout
	log      logrus.FieldLogger
}

// NewEvaluationService создаёт сервис оценки детектора.
func NewEvaluationService(store port.DatasetStore, detector port.DefectDetector, datasetDir string, log logrus.FieldLogger) *EvaluationService {
	return &EvaluationService{store: store, detector: detector, layout: Layout{Root: datasetDir}, log: log}
}

// Evaluate считает средний IoU по изображениям выборки.
func (s *EvaluationService) Evaluate(ctx context.Context, split entity.Split) (*entity.EvaluationReport, error) {
	names, err := s.store.List(ctx, s.layout.ImageDir(split))
	if err != nil {
		return nil, fmt.Errorf("list %s images: %w", split, err)
	}

	report := &entity.EvaluationReport{Split: split}
	var sum float64
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !IsImageFile(name) {
			continue
		}
		log := s.log.WithField("image", name)

		img, err := s.store.LoadImage(ctx, s.layout.ImagePath(split, name))
		if err != nil {
			log.WithError(err).Warn("image is unreadable")
			report.Failed++
			continue
		}
		truth, err := s.store.LoadImage(ctx, s.layout.MaskPath(split, name))
		if err != nil {
			log.WithError(err).Warn("mask is unreadable")
			report.Failed++
			continue
		}
		pred, err := s.detector.Segment(ctx, img)
		if err != nil {
			log.WithError(err).Error("detector failed")
			report.Failed++
			continue
		}

		iou := MaskIoU(pred, truth)
		log.WithField("iou", iou).Debug("image evaluated")
		sum += iou
		report.Images++
	}
	if report.Images > 0 {
		report.MeanIoU = sum / float64(report.Images)
	}
	s.log.WithFields(logrus.Fields{
		"split":    split,
		"images":   report.Images,
		"failed":   report.Failed,
		"mean_iou": report.MeanIoU,
	}).Info("evaluation finished")
	return report, nil
}

// MaskIoU отношение пересечения к объединению масок; пиксель ярче 127 считается дефектом.
// Две пустые маски совпадают полностью. Маски разного размера сравниваются по общей области.
func MaskIoU(a, b image.Image) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	w, h := min(ab.Dx(), bb.Dx()), min(ab.Dy(), bb.Dy())

	var inter, union int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pa := isSet(a, ab.Min.X+x, ab.Min.Y+y)
			pb := isSet(b, bb.Min.X+x, bb.Min.Y+y)
			if pa && pb {
				inter++
			}
			if pa || pb {
				union++
			}
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func isSet(img image.Image, x, y int) bool {
	if g, ok := img.(*image.Gray); ok {
		return g.GrayAt(x, y).Y > 127
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return (r+g+b)/3>>8 > 127
}

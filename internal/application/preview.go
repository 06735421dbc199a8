package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
	"defectgen/internal/infrastructure/annotation"
)

// PreviewResult пути к файлам превью и результат самопроверки.
type PreviewResult struct {
	Defects  []entity.Defect
	Files    []string
	Mismatch int // пиксели, в которых подсветка по записям и по строкам разметки расходится
	BoxLines []string
	Polygons []string
}

// PreviewService генерирует дефекты для одного изображения и сохраняет всё,
// что нужно для визуальной проверки.
type PreviewService struct {
	store    port.DatasetStore
	painters []port.DefectPainter
	finder   port.ContourFinder
	log      logrus.FieldLogger
}

// NewPreviewService создаёт сервис превью.
func NewPreviewService(store port.DatasetStore, painters []port.DefectPainter, finder port.ContourFinder, log logrus.FieldLogger) *PreviewService {
	return &PreviewService{store: store, painters: painters, finder: finder, log: log}
}

// Preview пишет в outDir изображение с дефектами, маску, подсветку по записям,
// подсветку, восстановленную из строк разметки, и JSON с описанием дефектов.
func (s *PreviewService) Preview(ctx context.Context, imagePath, outDir string, seed uint64) (*PreviewResult, error) {
	img, err := s.store.LoadImage(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(imagePath)
	canvas := entity.NewCanvas(name, img)
	rng := rand.New(rand.NewPCG(seed, 0))
	for _, p := range s.painters {
		p.Paint(canvas, rng)
	}

	boxes := annotation.BoxLines(canvas.Defects(), canvas.Width, canvas.Height)
	polygons, err := annotation.PolygonLines(canvas.Mask, s.finder, annotation.ScratchClass)
	if err != nil {
		return nil, err
	}
	highlight := annotation.Highlight(canvas)
	fromLines, err := annotation.HighlightFromBoxes(canvas.Defected, boxes)
	if err != nil {
		return nil, fmt.Errorf("decode box lines: %w", err)
	}
	report, err := annotation.ExportJSON(canvas)
	if err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}

	res := &PreviewResult{Defects: canvas.Defects(), BoxLines: boxes, Polygons: polygons}
	for i := range highlight.Pix {
		if highlight.Pix[i] != fromLines.Pix[i] {
			res.Mismatch++
		}
	}

	base := stem(name)
	path := func(suffix string) string {
		p := filepath.Join(outDir, base+suffix)
		res.Files = append(res.Files, p)
		return p
	}
	if err := s.store.SaveImage(ctx, path("_defected.png"), canvas.Defected); err != nil {
		return nil, err
	}
	if err := s.store.SaveImage(ctx, path("_mask.png"), canvas.Mask); err != nil {
		return nil, err
	}
	if err := s.store.SaveImage(ctx, path("_highlight.png"), highlight); err != nil {
		return nil, err
	}
	if err := s.store.SaveImage(ctx, path("_from_labels.png"), fromLines); err != nil {
		return nil, err
	}
	if err := s.store.SaveLabels(ctx, path("_boxes.txt"), boxes); err != nil {
		return nil, err
	}
	if err := s.store.SaveFile(ctx, path(".json"), report); err != nil {
		return nil, err
	}

	log := s.log.WithField("image", name).WithField("defects", len(res.Defects))
	if res.Mismatch > 0 {
		log.WithField("mismatch", res.Mismatch).Warn("box lines do not reproduce the records exactly")
	} else {
		log.Info("preview written")
	}
	return res, nil
}

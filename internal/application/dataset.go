package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
	"defectgen/internal/infrastructure/annotation"
)

// DatasetConfig параметры пакетной генерации
type DatasetConfig struct {
	SourceDir      string
	DatasetDir     string
	TrainImagesNum int
	Workers        int
	Seed           uint64
	SkipExisting   bool
}

// DatasetService наносит дефекты на исходные изображения и раскладывает тройки
// изображение/маска/аннотация по выборкам train и val.
type DatasetService struct {
	store    port.DatasetStore
	painters []port.DefectPainter
	finder   port.ContourFinder
	reporter port.BatchReporter
	cfg      DatasetConfig
	log      logrus.FieldLogger
}

// NewDatasetService создаёт сервис генерации; reporter может быть nil.
func NewDatasetService(
	store port.DatasetStore,
	painters []port.DefectPainter,
	finder port.ContourFinder,
	reporter port.BatchReporter,
	cfg DatasetConfig,
	log logrus.FieldLogger,
) *DatasetService {
	return &DatasetService{
		store:    store,
		painters: painters,
		finder:   finder,
		reporter: reporter,
		cfg:      cfg,
		log:      log,
	}
}

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeSkipped
	outcomeFailed
)

type imageResult struct {
	outcome outcome
	split   entity.Split
	defects int
	path    string
	preview []byte
}

// Process обрабатывает все изображения исходного каталога. Ошибка отдельного файла
// не останавливает пакет: нечитаемые файлы пропускаются, ошибки записи учитываются в отчёте.
func (s *DatasetService) Process(ctx context.Context) (*entity.BatchReport, error) {
	started := time.Now()

	names, err := s.store.List(ctx, s.cfg.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("list source dir: %w", err)
	}
	var images []string
	for _, name := range names {
		if IsImageFile(name) {
			images = append(images, name)
		}
	}

	layout := Layout{Root: s.cfg.DatasetDir}
	report := &entity.BatchReport{Total: len(images)}
	var (
		mu      sync.Mutex
		preview []byte
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.Workers))
	for i, name := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.processImage(gctx, i, name, entity.SplitFor(i, s.cfg.TrainImagesNum), layout)

			mu.Lock()
			defer mu.Unlock()
			switch res.outcome {
			case outcomeWritten:
				if res.split == entity.SplitTrain {
					report.Train++
				} else {
					report.Val++
				}
				report.Defects += res.defects
				if res.preview != nil {
					preview = res.preview
					report.Sample = res.path
				}
			case outcomeSkipped:
				report.Skipped++
			case outcomeFailed:
				report.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	if err := s.writeDataYAML(ctx); err != nil {
		return report, err
	}
	report.Duration = time.Since(started)

	s.log.WithFields(logrus.Fields{
		"total":   report.Total,
		"train":   report.Train,
		"val":     report.Val,
		"skipped": report.Skipped,
		"failed":  report.Failed,
		"defects": report.Defects,
	}).Info("dataset generation finished")

	if s.reporter != nil {
		if err := s.reporter.Report(ctx, report, preview); err != nil {
			s.log.WithError(err).Warn("failed to send batch report")
		}
	}
	return report, nil
}

func (s *DatasetService) processImage(ctx context.Context, index int, name string, split entity.Split, layout Layout) imageResult {
	log := s.log.WithField("image", name).WithField("split", split)
	res := imageResult{split: split, path: layout.ImagePath(split, name)}

	labelPath := layout.LabelPath(split, name)
	if s.cfg.SkipExisting && s.store.Exists(ctx, labelPath) {
		log.Debug("already processed, skipping")
		res.outcome = outcomeSkipped
		return res
	}

	img, err := s.store.LoadImage(ctx, filepath.Join(s.cfg.SourceDir, name))
	if err != nil {
		if errors.Is(err, entity.ErrResourceNotFound) {
			log.WithError(err).Warn("source image is unreadable, skipping")
			res.outcome = outcomeSkipped
			return res
		}
		log.WithError(err).Error("failed to load source image")
		res.outcome = outcomeFailed
		return res
	}

	canvas := entity.NewCanvas(name, img)
	rng := rand.New(rand.NewPCG(s.cfg.Seed, uint64(index)))
	for _, p := range s.painters {
		p.Paint(canvas, rng)
	}

	lines, err := annotation.PolygonLines(canvas.Mask, s.finder, annotation.ScratchClass)
	if err != nil {
		log.WithError(err).Error("failed to encode mask")
		res.outcome = outcomeFailed
		return res
	}
	lines = append(lines, annotation.RecordPolygonLines(canvas.Defects(), canvas.Width, canvas.Height)...)

	// Аннотация пишется последней: её наличие означает готовую тройку.
	if err := s.store.SaveImage(ctx, res.path, canvas.Defected); err != nil {
		log.WithError(err).Error("failed to write image")
		res.outcome = outcomeFailed
		return res
	}
	if err := s.store.SaveImage(ctx, layout.MaskPath(split, name), canvas.Mask); err != nil {
		log.WithError(err).Error("failed to write mask")
		res.outcome = outcomeFailed
		return res
	}
	if err := s.store.SaveLabels(ctx, labelPath, lines); err != nil {
		log.WithError(err).Error("failed to write labels")
		res.outcome = outcomeFailed
		return res
	}

	res.outcome = outcomeWritten
	res.defects = len(canvas.Defects())
	if index == 0 {
		res.preview = encodePreview(annotation.Highlight(canvas))
	}
	log.WithField("defects", res.defects).Debug("image processed")
	return res
}

type datasetYAML struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Names map[int]string `yaml:"names"`
}

// writeDataYAML записывает описание датасета для обучения YOLO.
func (s *DatasetService) writeDataYAML(ctx context.Context) error {
	root := s.cfg.DatasetDir
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	doc := datasetYAML{
		Path:  root,
		Train: filepath.ToSlash(filepath.Join("images", string(entity.SplitTrain))),
		Val:   filepath.ToSlash(filepath.Join("images", string(entity.SplitVal))),
		Names: make(map[int]string),
	}
	for _, t := range entity.DefectTypes() {
		id, _ := entity.ClassID(t)
		doc.Names[id] = string(t)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal data.yaml: %w", err)
	}
	return s.store.SaveFile(ctx, filepath.Join(s.cfg.DatasetDir, "data.yaml"), data)
}

func encodePreview(img *image.NRGBA) []byte {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil
	}
	return buf.Bytes()
}

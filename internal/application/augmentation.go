package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
	"defectgen/internal/infrastructure/annotation"
	"defectgen/internal/infrastructure/augment"
)

// augSuffix суффикс имени аугментированной копии
const augSuffix = "_aug"

// AugmentationService добавляет к выборке по одной аугментированной копии каждой тройки.
type AugmentationService struct {
	store       port.DatasetStore
	transformer *augment.Transformer
	layout      Layout
	workers     int
	seed        uint64
	log         logrus.FieldLogger
}

// NewAugmentationService создаёт сервис аугментации датасета в каталоге datasetDir.
func NewAugmentationService(store port.DatasetStore, transformer *augment.Transformer, datasetDir string, workers int, seed uint64, log logrus.FieldLogger) *AugmentationService {
	return &AugmentationService{
		store:       store,
		transformer: transformer,
		layout:      Layout{Root: datasetDir},
		workers:     workers,
		seed:        seed,
		log:         log,
	}
}

// AugmentedName имя копии: <stem>_aug<ext>.
func AugmentedName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + augSuffix + ext
}

// Augment обрабатывает все изображения выборки, кроме уже аугментированных.
// Файл с некорректной разметкой не изменяется и считается ошибкой.
func (s *AugmentationService) Augment(ctx context.Context, split entity.Split) (*entity.BatchReport, error) {
	started := time.Now()
	names, err := s.store.List(ctx, s.layout.ImageDir(split))
	if err != nil {
		return nil, fmt.Errorf("list %s images: %w", split, err)
	}
	var images []string
	for _, name := range names {
		if IsImageFile(name) && !strings.HasSuffix(stem(name), augSuffix) {
			images = append(images, name)
		}
	}

	report := &entity.BatchReport{Total: len(images)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.workers))
	for i, name := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.augmentOne(gctx, i, name, split)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if split == entity.SplitTrain {
					report.Train++
				} else {
					report.Val++
				}
			case errors.Is(err, entity.ErrResourceNotFound):
				s.log.WithField("image", name).WithError(err).Warn("skipping augmentation")
				report.Skipped++
			default:
				s.log.WithField("image", name).WithError(err).Error("augmentation failed")
				report.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	report.Duration = time.Since(started)
	s.log.WithFields(logrus.Fields{
		"split":   split,
		"written": report.Processed(),
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("augmentation finished")
	return report, nil
}

func (s *AugmentationService) augmentOne(ctx context.Context, index int, name string, split entity.Split) error {
	lines, err := s.store.LoadLabels(ctx, s.layout.LabelPath(split, name))
	if err != nil {
		return err
	}
	labels, err := annotation.ParsePolygonLines(lines)
	if err != nil {
		return err
	}
	img, err := s.store.LoadImage(ctx, s.layout.ImagePath(split, name))
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(s.seed, uint64(index)))
	out, outLabels, params := s.transformer.Augment(img, labels, rng)
	// Маска и файл меток строятся по одним и тем же отсечённым многоугольникам.
	outLabels = augment.ClipLabels(outLabels)
	b := out.Bounds()
	mask := augment.RenderMask(b.Dx(), b.Dy(), outLabels)

	augName := AugmentedName(name)
	if err := s.store.SaveImage(ctx, s.layout.ImagePath(split, augName), out); err != nil {
		return err
	}
	if err := s.store.SaveImage(ctx, s.layout.MaskPath(split, augName), mask); err != nil {
		return err
	}
	if err := s.store.SaveLabels(ctx, s.layout.LabelPath(split, augName), annotation.FormatPolygons(outLabels)); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"image":      name,
		"flipped":    params.Flipped,
		"angle":      params.Angle,
		"brightness": params.Brightness,
	}).Debug("image augmented")
	return nil
}

package container

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"defectgen/config"
	app "defectgen/internal/application"
	"defectgen/internal/domain/port"
	"defectgen/internal/infrastructure/augment"
	"defectgen/internal/infrastructure/defects"
	"defectgen/internal/infrastructure/vision"
)

type Container struct {
	DatasetService      *app.DatasetService
	AugmentationService *app.AugmentationService
	PreviewService      *app.PreviewService
	Organizer           *app.Organizer
	EvaluationService   *app.EvaluationService
	InspectionService   *app.InspectionService
	RestoreService      *app.RestoreService
	Seed                uint64
}

func New(cfg *config.Config, store port.DatasetStore, reporter port.BatchReporter, log logrus.FieldLogger) (*Container, error) {
	painters, err := defects.NewPainters(cfg.DefectTypes)
	if err != nil {
		return nil, fmt.Errorf("build painters: %w", err)
	}
	finder, err := vision.NewContourFinder(cfg.ContourBackend)
	if err != nil {
		return nil, fmt.Errorf("build contour finder: %w", err)
	}

	// Нулевой seed означает новую последовательность при каждом запуске.
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	datasetService := app.NewDatasetService(store, painters, finder, reporter, app.DatasetConfig{
		SourceDir:      cfg.SourceDir,
		DatasetDir:     cfg.DatasetDir,
		TrainImagesNum: cfg.TrainImagesNum,
		Workers:        cfg.Workers,
		Seed:           seed,
		SkipExisting:   cfg.SkipExisting,
	}, log)
	transformer := augment.NewTransformer(cfg.RotationAngles, [2]float64{cfg.BrightnessMin, cfg.BrightnessMax})
	detector := vision.NewGoCVDetector()

	return &Container{
		DatasetService:      datasetService,
		AugmentationService: app.NewAugmentationService(store, transformer, cfg.DatasetDir, cfg.Workers, seed, log),
		PreviewService:      app.NewPreviewService(store, painters, finder, log),
		Organizer:           app.NewOrganizer(store, log),
		EvaluationService:   app.NewEvaluationService(store, detector, cfg.DatasetDir, log),
		InspectionService:   app.NewInspectionService(store, detector, detector, finder, log),
		RestoreService:      app.NewRestoreService(store, vision.NewGoCVInpainter(), log),
		Seed:                seed,
	}, nil
}

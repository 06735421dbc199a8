package app

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/storage"
)

func TestMaskIoU(t *testing.T) {
	empty := image.NewGray(image.Rect(0, 0, 20, 10))
	require.Equal(t, 1.0, MaskIoU(empty, empty))

	a := rectMask(20, 10, image.Rect(0, 0, 10, 10))
	b := rectMask(20, 10, image.Rect(5, 0, 15, 10))
	require.InDelta(t, 1.0/3, MaskIoU(a, b), 1e-9)
	require.Equal(t, 0.0, MaskIoU(a, empty))
	require.Equal(t, 1.0, MaskIoU(a, a))
}

func evaluationStore(t *testing.T) *storage.MemoryDatasetStore {
	store := storage.NewMemoryDatasetStore()
	putImage(t, store, "dataset/images/val/a.png", grayImage(20, 10, 90))
	putImage(t, store, "dataset/masks/val/a.png", rectMask(20, 10, image.Rect(0, 0, 10, 10)))
	// Маски для b нет.
	putImage(t, store, "dataset/images/val/b.png", grayImage(20, 10, 90))
	store.PutFile("dataset/images/val/notes.txt", []byte("skip"))
	return store
}

func TestEvaluationService_Evaluate(t *testing.T) {
	store := evaluationStore(t)
	log, _ := newLogger()
	detector := &fakeDetector{mask: rectMask(20, 10, image.Rect(5, 0, 15, 10))}

	report, err := NewEvaluationService(store, detector, "dataset", log).Evaluate(context.Background(), entity.SplitVal)
	require.NoError(t, err)
	require.Equal(t, entity.SplitVal, report.Split)
	require.Equal(t, 1, report.Images)
	require.Equal(t, 1, report.Failed)
	require.InDelta(t, 1.0/3, report.MeanIoU, 1e-9)
}

func TestEvaluationService_DetectorError(t *testing.T) {
	store := evaluationStore(t)
	log, _ := newLogger()
	detector := &fakeDetector{err: errors.New("model is not loaded")}

	report, err := NewEvaluationService(store, detector, "dataset", log).Evaluate(context.Background(), entity.SplitVal)
	require.NoError(t, err)
	require.Zero(t, report.Images)
	require.Equal(t, 2, report.Failed)
	require.Zero(t, report.MeanIoU)
}

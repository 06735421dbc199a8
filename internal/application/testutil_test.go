package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/storage"
)

func newLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func grayImage(w, h int, v uint8) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{R: v, G: v, B: v, A: 255})
}

func putImage(t *testing.T, store *storage.MemoryDatasetStore, path string, img image.Image) {
	t.Helper()
	require.NoError(t, store.SaveImage(context.Background(), path, img))
}

type fakeDetector struct {
	mask *image.Gray
	err  error
}

func (d *fakeDetector) Segment(ctx context.Context, img image.Image) (*image.Gray, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.mask, nil
}

type fakeGate struct{ err error }

func (g fakeGate) CheckQuality(img image.Image) error { return g.err }

type fakeReporter struct {
	calls   int
	report  entity.BatchReport
	preview []byte
}

func (r *fakeReporter) Report(ctx context.Context, report *entity.BatchReport, preview []byte) error {
	r.calls++
	r.report = *report
	r.preview = preview
	return errors.New("telegram is down")
}

func rectMask(w, h int, r image.Rectangle) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return mask
}

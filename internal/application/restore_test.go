package app

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/infrastructure/raster"
	"defectgen/internal/infrastructure/storage"
)

type fakeInpainter struct {
	mask *image.Gray
	err  error
}

func (f *fakeInpainter) Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error) {
	f.mask = mask
	if f.err != nil {
		return nil, f.err
	}
	return grayImage(img.Bounds().Dx(), img.Bounds().Dy(), 200), nil
}

func TestRestoreService_Restore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryDatasetStore()
	putImage(t, store, "in/a.png", grayImage(30, 20, 50))
	putImage(t, store, "in/a_mask.png", rectMask(30, 20, image.Rect(2, 3, 8, 9)))

	inpainter := &fakeInpainter{}
	log, _ := newLogger()
	require.NoError(t, NewRestoreService(store, inpainter, log).Restore(ctx, "in/a.png", "in/a_mask.png", "out/a.png"))

	require.Equal(t, 36, raster.CountNonZero(inpainter.mask))
	out, ok := store.Image("out/a.png")
	require.True(t, ok)
	require.Equal(t, uint8(200), out.NRGBAAt(0, 0).R)
}

func TestRestoreService_Errors(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryDatasetStore()
	putImage(t, store, "in/a.png", grayImage(30, 20, 50))
	putImage(t, store, "in/small.png", rectMask(10, 10, image.Rect(0, 0, 2, 2)))
	log, _ := newLogger()

	err := NewRestoreService(store, nil, log).Restore(ctx, "in/a.png", "in/small.png", "out/a.png")
	require.EqualError(t, err, "inpainter is not configured")

	err = NewRestoreService(store, &fakeInpainter{}, log).Restore(ctx, "in/a.png", "in/small.png", "out/a.png")
	require.ErrorContains(t, err, "does not match")

	failure := errors.New("model crashed")
	putImage(t, store, "in/mask.png", rectMask(30, 20, image.Rect(0, 0, 2, 2)))
	err = NewRestoreService(store, &fakeInpainter{err: failure}, log).Restore(ctx, "in/a.png", "in/mask.png", "out/a.png")
	require.ErrorIs(t, err, failure)
	require.False(t, store.Exists(ctx, "out/a.png"))
}

package storage

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
)

func sampleImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 7, A: 255})
		}
	}
	return img
}

func TestFSDatasetStore_ImageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFSDatasetStore()
	path := filepath.Join(t.TempDir(), "images", "train", "a.png")

	require.NoError(t, s.SaveImage(ctx, path, sampleImage()))
	require.True(t, s.Exists(ctx, path))

	got, err := s.LoadImage(ctx, path)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 6), got.Bounds())
	r, g, b, _ := got.At(3, 2).RGBA()
	require.Equal(t, []uint32{90, 80, 7}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestFSDatasetStore_LoadMissingOrBroken(t *testing.T) {
	ctx := context.Background()
	s := NewFSDatasetStore()
	dir := t.TempDir()

	_, err := s.LoadImage(ctx, filepath.Join(dir, "missing.jpg"))
	require.ErrorIs(t, err, entity.ErrResourceNotFound)

	broken := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o644))
	_, err = s.LoadImage(ctx, broken)
	require.ErrorIs(t, err, entity.ErrResourceNotFound)

	_, err = s.List(ctx, filepath.Join(dir, "nope"))
	require.ErrorIs(t, err, entity.ErrResourceNotFound)
}

func TestFSDatasetStore_Labels(t *testing.T) {
	ctx := context.Background()
	s := NewFSDatasetStore()
	path := filepath.Join(t.TempDir(), "labels", "val", "a.txt")

	lines := []string{"0 0.1 0.1 0.2 0.1 0.2 0.2", "0 0.5 0.5 0.6 0.5 0.6 0.6"}
	require.NoError(t, s.SaveLabels(ctx, path, lines))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "0 0.1 0.1 0.2 0.1 0.2 0.2\n0 0.5 0.5 0.6 0.5 0.6 0.6", string(data))

	got, err := s.LoadLabels(ctx, path)
	require.NoError(t, err)
	require.Equal(t, lines, got)

	require.NoError(t, s.SaveLabels(ctx, path, nil))
	got, err = s.LoadLabels(ctx, path)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFSDatasetStore_WriteFailure(t *testing.T) {
	ctx := context.Background()
	s := NewFSDatasetStore()
	dir := t.TempDir()

	// Родительский путь занят обычным файлом.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := s.SaveFile(ctx, filepath.Join(blocker, "data.yaml"), []byte("x"))
	require.ErrorIs(t, err, entity.ErrIOFailure)
	err = s.SaveImage(ctx, filepath.Join(blocker, "a.png"), sampleImage())
	require.ErrorIs(t, err, entity.ErrIOFailure)
}

func TestFSDatasetStore_ListWalkCopyMove(t *testing.T) {
	ctx := context.Background()
	s := NewFSDatasetStore()
	root := t.TempDir()

	require.NoError(t, s.SaveFile(ctx, filepath.Join(root, "b.jpg"), []byte("b")))
	require.NoError(t, s.SaveFile(ctx, filepath.Join(root, "a.jpg"), []byte("a")))
	require.NoError(t, s.SaveFile(ctx, filepath.Join(root, "nested", "deep", "c.png"), []byte("c")))

	names, err := s.List(ctx, root)
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, names)

	paths, err := s.Walk(ctx, root)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.jpg"),
		filepath.Join(root, "nested", "deep", "c.png"),
	}, paths)

	dst := filepath.Join(root, "out", "copy.jpg")
	require.NoError(t, s.Copy(ctx, filepath.Join(root, "a.jpg"), dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "a", string(data))

	moved := filepath.Join(root, "moved", "b.jpg")
	require.NoError(t, s.Move(ctx, filepath.Join(root, "b.jpg"), moved))
	require.False(t, s.Exists(ctx, filepath.Join(root, "b.jpg")))
	require.True(t, s.Exists(ctx, moved))

	err = s.Copy(ctx, filepath.Join(root, "missing.jpg"), dst)
	require.ErrorIs(t, err, entity.ErrResourceNotFound)
}

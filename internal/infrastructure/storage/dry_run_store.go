package storage

import (
	"context"
	"image"
	"sort"

	"defectgen/internal/domain/port"
)

// DryRunStore читает из base, а все записи складывает в память.
// Move и Copy не трогают base: файл появляется только в памяти.
type DryRunStore struct {
	base    port.DatasetStore
	overlay *MemoryDatasetStore
}

// NewDryRunStore оборачивает хранилище для пробного прогона
func NewDryRunStore(base port.DatasetStore) *DryRunStore {
	return &DryRunStore{base: base, overlay: NewMemoryDatasetStore()}
}

// Written возвращает пути, которые были бы записаны
func (s *DryRunStore) Written() []string {
	return s.overlay.Paths()
}

func (s *DryRunStore) List(ctx context.Context, dir string) ([]string, error) {
	names, err := s.base.List(ctx, dir)
	extra, overlayErr := s.overlay.List(ctx, dir)
	if err != nil && overlayErr != nil {
		return nil, err
	}
	return mergeSorted(names, extra), nil
}

func (s *DryRunStore) Walk(ctx context.Context, root string) ([]string, error) {
	paths, err := s.base.Walk(ctx, root)
	extra, overlayErr := s.overlay.Walk(ctx, root)
	if err != nil && overlayErr != nil {
		return nil, err
	}
	return mergeSorted(paths, extra), nil
}

func (s *DryRunStore) LoadImage(ctx context.Context, path string) (image.Image, error) {
	if s.overlay.Exists(ctx, path) {
		return s.overlay.LoadImage(ctx, path)
	}
	return s.base.LoadImage(ctx, path)
}

func (s *DryRunStore) SaveImage(ctx context.Context, path string, img image.Image) error {
	return s.overlay.SaveImage(ctx, path, img)
}

func (s *DryRunStore) LoadLabels(ctx context.Context, path string) ([]string, error) {
	if s.overlay.Exists(ctx, path) {
		return s.overlay.LoadLabels(ctx, path)
	}
	return s.base.LoadLabels(ctx, path)
}

func (s *DryRunStore) SaveLabels(ctx context.Context, path string, lines []string) error {
	return s.overlay.SaveLabels(ctx, path, lines)
}

func (s *DryRunStore) SaveFile(ctx context.Context, path string, data []byte) error {
	return s.overlay.SaveFile(ctx, path, data)
}

// Copy переносит содержимое из base в память: сначала как изображение, затем как разметку.
func (s *DryRunStore) Copy(ctx context.Context, src, dst string) error {
	if s.overlay.Exists(ctx, src) {
		return s.overlay.Copy(ctx, src, dst)
	}
	img, err := s.base.LoadImage(ctx, src)
	if err == nil {
		return s.overlay.SaveImage(ctx, dst, img)
	}
	lines, labelsErr := s.base.LoadLabels(ctx, src)
	if labelsErr != nil {
		return err
	}
	return s.overlay.SaveLabels(ctx, dst, lines)
}

func (s *DryRunStore) Move(ctx context.Context, src, dst string) error {
	return s.Copy(ctx, src, dst)
}

func (s *DryRunStore) Exists(ctx context.Context, path string) bool {
	return s.overlay.Exists(ctx, path) || s.base.Exists(ctx, path)
}

func mergeSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range append(append([]string(nil), a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Проверка реализации интерфейса
var _ port.DatasetStore = (*DryRunStore)(nil)

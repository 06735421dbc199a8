package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
)

// MemoryDatasetStore in-memory хранилище датасета
type MemoryDatasetStore struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA
	files  map[string][]byte
	failed map[string]bool
}

// NewMemoryDatasetStore создаёт новое in-memory хранилище
func NewMemoryDatasetStore() *MemoryDatasetStore {
	return &MemoryDatasetStore{
		images: make(map[string]*image.NRGBA),
		files:  make(map[string][]byte),
		failed: make(map[string]bool),
	}
}

// FailWrites заставляет запись по пути завершаться ошибкой ErrIOFailure
func (s *MemoryDatasetStore) FailWrites(path string) {
	s.mu.Lock()
	s.failed[filepath.Clean(path)] = true
	s.mu.Unlock()
}

// PutFile кладёт произвольные байты, например нечитаемое изображение
func (s *MemoryDatasetStore) PutFile(path string, data []byte) {
	s.mu.Lock()
	s.files[filepath.Clean(path)] = append([]byte(nil), data...)
	s.mu.Unlock()
}

// Image возвращает сохранённое изображение
func (s *MemoryDatasetStore) Image(path string) (*image.NRGBA, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[filepath.Clean(path)]
	return img, ok
}

// File возвращает сохранённые байты
func (s *MemoryDatasetStore) File(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[filepath.Clean(path)]
	return data, ok
}

// Paths возвращает все сохранённые пути
func (s *MemoryDatasetStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.images)+len(s.files))
	for p := range s.images {
		out = append(out, p)
	}
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// List возвращает имена файлов, лежащих непосредственно в каталоге
func (s *MemoryDatasetStore) List(ctx context.Context, dir string) ([]string, error) {
	dir = filepath.Clean(dir)
	var names []string
	for _, p := range s.Paths() {
		if filepath.Dir(p) == dir {
			names = append(names, filepath.Base(p))
		}
	}
	if names == nil && !s.hasPrefix(dir) {
		return nil, fmt.Errorf("%w: %s", entity.ErrResourceNotFound, dir)
	}
	return names, nil
}

// Walk возвращает пути всех файлов под root
func (s *MemoryDatasetStore) Walk(ctx context.Context, root string) ([]string, error) {
	root = filepath.Clean(root)
	if !s.hasPrefix(root) {
		return nil, fmt.Errorf("%w: %s", entity.ErrResourceNotFound, root)
	}
	var paths []string
	for _, p := range s.Paths() {
		if strings.HasPrefix(p, root+string(filepath.Separator)) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (s *MemoryDatasetStore) hasPrefix(dir string) bool {
	for _, p := range s.Paths() {
		if strings.HasPrefix(p, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// LoadImage возвращает копию изображения; байты, записанные через SaveFile, декодируются.
func (s *MemoryDatasetStore) LoadImage(ctx context.Context, path string) (image.Image, error) {
	if img, ok := s.Image(path); ok {
		return imaging.Clone(img), nil
	}
	data, ok := s.File(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrResourceNotFound, path)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrResourceNotFound, path, err)
	}
	return img, nil
}

// SaveImage сохраняет копию изображения
func (s *MemoryDatasetStore) SaveImage(ctx context.Context, path string, img image.Image) error {
	path = filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed[path] {
		return fmt.Errorf("%w: %s", entity.ErrIOFailure, path)
	}
	s.images[path] = imaging.Clone(img)
	delete(s.files, path)
	return nil
}

// LoadLabels читает строки аннотации
func (s *MemoryDatasetStore) LoadLabels(ctx context.Context, path string) ([]string, error) {
	data, ok := s.File(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrResourceNotFound, path)
	}
	return splitLines(data), nil
}

// SaveLabels записывает строки аннотации
func (s *MemoryDatasetStore) SaveLabels(ctx context.Context, path string, lines []string) error {
	return s.SaveFile(ctx, path, []byte(strings.Join(lines, "\n")))
}

// SaveFile записывает байты
func (s *MemoryDatasetStore) SaveFile(ctx context.Context, path string, data []byte) error {
	path = filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed[path] {
		return fmt.Errorf("%w: %s", entity.ErrIOFailure, path)
	}
	s.files[path] = append([]byte(nil), data...)
	delete(s.images, path)
	return nil
}

// Copy копирует запись
func (s *MemoryDatasetStore) Copy(ctx context.Context, src, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed[dst] {
		return fmt.Errorf("%w: %s", entity.ErrIOFailure, dst)
	}
	if img, ok := s.images[src]; ok {
		s.images[dst] = imaging.Clone(img)
		return nil
	}
	if data, ok := s.files[src]; ok {
		s.files[dst] = append([]byte(nil), data...)
		return nil
	}
	return fmt.Errorf("%w: %s", entity.ErrResourceNotFound, src)
}

// Move переносит запись
func (s *MemoryDatasetStore) Move(ctx context.Context, src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if err := s.Copy(ctx, src, dst); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.images, filepath.Clean(src))
	delete(s.files, filepath.Clean(src))
	s.mu.Unlock()
	return nil
}

// Exists проверяет наличие записи
func (s *MemoryDatasetStore) Exists(ctx context.Context, path string) bool {
	path = filepath.Clean(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, img := s.images[path]
	_, file := s.files[path]
	return img || file
}

// Проверка реализации интерфейса
var _ port.DatasetStore = (*MemoryDatasetStore)(nil)

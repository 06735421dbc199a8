package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
)

// JPEGQuality качество сохранения jpeg
const JPEGQuality = 95

// FSDatasetStore хранилище датасета на локальном диске
type FSDatasetStore struct{}

// NewFSDatasetStore создаёт файловое хранилище
func NewFSDatasetStore() *FSDatasetStore {
	return &FSDatasetStore{}
}

// List возвращает имена обычных файлов каталога
func (s *FSDatasetStore) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, notFound(dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Walk обходит дерево каталогов и возвращает пути файлов
func (s *FSDatasetStore) Walk(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, notFound(root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadImage читает и декодирует изображение
func (s *FSDatasetStore) LoadImage(ctx context.Context, path string) (image.Image, error) {
	_ = ctx
	img, err := imaging.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	return img, nil
}

// SaveImage кодирует изображение по расширению файла
func (s *FSDatasetStore) SaveImage(ctx context.Context, path string, img image.Image) error {
	_ = ctx
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return ioFailure(path, err)
	}
	return nil
}

// LoadLabels читает файл аннотации построчно
func (s *FSDatasetStore) LoadLabels(ctx context.Context, path string) ([]string, error) {
	_ = ctx
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	return splitLines(data), nil
}

// SaveLabels записывает строки аннотации через перевод строки
func (s *FSDatasetStore) SaveLabels(ctx context.Context, path string, lines []string) error {
	return s.SaveFile(ctx, path, []byte(strings.Join(lines, "\n")))
}

// SaveFile записывает файл целиком
func (s *FSDatasetStore) SaveFile(ctx context.Context, path string, data []byte) error {
	_ = ctx
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ioFailure(path, err)
	}
	return nil
}

// Copy копирует содержимое файла
func (s *FSDatasetStore) Copy(ctx context.Context, src, dst string) error {
	_ = ctx
	in, err := os.Open(src)
	if err != nil {
		return notFound(src, err)
	}
	defer in.Close()

	if err := ensureDir(dst); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return ioFailure(dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return ioFailure(dst, err)
	}
	if err := out.Close(); err != nil {
		return ioFailure(dst, err)
	}
	return nil
}

// Move переименовывает файл
func (s *FSDatasetStore) Move(ctx context.Context, src, dst string) error {
	_ = ctx
	if _, err := os.Stat(src); err != nil {
		return notFound(src, err)
	}
	if err := ensureDir(dst); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return ioFailure(dst, err)
	}
	return nil
}

// Exists проверяет наличие файла
func (s *FSDatasetStore) Exists(ctx context.Context, path string) bool {
	_ = ctx
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir создаёт родительский каталог; уже существующий каталог не ошибка.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioFailure(filepath.Dir(path), err)
	}
	return nil
}

func splitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func notFound(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", entity.ErrResourceNotFound, path, err)
}

func ioFailure(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", entity.ErrIOFailure, path, err)
}

// Проверка реализации интерфейса
var _ port.DatasetStore = (*FSDatasetStore)(nil)

package port

import (
	"context"
	"image"
)

// DatasetStore хранилище исходных изображений и готовых троек изображение/маска/аннотация
type DatasetStore interface {
	// List возвращает имена файлов каталога в отсортированном порядке
	List(ctx context.Context, dir string) ([]string, error)

	// Walk возвращает пути всех файлов дерева каталогов в отсортированном порядке
	Walk(ctx context.Context, root string) ([]string, error)

	// LoadImage читает изображение, ErrResourceNotFound если файла нет или он не читается
	LoadImage(ctx context.Context, path string) (image.Image, error)

	// SaveImage сохраняет изображение, формат определяется расширением
	SaveImage(ctx context.Context, path string, img image.Image) error

	// LoadLabels читает строки аннотации
	LoadLabels(ctx context.Context, path string) ([]string, error)

	// SaveLabels записывает строки аннотации
	SaveLabels(ctx context.Context, path string, lines []string) error

	// SaveFile записывает произвольный файл (data.yaml, json)
	SaveFile(ctx context.Context, path string, data []byte) error

	// Copy копирует файл, создавая каталоги назначения
	Copy(ctx context.Context, src, dst string) error

	// Move переносит файл, создавая каталоги назначения
	Move(ctx context.Context, src, dst string) error

	// Exists проверяет наличие файла
	Exists(ctx context.Context, path string) bool
}

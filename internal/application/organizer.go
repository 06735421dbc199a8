package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
)

// progressEvery как часто писать прогресс в лог
const progressEvery = 100

// Organizer собирает и раскладывает исходные фотографии перед генерацией.
type Organizer struct {
	store port.DatasetStore
	log   logrus.FieldLogger
}

// NewOrganizer создаёт сервис подготовки исходников.
func NewOrganizer(store port.DatasetStore, log logrus.FieldLogger) *Organizer {
	return &Organizer{store: store, log: log}
}

// Collect копирует фотографии из всех подкаталогов sourceRoot в dest под случайными именами.
func (o *Organizer) Collect(ctx context.Context, sourceRoot, dest string) (int, error) {
	paths, err := o.store.Walk(ctx, sourceRoot)
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", sourceRoot, err)
	}
	count := 0
	for _, path := range paths {
		if !IsImageFile(path) {
			continue
		}
		name := uuid.New().String() + strings.ToLower(filepath.Ext(path))
		if err := o.store.Copy(ctx, path, filepath.Join(dest, name)); err != nil {
			return count, err
		}
		count++
		if count%progressEvery == 0 {
			o.log.WithField("count", count).Info("photos collected")
		}
	}
	o.log.WithField("count", count).Info("collect finished")
	return count, nil
}

// Organize нумерует файлы dir по порядку (%06d) и переносит первые firstSetSize
// в dest/dataset1, остальные в dest/dataset2.
func (o *Organizer) Organize(ctx context.Context, dir, dest string, firstSetSize int) (int, error) {
	names, err := o.store.List(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}
	for i, name := range names {
		set := "dataset1"
		if i >= firstSetSize {
			set = "dataset2"
		}
		target := filepath.Join(dest, set, fmt.Sprintf("%06d%s", i, strings.ToLower(filepath.Ext(name))))
		if err := o.store.Move(ctx, filepath.Join(dir, name), target); err != nil {
			return i, err
		}
		if (i+1)%progressEvery == 0 {
			o.log.WithField("count", i+1).Info("photos organized")
		}
	}
	o.log.WithField("count", len(names)).Info("organize finished")
	return len(names), nil
}

// SplitByCategory распределяет файлы dir по кругу между каталогами
// dest/<имя dir>_<тип дефекта>.
func (o *Organizer) SplitByCategory(ctx context.Context, dir, dest string, categories []entity.DefectType) (map[entity.DefectType]int, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories")
	}
	names, err := o.store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	prefix := filepath.Base(filepath.Clean(dir))
	counts := make(map[entity.DefectType]int, len(categories))
	for i, name := range names {
		category := categories[i%len(categories)]
		target := filepath.Join(dest, prefix+"_"+string(category), name)
		if err := o.store.Move(ctx, filepath.Join(dir, name), target); err != nil {
			return counts, err
		}
		counts[category]++
		if (i+1)%progressEvery == 0 {
			o.log.WithField("count", i+1).Info("photos moved to categories")
		}
	}
	return counts, nil
}

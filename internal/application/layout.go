package app

import (
	"path/filepath"
	"strings"

	"defectgen/internal/domain/entity"
)

// allowedExt расширения исходных изображений
var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".bmp": true}

// IsImageFile проверяет расширение без учёта регистра.
func IsImageFile(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// Layout раскладка датасета: {images,masks,labels}/<split>/.
type Layout struct {
	Root string
}

// ImageDir каталог изображений выборки
func (l Layout) ImageDir(split entity.Split) string {
	return filepath.Join(l.Root, "images", string(split))
}

// ImagePath путь изображения с дефектами
func (l Layout) ImagePath(split entity.Split, name string) string {
	return filepath.Join(l.ImageDir(split), name)
}

// MaskPath путь маски; имя совпадает с именем изображения
func (l Layout) MaskPath(split entity.Split, name string) string {
	return filepath.Join(l.Root, "masks", string(split), name)
}

// LabelPath путь файла аннотации <stem>.txt
func (l Layout) LabelPath(split entity.Split, name string) string {
	return filepath.Join(l.Root, "labels", string(split), stem(name)+".txt")
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

package port

import (
	"context"
	"image"
)

// DefectDetector внешний детектор дефектов: принимает изображение и возвращает маску
type DefectDetector interface {
	// Segment строит бинарную маску дефектов для изображения
	Segment(ctx context.Context, img image.Image) (*image.Gray, error)
}

// Inpainter внешний генератор: восстанавливает изображение по маске дефектов
type Inpainter interface {
	// Inpaint закрашивает области маски и возвращает восстановленное изображение
	Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error)
}

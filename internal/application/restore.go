package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/sirupsen/logrus"

	"defectgen/internal/domain/port"
)

// RestoreService убирает дефекты внешним генератором по маске.
type RestoreService struct {
	store     port.DatasetStore
	inpainter port.Inpainter
	log       logrus.FieldLogger
}

// NewRestoreService создаёт сервис восстановления.
func NewRestoreService(store port.DatasetStore, inpainter port.Inpainter, log logrus.FieldLogger) *RestoreService {
	return &RestoreService{store: store, inpainter: inpainter, log: log}
}

// Restore закрашивает области маски maskPath на изображении imagePath и пишет результат в outPath.
func (s *RestoreService) Restore(ctx context.Context, imagePath, maskPath, outPath string) error {
	if s.inpainter == nil {
		return errors.New("inpainter is not configured")
	}
	img, err := s.store.LoadImage(ctx, imagePath)
	if err != nil {
		return err
	}
	maskImg, err := s.store.LoadImage(ctx, maskPath)
	if err != nil {
		return err
	}
	if img.Bounds().Size() != maskImg.Bounds().Size() {
		return fmt.Errorf("mask size %v does not match image size %v", maskImg.Bounds().Size(), img.Bounds().Size())
	}

	restored, err := s.inpainter.Inpaint(ctx, img, binaryMask(maskImg))
	if err != nil {
		return fmt.Errorf("inpaint: %w", err)
	}
	if err := s.store.SaveImage(ctx, outPath, restored); err != nil {
		return err
	}
	s.log.WithField("image", imagePath).WithField("out", outPath).Info("image restored")
	return nil
}

// binaryMask переводит маску в 0/255 с порогом 127.
func binaryMask(img image.Image) *image.Gray {
	b := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if isSet(img, b.Min.X+x, b.Min.Y+y) {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

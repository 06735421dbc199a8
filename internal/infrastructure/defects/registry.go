package defects

import (
	"fmt"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
)

// NewPainter возвращает генератор для типа дефекта.
func NewPainter(t entity.DefectType) (port.DefectPainter, error) {
	switch t {
	case entity.DefectScratch:
		return NewScratchPainter(), nil
	case entity.DefectNoise:
		return NewNoisePainter(), nil
	case entity.DefectBlur:
		return NewBlurPainter(), nil
	case entity.DefectAbrasion:
		return NewAbrasionPainter(), nil
	default:
		return nil, fmt.Errorf("no painter for defect type %q", t)
	}
}

// NewPainters собирает генераторы в заданном порядке нанесения.
func NewPainters(types []entity.DefectType) ([]port.DefectPainter, error) {
	painters := make([]port.DefectPainter, 0, len(types))
	for _, t := range types {
		p, err := NewPainter(t)
		if err != nil {
			return nil, err
		}
		painters = append(painters, p)
	}
	return painters, nil
}

// Проверка реализации интерфейса
var (
	_ port.DefectPainter = (*ScratchPainter)(nil)
	_ port.DefectPainter = (*NoisePainter)(nil)
	_ port.DefectPainter = (*BlurPainter)(nil)
	_ port.DefectPainter = (*AbrasionPainter)(nil)
)

package port

import (
	"math/rand/v2"

	"defectgen/internal/domain/entity"
)

// DefectPainter наносит дефекты одного типа на холст
type DefectPainter interface {
	// Type возвращает тип дефектов, которые рисует генератор
	Type() entity.DefectType

	// Paint изменяет изображение и маску холста и возвращает добавленные записи
	Paint(canvas *entity.Canvas, rng *rand.Rand) []entity.Defect
}

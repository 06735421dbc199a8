package defects

import (
	"image/color"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/raster"
)

// NoisePainter добавляет экспоненциальный шум в прямоугольные области изображения.
// Маску не заполняет: шумовые дефекты попадают только в записи.
type NoisePainter struct {
	Patches    int     // число областей
	SizeFactor int     // максимальный размер области = сторона / SizeFactor
	Scale      float64 // масштаб экспоненциального распределения
}

// NewNoisePainter создаёт генератор шума с параметрами по умолчанию.
func NewNoisePainter() *NoisePainter {
	return &NoisePainter{
		Patches:    40,
		SizeFactor: 5,
		Scale:      50,
	}
}

// Type возвращает тип дефекта.
func (p *NoisePainter) Type() entity.DefectType {
	return entity.DefectNoise
}

// Paint наносит шумовые пятна на холст.
func (p *NoisePainter) Paint(c *entity.Canvas, rng *rand.Rand) []entity.Defect {
	w, h := c.Width, c.Height
	if w == 0 || h == 0 {
		return nil
	}

	centers := make([][2]int, p.Patches)
	for i := range centers {
		centers[i] = [2]int{rng.IntN(w), rng.IntN(h)}
	}

	maxH := h / p.SizeFactor
	maxW := w / p.SizeFactor
	exp := distuv.Exponential{Rate: 1 / p.Scale, Src: rng}

	var added []entity.Defect
	for _, center := range centers {
		x, y := center[0], center[1]

		defectH := randInt(rng, 1, maxH)
		defectW := randInt(rng, 1, maxW)
		// Число шагов роста зависит от площади пятна.
		growthSteps := defectH * defectW / 10

		left := max(0, x-defectW/2)
		top := max(0, y-defectH/2)
		right := min(w-1, left+defectW)
		bottom := min(h-1, top+defectH)
		if left >= right || top >= bottom {
			continue
		}

		for i := 0; i < growthSteps; i++ {
			px := left + rng.IntN(right-left)
			py := top + rng.IntN(bottom-top)
			v := exp.Rand()
			orig := c.Defected.NRGBAAt(px, py)
			c.Defected.SetNRGBA(px, py, color.NRGBA{
				R: raster.ClampByte(float64(orig.R) + v),
				G: raster.ClampByte(float64(orig.G) + v),
				B: raster.ClampByte(float64(orig.B) + v),
				A: orig.A,
			})
		}

		added = append(added, c.AddDefect(entity.DefectNoise, entity.Coordinates{
			Start: entity.Point{X: left, Y: top},
			End:   entity.Point{X: right, Y: bottom},
		}))
	}
	return added
}

package annotation

import (
	"encoding/json"
	"image"

	"github.com/disintegration/imaging"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/raster"
)

// highlightThickness толщина рамки подсветки
const highlightThickness = 2

// Highlight рисует зелёные рамки записей холста на копии изображения с дефектами.
// Вырожденные после обрезки прямоугольники не рисуются, как и в BoxLines.
func Highlight(c *entity.Canvas) *image.NRGBA {
	out := imaging.Clone(c.Defected)
	for _, d := range c.Defects() {
		co := d.Coordinates.Clamp(c.Width, c.Height)
		if co.Empty() {
			continue
		}
		raster.Rectangle(out, co.Start.X, co.Start.Y, co.End.X, co.End.Y, highlightThickness, raster.Green)
	}
	return out
}

// HighlightFromBoxes восстанавливает рамки из строк-прямоугольников и рисует их на копии изображения.
func HighlightFromBoxes(img image.Image, lines []string) (*image.NRGBA, error) {
	out := imaging.Clone(img)
	b := out.Bounds()
	boxes, err := DecodeBoxes(lines, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for _, co := range boxes {
		raster.Rectangle(out, co.Start.X, co.Start.Y, co.End.X, co.End.Y, highlightThickness, raster.Green)
	}
	return out, nil
}

type jsonReport struct {
	PicName string          `json:"pic_name"`
	Defects []entity.Defect `json:"defects"`
}

// ExportJSON описание холста: имя файла и список дефектов с координатами.
func ExportJSON(c *entity.Canvas) ([]byte, error) {
	return json.MarshalIndent(jsonReport{PicName: c.Name, Defects: c.Defects()}, "", "  ")
}

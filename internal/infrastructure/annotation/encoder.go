// Package annotation переводит записи о дефектах и маски в строки разметки YOLO и обратно.
package annotation

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
)

// ScratchClass номер класса для контуров маски.
const ScratchClass = 0

// BoxLines кодирует записи прямоугольниками YOLO: центр, ширина и высота в долях изображения.
// Вырожденные прямоугольники пропускаются.
func BoxLines(defects []entity.Defect, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	lines := make([]string, 0, len(defects))
	for _, d := range defects {
		c := d.Coordinates.Clamp(width, height)
		if c.Empty() {
			continue
		}
		// Неизвестный тип попадает в класс 0.
		classID, _ := entity.ClassID(d.Type)
		xc := float64(c.Start.X+c.End.X) / 2 / float64(width)
		yc := float64(c.Start.Y+c.End.Y) / 2 / float64(height)
		w := float64(c.Width()) / float64(width)
		h := float64(c.Height()) / float64(height)
		lines = append(lines, fmt.Sprintf("%d %.6f %.6f %.6f %.6f", classID, xc, yc, w, h))
	}
	return lines
}

// PolygonLines строит по одной строке-многоугольнику на каждый внешний контур маски.
// Контуры меньше чем из трёх вершин пропускаются.
func PolygonLines(mask *image.Gray, finder port.ContourFinder, classID int) ([]string, error) {
	if mask == nil {
		return nil, errors.New("nil mask")
	}
	b := mask.Bounds()
	if b.Empty() {
		return nil, nil
	}

	return ContourLines(finder.FindExternal(mask), b, classID), nil
}

// ContourLines нормирует уже найденные контуры размерами b. Контуры короче трёх точек пропускаются.
func ContourLines(contours [][]image.Point, b image.Rectangle, classID int) []string {
	if b.Empty() {
		return nil
	}
	var lines []string
	for _, contour := range contours {
		if len(contour) < 3 {
			continue
		}
		label := entity.PolygonLabel{ClassID: classID, Points: make([]entity.NormPoint, len(contour))}
		for i, p := range contour {
			label.Points[i] = entity.NormPoint{
				X: float64(p.X-b.Min.X) / float64(b.Dx()),
				Y: float64(p.Y-b.Min.Y) / float64(b.Dy()),
			}
		}
		lines = append(lines, FormatPolygon(label))
	}
	return lines
}

// RecordPolygonLines кодирует записи, которых нет на маске (шум, размытие, потёртость),
// прямоугольными многоугольниками со своим номером класса.
func RecordPolygonLines(defects []entity.Defect, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	var lines []string
	for _, d := range defects {
		if d.Type == entity.DefectScratch {
			continue
		}
		classID, ok := entity.ClassID(d.Type)
		if !ok {
			continue
		}
		c := d.Coordinates.Clamp(width, height)
		if c.Empty() {
			continue
		}
		x1, y1 := float64(c.Start.X)/float64(width), float64(c.Start.Y)/float64(height)
		x2, y2 := float64(c.End.X)/float64(width), float64(c.End.Y)/float64(height)
		lines = append(lines, FormatPolygon(entity.PolygonLabel{
			ClassID: classID,
			Points:  []entity.NormPoint{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}},
		}))
	}
	return lines
}

// FormatPolygon форматирует многоугольник; координаты ограничиваются отрезком [0,1].
func FormatPolygon(label entity.PolygonLabel) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(label.ClassID))
	for _, p := range label.Points {
		fmt.Fprintf(&sb, " %.6f %.6f", unit(p.X), unit(p.Y))
	}
	return sb.String()
}

// FormatPolygons форматирует набор многоугольников построчно.
func FormatPolygons(labels []entity.PolygonLabel) []string {
	lines := make([]string, len(labels))
	for i, l := range labels {
		lines[i] = FormatPolygon(l)
	}
	return lines
}

func unit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ParseBoxLine разбирает строку вида "<class> <xc> <yc> <w> <h>".
func ParseBoxLine(line string) (entity.BoxLabel, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return entity.BoxLabel{}, fmt.Errorf("%w: box line %q: want 5 fields, got %d", entity.ErrMalformedAnnotation, line, len(fields))
	}
	classID, err := parseClass(fields[0])
	if err != nil {
		return entity.BoxLabel{}, fmt.Errorf("box line %q: %w", line, err)
	}
	vals, err := parseFloats(fields[1:])
	if err != nil {
		return entity.BoxLabel{}, fmt.Errorf("box line %q: %w", line, err)
	}
	return entity.BoxLabel{ClassID: classID, XCenter: vals[0], YCenter: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// ParsePolygonLine разбирает строку вида "<class> <x1> <y1> ... <xn> <yn>".
func ParsePolygonLine(line string) (entity.PolygonLabel, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || (len(fields)-1)%2 != 0 {
		return entity.PolygonLabel{}, fmt.Errorf("%w: polygon line %q: odd or missing coordinates", entity.ErrMalformedAnnotation, line)
	}
	classID, err := parseClass(fields[0])
	if err != nil {
		return entity.PolygonLabel{}, fmt.Errorf("polygon line %q: %w", line, err)
	}
	vals, err := parseFloats(fields[1:])
	if err != nil {
		return entity.PolygonLabel{}, fmt.Errorf("polygon line %q: %w", line, err)
	}
	label := entity.PolygonLabel{ClassID: classID, Points: make([]entity.NormPoint, len(vals)/2)}
	for i := range label.Points {
		label.Points[i] = entity.NormPoint{X: vals[2*i], Y: vals[2*i+1]}
	}
	return label, nil
}

// ParsePolygonLines разбирает файл разметки целиком. Пустые строки пропускаются;
// при первой ошибке результат не возвращается.
func ParsePolygonLines(lines []string) ([]entity.PolygonLabel, error) {
	labels := make([]entity.PolygonLabel, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, err := ParsePolygonLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// DecodeBoxes переводит строки-прямоугольники обратно в пиксельные координаты.
func DecodeBoxes(lines []string, width, height int) ([]entity.Coordinates, error) {
	boxes := make([]entity.Coordinates, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, err := ParseBoxLine(line)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, label.ToCoordinates(width, height))
	}
	return boxes, nil
}

func parseClass(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: class id %q", entity.ErrMalformedAnnotation, s)
	}
	return id, nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: coordinate %q", entity.ErrMalformedAnnotation, f)
		}
		vals[i] = v
	}
	return vals, nil
}

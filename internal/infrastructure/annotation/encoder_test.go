package annotation

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/vision"
)

func box(t entity.DefectType, x1, y1, x2, y2 int) entity.Defect {
	return entity.Defect{Type: t, Coordinates: entity.Coordinates{
		Start: entity.Point{X: x1, Y: y1},
		End:   entity.Point{X: x2, Y: y2},
	}}
}

func TestBoxLines_Format(t *testing.T) {
	lines := BoxLines([]entity.Defect{box(entity.DefectNoise, 10, 20, 50, 60)}, 200, 100)
	require.Equal(t, []string{"1 0.150000 0.400000 0.200000 0.400000"}, lines)
}

func TestBoxLines_SkipsDegenerate(t *testing.T) {
	lines := BoxLines([]entity.Defect{
		box(entity.DefectScratch, 10, 10, 10, 40),
		box(entity.DefectScratch, 5, 7, 30, 7),
		box(entity.DefectScratch, 250, 10, 300, 20), // целиком справа от изображения
	}, 200, 100)
	require.Empty(t, lines)
}

func TestBoxLines_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const w, h = 640, 480

	for i := 0; i < 500; i++ {
		x1, y1 := rng.IntN(w), rng.IntN(h)
		x2, y2 := x1+1+rng.IntN(w-x1), y1+1+rng.IntN(h-y1)
		src := box(entity.DefectScratch, x1, y1, x2, y2)

		lines := BoxLines([]entity.Defect{src}, w, h)
		require.Len(t, lines, 1)
		got, err := DecodeBoxes(lines, w, h)
		require.NoError(t, err)
		require.Len(t, got, 1)

		require.InDelta(t, x1, got[0].Start.X, 1)
		require.InDelta(t, y1, got[0].Start.Y, 1)
		require.InDelta(t, x2, got[0].End.X, 1)
		require.InDelta(t, y2, got[0].End.Y, 1)
	}
}

func requireNormalized(t *testing.T, line string) {
	t.Helper()
	fields := strings.Fields(line)
	for _, f := range fields[1:] {
		label, err := ParsePolygonLine("0 " + f + " 0")
		require.NoError(t, err)
		require.GreaterOrEqual(t, label.Points[0].X, 0.0)
		require.LessOrEqual(t, label.Points[0].X, 1.0)
	}
}

func TestBoxLines_NormalizedRange(t *testing.T) {
	defects := []entity.Defect{
		box(entity.DefectScratch, -20, -5, 50, 40),
		box(entity.DefectBlur, 150, 80, 260, 130),
		box(entity.DefectAbrasion, 0, 0, 200, 100),
	}
	lines := BoxLines(defects, 200, 100)
	require.Len(t, lines, 3)
	for _, l := range lines {
		requireNormalized(t, l)
	}
}

func TestPolygonLines_Rectangle(t *testing.T) {
	const w, h = 80, 50
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := 5; y < 35; y++ {
		for x := 10; x < 60; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	lines, err := PolygonLines(mask, vision.NewMooreContourFinder(), ScratchClass)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	requireNormalized(t, lines[0])

	label, err := ParsePolygonLine(lines[0])
	require.NoError(t, err)
	require.Equal(t, ScratchClass, label.ClassID)
	require.GreaterOrEqual(t, len(label.Points), 4)

	corners := []entity.NormPoint{
		{X: 10.0 / w, Y: 5.0 / h},
		{X: 60.0 / w, Y: 5.0 / h},
		{X: 60.0 / w, Y: 35.0 / h},
		{X: 10.0 / w, Y: 35.0 / h},
	}
	for _, c := range corners {
		found := false
		for _, p := range label.Points {
			if math.Abs(p.X-c.X) <= 1.0/w+1e-9 && math.Abs(p.Y-c.Y) <= 1.0/h+1e-9 {
				found = true
				break
			}
		}
		require.True(t, found, "corner %+v not found in %v", c, label.Points)
	}
}

func TestPolygonLines_SkipsTinyContours(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 20, 20))
	mask.SetGray(3, 3, color.Gray{Y: 255})
	mask.SetGray(10, 10, color.Gray{Y: 255})
	mask.SetGray(11, 10, color.Gray{Y: 255})

	lines, err := PolygonLines(mask, vision.NewMooreContourFinder(), ScratchClass)
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestPolygonLines_NilMask(t *testing.T) {
	_, err := PolygonLines(nil, vision.NewMooreContourFinder(), ScratchClass)
	require.Error(t, err)
}

func TestRecordPolygonLines(t *testing.T) {
	lines := RecordPolygonLines([]entity.Defect{
		box(entity.DefectScratch, 0, 0, 10, 10),
		box(entity.DefectNoise, 20, 10, 60, 30),
		box(entity.DefectBlur, 5, 5, 5, 20),
	}, 100, 50)
	require.Equal(t, []string{"1 0.200000 0.200000 0.600000 0.200000 0.600000 0.600000 0.200000 0.600000"}, lines)
}

func TestFormatPolygon_ClampsToUnitRange(t *testing.T) {
	line := FormatPolygon(entity.PolygonLabel{ClassID: 2, Points: []entity.NormPoint{{X: -0.1, Y: 0.5}, {X: 1.2, Y: 0.25}}})
	require.Equal(t, "2 0.000000 0.500000 1.000000 0.250000", line)
}

func TestParse_Malformed(t *testing.T) {
	for _, line := range []string{
		"0 0.5 abc 0.1 0.2",
		"0 0.5 0.5",
		"x 0.1 0.1 0.1 0.1",
		"-1 0.1 0.1 0.1 0.1",
		"0 NaN 0.1 0.1 0.1",
	} {
		_, err := ParseBoxLine(line)
		require.ErrorIs(t, err, entity.ErrMalformedAnnotation, line)
	}

	for _, line := range []string{
		"0",
		"0 0.1",
		"0 0.1 0.2 0.3",
		"a 0.1 0.2",
		"0 0.1 zz",
	} {
		_, err := ParsePolygonLine(line)
		require.ErrorIs(t, err, entity.ErrMalformedAnnotation, line)
	}
}

func TestParsePolygonLines(t *testing.T) {
	labels, err := ParsePolygonLines([]string{"0 0.1 0.2 0.3 0.4 0.5 0.6", "", "  ", "1 0 0 1 1"})
	require.NoError(t, err)
	require.Len(t, labels, 2)
	require.Equal(t, 1, labels[1].ClassID)
	require.Equal(t, entity.NormPoint{X: 1, Y: 1}, labels[1].Points[1])

	labels, err = ParsePolygonLines([]string{"0 0.1 0.2 0.3 0.4 0.5 0.6", "0 0.1"})
	require.ErrorIs(t, err, entity.ErrMalformedAnnotation)
	require.Nil(t, labels)
}

func TestDecodeBoxes_Malformed(t *testing.T) {
	_, err := DecodeBoxes([]string{"0 0.5 0.5 0.1 0.1", "broken"}, 100, 100)
	require.ErrorIs(t, err, entity.ErrMalformedAnnotation)
}

package defects

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
)

func TestScratchPainter_RecordsInBounds(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		c := gradientCanvas(400, 300)
		records := NewScratchPainter().Paint(c, newRand(seed))

		require.NotEmpty(t, records)
		require.Equal(t, records, c.Defects())
		requireRecordsInBounds(t, c, records)
		for _, d := range records {
			require.Equal(t, entity.DefectScratch, d.Type)
		}
	}
}

func TestScratchPainter_TouchedPixelsInsideRecords(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		c := gradientCanvas(640, 480)
		records := NewScratchPainter().Paint(c, newRand(seed))
		requireTouchedInsideRecords(t, c, records)
	}
}

func TestScratchPainter_MaskIsBinary(t *testing.T) {
	c := uniformCanvas(300, 200, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	NewScratchPainter().Paint(c, newRand(7))

	require.Positive(t, c.MaskPixels())
	for _, v := range c.Mask.Pix {
		require.True(t, v == 0 || v == 255)
	}
}

func TestScratchPainter_DeterministicForSeed(t *testing.T) {
	a := gradientCanvas(320, 240)
	b := gradientCanvas(320, 240)

	ra := NewScratchPainter().Paint(a, newRand(42))
	rb := NewScratchPainter().Paint(b, newRand(42))

	require.Equal(t, ra, rb)
	require.Equal(t, a.Mask.Pix, b.Mask.Pix)
	require.Equal(t, a.Defected.Pix, b.Defected.Pix)
}

func TestScratchPainter_ScratchCountRange(t *testing.T) {
	p := NewScratchPainter()
	p.LongProbability = 0
	p.StraightProbability = 0

	c := uniformCanvas(800, 600, color.NRGBA{A: 255})
	records := p.Paint(c, newRand(5))
	require.GreaterOrEqual(t, len(records), p.MinScratches)
	require.LessOrEqual(t, len(records), p.MaxScratches)
}

func TestChordsCross(t *testing.T) {
	require.True(t, chordsCross(image.Pt(0, 0), image.Pt(100, 100), image.Pt(0, 100), image.Pt(100, 0)))
	require.False(t, chordsCross(image.Pt(0, 0), image.Pt(100, 0), image.Pt(0, 10), image.Pt(100, 10)))
	require.False(t, chordsCross(image.Pt(0, 0), image.Pt(10, 10), image.Pt(20, 20), image.Pt(30, 30)))
	require.False(t, chordsCross(image.Pt(0, 0), image.Pt(10, 0), image.Pt(20, 5), image.Pt(30, -5)))
}

func diagonal(from, to image.Point, n int) Curve {
	points := make([]image.Point, n)
	for i := range points {
		points[i] = image.Pt(
			from.X+(to.X-from.X)*i/(n-1),
			from.Y+(to.Y-from.Y)*i/(n-1),
		)
	}
	return NewCurve(points)
}

func TestResolveIntersections_DeterministicBranch(t *testing.T) {
	p := NewScratchPainter()
	first := diagonal(image.Pt(0, 0), image.Pt(100, 100), 100)
	second := diagonal(image.Pt(0, 100), image.Pt(100, 0), 100)

	cut := 0
	for seed := uint64(0); seed < 200; seed++ {
		// Единственное случайное решение принимается первым вызовом Float64.
		expectCut := newRand(seed).Float64() < p.CutProbability

		c := uniformCanvas(120, 120, color.NRGBA{A: 255})
		out := []Curve{first, second}
		p.resolveIntersections(c, out, newRand(seed))

		require.Equal(t, 100, out[0].Len())
		require.Equal(t, 100, second.Len(), "the cut replaces the curve, not its points")
		if expectCut {
			cut++
			require.Equal(t, 50, out[1].Len())
			require.Equal(t, second.At(0), out[1].At(0))
			require.Equal(t, second.At(49), out[1].At(49))
		} else {
			require.Equal(t, 100, out[1].Len())
			require.Equal(t, c.Original.Pix, c.Defected.Pix)
		}
	}
	require.InDelta(t, 100, cut, 30)
}

func TestResolveIntersections_OnlyFirstCrossingPerCurve(t *testing.T) {
	p := NewScratchPainter()
	p.CutProbability = 1

	base := diagonal(image.Pt(0, 0), image.Pt(100, 100), 50)
	a := diagonal(image.Pt(0, 100), image.Pt(100, 0), 50)
	b := diagonal(image.Pt(10, 90), image.Pt(90, 10), 50)

	c := uniformCanvas(120, 120, color.NRGBA{A: 255})
	out := []Curve{base, a, b}
	p.resolveIntersections(c, out, newRand(1))

	// base обрезает только a; обрезанная a и b лежат на одной прямой и не пересекаются.
	require.Equal(t, 50, out[0].Len())
	require.Equal(t, 25, out[1].Len())
	require.Equal(t, 50, out[2].Len())
}

func TestResolveIntersections_SkipsEmptyCurves(t *testing.T) {
	p := NewScratchPainter()
	p.CutProbability = 1
	c := uniformCanvas(50, 50, color.NRGBA{A: 255})

	out := []Curve{{}, diagonal(image.Pt(0, 0), image.Pt(10, 10), 5)}
	p.resolveIntersections(c, out, newRand(1))
	require.Zero(t, out[0].Len())
	require.Equal(t, 5, out[1].Len())
}

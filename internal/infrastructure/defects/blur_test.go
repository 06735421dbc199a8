package defects

import (
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
)

func TestBlurPainter_RecordsAndPixels(t *testing.T) {
	for seed := uint64(0); seed < 5; seed++ {
		c := gradientCanvas(300, 200)
		records := NewBlurPainter().Paint(c, newRand(seed))

		require.GreaterOrEqual(t, len(records), 7)
		require.LessOrEqual(t, len(records), 15)
		requireRecordsInBounds(t, c, records)
		requireTouchedInsideRecords(t, c, records)
		require.Zero(t, c.MaskPixels())
		for _, d := range records {
			require.Equal(t, entity.DefectBlur, d.Type)
		}
	}
}

func TestBlurPainter_ChangesGradient(t *testing.T) {
	c := gradientCanvas(300, 200)
	NewBlurPainter().Paint(c, newRand(9))
	require.NotEqual(t, c.Original.Pix, c.Defected.Pix)
}

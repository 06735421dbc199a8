//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStubsReportUnavailable(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))

	_, err := NewGoCVDetector().Segment(context.Background(), img)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, NewGoCVDetector().CheckQuality(img), ErrUnavailable)

	_, err = NewGoCVInpainter().Inpaint(context.Background(), img, img)
	require.ErrorIs(t, err, ErrUnavailable)

	require.Nil(t, NewGoCVContourFinder().FindExternal(img))
}

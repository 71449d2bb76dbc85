package frame

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenFrame struct{ err error }

func (b brokenFrame) PixelBuffer() (image.Image, error) { return nil, b.err }

func markedImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			img.Set(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	return img
}

func nrgbaAt(t *testing.T, img image.Image, x, y int) color.NRGBA {
	t.Helper()
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestPrepare_NoRotationKeepsPixels(t *testing.T) {
	src := markedImage()
	out, err := Prepare(NewImageFrame(src), orientation.CorrectionNone)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, nrgbaAt(t, out, 0, 0))

	// the prepared image is a copy, not the host's buffer
	src.Set(0, 0, color.NRGBA{A: 255})
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, nrgbaAt(t, out, 0, 0))
}

func TestPrepare_Rotate180(t *testing.T) {
	out, err := Prepare(NewImageFrame(markedImage()), orientation.CorrectionRotate180)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, nrgbaAt(t, out, 3, 1))
	assert.Equal(t, color.NRGBA{R: 200, G: 200, B: 200, A: 255}, nrgbaAt(t, out, 0, 0))
}

func TestInvert_UsesOriginalOrientation(t *testing.T) {
	out, err := Invert(NewImageFrame(markedImage()))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 245, G: 235, B: 225, A: 255}, nrgbaAt(t, out, 0, 0))
	assert.Equal(t, color.NRGBA{R: 55, G: 55, B: 55, A: 255}, nrgbaAt(t, out, 3, 1))
}

func TestBufferAccessFailures(t *testing.T) {
	cause := errors.New("sample buffer released")
	frames := []Frame{nil, ImageFrame{}, brokenFrame{err: cause}, brokenFrame{}}
	for _, f := range frames {
		_, err := Prepare(f, orientation.CorrectionNone)
		require.ErrorIs(t, err, ErrBufferAccess)
		_, err = Invert(f)
		require.ErrorIs(t, err, ErrBufferAccess)
	}

	_, err := Prepare(brokenFrame{err: cause}, orientation.CorrectionRotate180)
	require.ErrorIs(t, err, cause)
}

func TestEmptyBufferCannotBeRasterized(t *testing.T) {
	empty := NewImageFrame(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	_, err := Prepare(empty, orientation.CorrectionRotate180)
	require.ErrorIs(t, err, ErrRasterize)
	_, err = Invert(empty)
	require.ErrorIs(t, err, ErrRasterize)
}

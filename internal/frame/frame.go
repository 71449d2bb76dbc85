// Package frame prepares host-owned camera frames for barcode detection:
// it applies the orientation correction to the pixel buffer and produces the
// colour-inverted variant used by the low-contrast retry.
package frame

import (
	"errors"
	"fmt"
	"image"

	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/utils"
)

var (
	// ErrBufferAccess reports that the frame's pixel buffer could not be read.
	ErrBufferAccess = errors.New("frame: pixel buffer unavailable")
	// ErrRasterize reports that the transformed image could not be rasterized.
	ErrRasterize = errors.New("frame: image could not be rasterized")
)

// Frame is a single captured image owned by the host for the duration of one call.
type Frame interface {
	PixelBuffer() (image.Image, error)
}

// ImageFrame adapts a decoded image to Frame.
type ImageFrame struct {
	Img image.Image
}

// NewImageFrame wraps img as a frame.
func NewImageFrame(img image.Image) ImageFrame { return ImageFrame{Img: img} }

// PixelBuffer returns the wrapped image.
func (f ImageFrame) PixelBuffer() (image.Image, error) {
	if f.Img == nil {
		return nil, ErrBufferAccess
	}
	return f.Img, nil
}

func pixelBuffer(f Frame) (image.Image, error) {
	if f == nil {
		return nil, ErrBufferAccess
	}
	img, err := f.PixelBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBufferAccess, err)
	}
	if img == nil {
		return nil, ErrBufferAccess
	}
	return img, nil
}

func checkRaster(img image.Image) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrRasterize
	}
	return img, nil
}

// Prepare returns an upright copy of the frame. Only the geometric correction
// is applied; pixel values are untouched.
func Prepare(f Frame, c orientation.Correction) (image.Image, error) {
	src, err := pixelBuffer(f)
	if err != nil {
		return nil, err
	}
	if src.Bounds().Empty() {
		return nil, ErrRasterize
	}
	switch c {
	case orientation.CorrectionRotate180:
		return checkRaster(utils.Rotate180(src))
	default:
		return checkRaster(utils.Clone(src))
	}
}

// Invert returns the colour negative of the frame's original, uncorrected
// buffer. No orientation correction is applied.
func Invert(f Frame) (image.Image, error) {
	src, err := pixelBuffer(f)
	if err != nil {
		return nil, err
	}
	if src.Bounds().Empty() {
		return nil, ErrRasterize
	}
	return checkRaster(utils.Invert(src))
}

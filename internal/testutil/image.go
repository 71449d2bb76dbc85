package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/disintegration/imaging"
	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/require"
)

// ImageSize represents frame dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Default symbol sizes for generated frames.
	MatrixSize = ImageSize{240, 240}
	LinearSize = ImageSize{400, 120}
)

// BarcodeSpec describes a synthetic frame holding a single barcode.
type BarcodeSpec struct {
	Format  barcode.Format
	Content string
	Size    ImageSize // zero picks MatrixSize or LinearSize
	Margin  int       // white border around the symbol, in pixels
	// Inverted renders light modules on a dark background.
	Inverted bool
	// UpsideDown rotates the frame by 180 degrees, as a face-down device
	// would deliver it.
	UpsideDown bool
}

// GeneratableFormats lists the formats GenerateBarcode can encode.
func GeneratableFormats() []barcode.Format {
	return []barcode.Format{barcode.FormatQR, barcode.FormatEAN13, barcode.FormatEAN8, barcode.FormatCode128}
}

// GenerateBarcode renders spec into an image.
func GenerateBarcode(spec BarcodeSpec) (image.Image, error) {
	var (
		writer gozxing.Writer
		format gozxing.BarcodeFormat
		size   = LinearSize
	)
	switch spec.Format {
	case barcode.FormatQR:
		writer, format, size = qrcode.NewQRCodeWriter(), gozxing.BarcodeFormat_QR_CODE, MatrixSize
	case barcode.FormatEAN13:
		writer, format = oned.NewEAN13Writer(), gozxing.BarcodeFormat_EAN_13
	case barcode.FormatEAN8:
		writer, format = oned.NewEAN8Writer(), gozxing.BarcodeFormat_EAN_8
	case barcode.FormatCode128:
		writer, format = oned.NewCode128Writer(), gozxing.BarcodeFormat_CODE_128
	default:
		return nil, fmt.Errorf("cannot generate %s barcodes", spec.Format)
	}
	if spec.Size.Width > 0 && spec.Size.Height > 0 {
		size = spec.Size
	}

	matrix, err := writer.Encode(spec.Content, format, size.Width, size.Height, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %q: %w", spec.Format, spec.Content, err)
	}

	var img image.Image = matrix
	if spec.Margin > 0 {
		b := matrix.Bounds()
		canvas := imaging.New(b.Dx()+2*spec.Margin, b.Dy()+2*spec.Margin, color.White)
		img = imaging.Paste(canvas, matrix, image.Pt(spec.Margin, spec.Margin))
	}
	if spec.Inverted {
		img = imaging.Invert(img)
	}
	if spec.UpsideDown {
		img = imaging.Rotate180(img)
	}
	return img, nil
}

// CreateBlankFrame returns a white frame without any symbol.
func CreateBlankFrame(width, height int) image.Image {
	return imaging.New(width, height, color.White)
}

// WriteImage encodes img as PNG at path, creating parent directories.
func WriteImage(path string, img image.Image) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path) //nolint:gosec // G304: caller-controlled output path
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveImage saves an image to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	require.NoError(t, WriteImage(path, img), "Failed to write image %s", path)
}

// SaveBarcode generates spec and saves it to path.
func SaveBarcode(t *testing.T, spec BarcodeSpec, path string) {
	t.Helper()
	img, err := GenerateBarcode(spec)
	require.NoError(t, err)
	SaveImage(t, img, path)
}

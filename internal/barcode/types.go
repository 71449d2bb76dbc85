package barcode

import (
	"context"
	"image"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/content"
)

// Format represents a barcode symbology. Values are the integer codes the
// host exchanges on the wire, so a Format doubles as its own bit in a FormatSet.
type Format int

const (
	FormatUnknown    Format = -1
	FormatCode128    Format = 1
	FormatCode39     Format = 2
	FormatCode93     Format = 4
	FormatCodabar    Format = 8
	FormatDataMatrix Format = 16
	FormatEAN13      Format = 32
	FormatEAN8       Format = 64
	FormatITF        Format = 128
	FormatQR         Format = 256
	FormatUPCA       Format = 512
	FormatUPCE       Format = 1024
	FormatPDF417     Format = 2048
	FormatAztec      Format = 4096
)

// AllFormatsCode is the request sentinel that expands to every supported symbology.
const AllFormatsCode = 0

// supportedFormats lists every symbology the engine can be configured for, in code order.
var supportedFormats = []Format{
	FormatCode128, FormatCode39, FormatCode93, FormatCodabar, FormatDataMatrix,
	FormatEAN13, FormatEAN8, FormatITF, FormatQR, FormatUPCA, FormatUPCE,
	FormatPDF417, FormatAztec,
}

// SupportedFormats returns a copy of the supported symbologies in code order.
func SupportedFormats() []Format {
	out := make([]Format, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

// LookupFormat maps a single wire code to a supported symbology.
func LookupFormat(code int) (Format, bool) {
	for _, f := range supportedFormats {
		if int(f) == code {
			return f, true
		}
	}
	return FormatUnknown, false
}

// Code returns the integer wire code of the symbology.
func (f Format) Code() int { return int(f) }

// IsRetail reports whether the symbology carries a GTIN (EAN/UPC family).
func (f Format) IsRetail() bool {
	switch f {
	case FormatEAN13, FormatEAN8, FormatUPCA, FormatUPCE:
		return true
	default:
		return false
	}
}

// Symbology returns the family content classification needs.
func (f Format) Symbology() content.Symbology {
	switch {
	case f.IsRetail():
		return content.SymbologyRetail
	case f == FormatPDF417:
		return content.SymbologyPDF417
	default:
		return content.SymbologyOther
	}
}

func (f Format) String() string {
	switch f {
	case FormatQR:
		return "qr"
	case FormatDataMatrix:
		return "datamatrix"
	case FormatAztec:
		return "aztec"
	case FormatPDF417:
		return "pdf417"
	case FormatCode128:
		return "code128"
	case FormatCode39:
		return "code39"
	case FormatCode93:
		return "code93"
	case FormatEAN8:
		return "ean8"
	case FormatEAN13:
		return "ean13"
	case FormatUPCA:
		return "upca"
	case FormatUPCE:
		return "upce"
	case FormatITF:
		return "itf"
	case FormatCodabar:
		return "codabar"
	default:
		return "unknown"
	}
}

// ParseFormatName maps a human-readable symbology name (as used on the CLI and
// in config files) to a Format. "all" is not a symbology and is handled by callers.
func ParseFormatName(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qr", "qrcode", "qr-code":
		return FormatQR, true
	case "datamatrix", "data-matrix":
		return FormatDataMatrix, true
	case "aztec":
		return FormatAztec, true
	case "pdf417":
		return FormatPDF417, true
	case "code128", "code-128":
		return FormatCode128, true
	case "code39", "code-39":
		return FormatCode39, true
	case "code93", "code-93":
		return FormatCode93, true
	case "ean8", "ean-8":
		return FormatEAN8, true
	case "ean13", "ean-13":
		return FormatEAN13, true
	case "upca", "upc-a":
		return FormatUPCA, true
	case "upce", "upc-e":
		return FormatUPCE, true
	case "itf", "interleaved2of5", "i2/5":
		return FormatITF, true
	case "codabar":
		return FormatCodabar, true
	default:
		return FormatUnknown, false
	}
}

// FormatSet is a set of symbologies stored as a bitmask of wire codes.
// Two sets are equal exactly when they contain the same symbologies.
type FormatSet uint16

// NewFormatSet returns the set containing the given symbologies.
// FormatUnknown is ignored.
func NewFormatSet(formats ...Format) FormatSet {
	var s FormatSet
	for _, f := range formats {
		if f > 0 {
			s |= FormatSet(f)
		}
	}
	return s
}

// AllFormats returns the set of every supported symbology.
func AllFormats() FormatSet { return NewFormatSet(supportedFormats...) }

// Has reports whether f is in the set.
func (s FormatSet) Has(f Format) bool { return f > 0 && s&FormatSet(f) != 0 }

// IsEmpty reports whether the set contains no symbology.
func (s FormatSet) IsEmpty() bool { return s == 0 }

// Union returns the union of both sets.
func (s FormatSet) Union(o FormatSet) FormatSet { return s | o }

// Formats returns the members of the set in code order.
func (s FormatSet) Formats() []Format {
	out := make([]Format, 0, len(supportedFormats))
	for _, f := range supportedFormats {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FormatSet) String() string {
	if s == AllFormats() {
		return "all"
	}
	fs := s.Formats()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}

// Point is a point in image coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Detection is what an engine reports for one barcode. It is produced once
// per pass and never mutated afterwards.
type Detection struct {
	Format       Format
	RawValue     string
	DisplayValue string
	CornerPoints []Point
	Content      content.Payload
}

// EngineOptions tunes engine behaviour independently of the format set.
type EngineOptions struct {
	// TryHarder enables a more exhaustive search (slower but more robust).
	TryHarder bool
}

// Engine builds detectors bound to a format set.
type Engine interface {
	Build(formats FormatSet) (Detector, error)
}

// Detector finds barcodes of its configured symbologies in an image.
// Implementations must be safe for concurrent use.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// NewEngine returns the default engine implementation.
func NewEngine(opts EngineOptions) Engine { return newGozxingEngine(opts) }

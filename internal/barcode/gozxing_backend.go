package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/MeKo-Tech/framescan/internal/content"
	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	qrmulti "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyFormatSet is returned when an engine is asked to build a detector for no symbology.
var ErrEmptyFormatSet = errors.New("barcode: empty format set")

const (
	// maxRegionDepth bounds how often a decoded region splits the rest of the
	// image into sub-regions that are searched again.
	maxRegionDepth = 4
	// minRegionSize is the smallest sub-region worth another search, in pixels.
	minRegionSize = 100
)

type gozxingEngine struct {
	opts EngineOptions
}

func newGozxingEngine(opts EngineOptions) *gozxingEngine { return &gozxingEngine{opts: opts} }

// DecodableFormats returns the symbologies the default engine has a reader
// for. The others are valid in a FormatSet but never detected.
func DecodableFormats() FormatSet {
	var s FormatSet
	for _, f := range supportedFormats {
		if _, ok := readerFactory(f); ok {
			s |= FormatSet(f)
		}
	}
	return s
}

// Build assembles a detector that only consults the readers of the requested
// symbologies. Symbologies without a reader are accepted and contribute
// nothing, so a set made only of them yields a detector that finds nothing.
func (e *gozxingEngine) Build(formats FormatSet) (Detector, error) {
	if formats.IsEmpty() {
		return nil, ErrEmptyFormatSet
	}
	var factories []func() gozxing.Reader
	for _, f := range formats.Formats() {
		if factory, ok := readerFactory(f); ok {
			factories = append(factories, factory)
		}
	}
	hints := make(map[gozxing.DecodeHintType]interface{})
	if e.opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return &gozxingDetector{
		factories: factories,
		multiQR:   formats.Has(FormatQR),
		hints:     hints,
	}, nil
}

type gozxingDetector struct {
	factories []func() gozxing.Reader
	multiQR   bool
	hints     map[gozxing.DecodeHintType]interface{}
}

// Detect decodes every symbol found in img. QR codes are located together by
// the multi QR reader; every symbology is also searched region by region,
// the way ZXing's generic multiple reader does. gozxing readers keep
// per-decode state, so a fresh reader set is assembled for each call.
func (d *gozxingDetector) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.factories) == 0 {
		return []Detection{}, nil
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("barcode: binarize: %w", err)
	}

	found := &resultSet{seen: make(map[resultKey]bool)}
	if d.multiQR {
		results, err := qrmulti.NewQRCodeMultiReader().DecodeMultiple(bmp, d.hints)
		if err != nil && !isReaderException(err) {
			return nil, fmt.Errorf("barcode: decode: %w", err)
		}
		for _, r := range results {
			found.add(r)
		}
	}

	readers := make([]gozxing.Reader, len(d.factories))
	for i, factory := range d.factories {
		readers[i] = factory()
	}
	reader := &compositeReader{readers: readers}
	if err := d.decodeRegions(ctx, reader, bmp, found, 0, 0, 0); err != nil {
		return nil, err
	}

	out := make([]Detection, 0, len(found.results))
	for _, r := range found.results {
		out = append(out, toDetection(r))
	}
	return out, nil
}

// decodeRegions decodes one symbol in bmp, then searches the areas left of,
// above, right of and below it. Offsets translate points back into the
// coordinates of the full image.
func (d *gozxingDetector) decodeRegions(ctx context.Context, reader gozxing.Reader, bmp *gozxing.BinaryBitmap,
	found *resultSet, xOffset, yOffset, depth int,
) error {
	if depth > maxRegionDepth {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := reader.Decode(bmp, d.hints)
	if err != nil {
		if isReaderException(err) {
			return nil
		}
		return fmt.Errorf("barcode: decode: %w", err)
	}
	found.add(translate(res, xOffset, yOffset))

	if !bmp.IsCropSupported() {
		return nil
	}
	width, height := bmp.GetWidth(), bmp.GetHeight()
	minX, minY := float64(width), float64(height)
	maxX, maxY := 0.0, 0.0
	located := false
	for _, p := range res.GetResultPoints() {
		if p == nil {
			continue
		}
		located = true
		minX, maxX = min(minX, p.GetX()), max(maxX, p.GetX())
		minY, maxY = min(minY, p.GetY()), max(maxY, p.GetY())
	}
	if !located {
		return nil
	}
	left, top := max(int(minX), 0), max(int(minY), 0)
	right, bottom := min(max(int(maxX), 0), width), min(max(int(maxY), 0), height)

	var regions []region
	if left > minRegionSize {
		regions = append(regions, region{0, 0, left, height})
	}
	if top > minRegionSize {
		regions = append(regions, region{0, 0, width, top})
	}
	if right < width-minRegionSize {
		regions = append(regions, region{right, 0, width - right, height})
	}
	if bottom < height-minRegionSize {
		regions = append(regions, region{0, bottom, width, height - bottom})
	}
	for _, r := range regions {
		sub, err := bmp.Crop(r.x, r.y, r.w, r.h)
		if err != nil {
			continue
		}
		if err := d.decodeRegions(ctx, reader, sub, found, xOffset+r.x, yOffset+r.y, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// region is a crop rectangle in the coordinates of the bitmap being searched.
type region struct{ x, y, w, h int }

// resultKey identifies one symbol within a pass. Overlapping regions find the
// same symbol again; those repeats are dropped.
type resultKey struct {
	format gozxing.BarcodeFormat
	text   string
}

type resultSet struct {
	seen    map[resultKey]bool
	results []*gozxing.Result
}

func (s *resultSet) add(r *gozxing.Result) {
	if r == nil {
		return
	}
	k := resultKey{format: r.GetBarcodeFormat(), text: r.GetText()}
	if s.seen[k] {
		return
	}
	s.seen[k] = true
	s.results = append(s.results, r)
}

func translate(r *gozxing.Result, dx, dy int) *gozxing.Result {
	if dx == 0 && dy == 0 {
		return r
	}
	pts := r.GetResultPoints()
	moved := make([]gozxing.ResultPoint, 0, len(pts))
	for _, p := range pts {
		if p == nil {
			continue
		}
		moved = append(moved, gozxing.NewResultPoint(p.GetX()+float64(dx), p.GetY()+float64(dy)))
	}
	return gozxing.NewResult(r.GetText(), r.GetRawBytes(), moved, r.GetBarcodeFormat())
}

// isReaderException reports whether err is gozxing's "nothing decodable"
// signal rather than a failure.
func isReaderException(err error) bool {
	var re gozxing.ReaderException
	return errors.As(err, &re)
}

func toDetection(r *gozxing.Result) Detection {
	f := mapFormatFromZXing(r.GetBarcodeFormat())
	text := r.GetText()
	pts := r.GetResultPoints()
	points := make([]Point, 0, len(pts))
	for _, p := range pts {
		if p == nil {
			continue
		}
		points = append(points, Point{X: p.GetX(), Y: p.GetY()})
	}
	return Detection{
		Format:       f,
		RawValue:     text,
		DisplayValue: displayText(text),
		CornerPoints: points,
		Content:      content.Classify(text, f.Symbology()),
	}
}

// displayText strips control separators (GS1 group separators, AAMVA record
// separators) and folds the payload into NFC for presentation.
func displayText(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, raw)
	return norm.NFC.String(strings.TrimSpace(cleaned))
}

// compositeReader tries each configured symbology reader in turn; it is the
// format-restricted equivalent of a multi-format reader.
type compositeReader struct {
	readers []gozxing.Reader
}

func (c *compositeReader) DecodeWithoutHints(img *gozxing.BinaryBitmap) (*gozxing.Result, error) {
	return c.Decode(img, nil)
}

func (c *compositeReader) Decode(img *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) (*gozxing.Result, error) {
	for _, r := range c.readers {
		res, err := r.Decode(img, hints)
		r.Reset()
		if err == nil && res != nil {
			return res, nil
		}
	}
	return nil, gozxing.NewNotFoundException("no configured symbology matched")
}

func (c *compositeReader) Reset() {
	for _, r := range c.readers {
		r.Reset()
	}
}

func readerFactory(f Format) (func() gozxing.Reader, bool) {
	switch f {
	case FormatQR:
		return func() gozxing.Reader { return qrcode.NewQRCodeReader() }, true
	case FormatDataMatrix:
		return func() gozxing.Reader { return datamatrix.NewDataMatrixReader() }, true
	case FormatAztec:
		return func() gozxing.Reader { return aztec.NewAztecReader() }, true
	case FormatCode128:
		return func() gozxing.Reader { return oned.NewCode128Reader() }, true
	case FormatCode39:
		return func() gozxing.Reader { return oned.NewCode39Reader() }, true
	case FormatCode93:
		return func() gozxing.Reader { return oned.NewCode93Reader() }, true
	case FormatEAN8:
		return func() gozxing.Reader { return oned.NewEAN8Reader() }, true
	case FormatEAN13:
		return func() gozxing.Reader { return oned.NewEAN13Reader() }, true
	case FormatUPCA:
		return func() gozxing.Reader { return oned.NewUPCAReader() }, true
	case FormatUPCE:
		return func() gozxing.Reader { return oned.NewUPCEReader() }, true
	case FormatITF:
		return func() gozxing.Reader { return oned.NewITFReader() }, true
	case FormatCodabar:
		return func() gozxing.Reader { return oned.NewCodaBarReader() }, true
	default:
		return nil, false
	}
}

func mapFormatFromZXing(bf gozxing.BarcodeFormat) Format {
	switch bf {
	case gozxing.BarcodeFormat_QR_CODE:
		return FormatQR
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FormatDataMatrix
	case gozxing.BarcodeFormat_AZTEC:
		return FormatAztec
	case gozxing.BarcodeFormat_PDF_417:
		return FormatPDF417
	case gozxing.BarcodeFormat_CODE_128:
		return FormatCode128
	case gozxing.BarcodeFormat_CODE_39:
		return FormatCode39
	case gozxing.BarcodeFormat_CODE_93:
		return FormatCode93
	case gozxing.BarcodeFormat_EAN_8:
		return FormatEAN8
	case gozxing.BarcodeFormat_EAN_13:
		return FormatEAN13
	case gozxing.BarcodeFormat_UPC_A:
		return FormatUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return FormatUPCE
	case gozxing.BarcodeFormat_ITF:
		return FormatITF
	case gozxing.BarcodeFormat_CODABAR:
		return FormatCodabar
	default:
		return FormatUnknown
	}
}

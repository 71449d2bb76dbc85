package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/content"
)

// passResponse is what the scripted detector returns for one call.
type passResponse struct {
	detections []barcode.Detection
	err        error
}

// scriptedDetector answers successive Detect calls from a script and keeps
// the images it was given.
type scriptedDetector struct {
	mu     sync.Mutex
	script []passResponse
	images []image.Image
}

func (d *scriptedDetector) Detect(_ context.Context, img image.Image) ([]barcode.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.images = append(d.images, img)
	if len(d.script) == 0 {
		return []barcode.Detection{}, nil
	}
	r := d.script[0]
	d.script = d.script[1:]
	return r.detections, r.err
}

func (d *scriptedDetector) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.images)
}

type fakeEngine struct {
	det    *scriptedDetector
	builds atomic.Int32
	err    error
}

func (e *fakeEngine) Build(barcode.FormatSet) (barcode.Detector, error) {
	e.builds.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.det, nil
}

func newFakeEngine(script ...passResponse) *fakeEngine {
	return &fakeEngine{det: &scriptedDetector{script: script}}
}

func textDetection(value string) barcode.Detection {
	return barcode.Detection{
		Format:       barcode.FormatQR,
		RawValue:     value,
		DisplayValue: value,
		CornerPoints: []barcode.Point{{X: 1, Y: 1}, {X: 9, Y: 1}, {X: 9, Y: 9}, {X: 1, Y: 9}},
		Content:      content.Text{Kind: content.TypeText, Value: value},
	}
}

// flakyFrame serves its image for the first `good` buffer reads and fails afterwards.
type flakyFrame struct {
	img   image.Image
	good  int32
	reads atomic.Int32
}

func (f *flakyFrame) PixelBuffer() (image.Image, error) {
	if f.reads.Add(1) > f.good {
		return nil, errors.New("buffer recycled")
	}
	return f.img, nil
}

// testImage is a small frame with a dark top-left pixel and a light body.
func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := range 4 {
		for x := range 6 {
			img.Set(x, y, color.NRGBA{R: 220, G: 220, B: 220, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	return img
}

func nrgba(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

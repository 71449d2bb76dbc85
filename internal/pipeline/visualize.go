package pipeline

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/utils"
)

// RenderOverlay draws the corner polygon of every record over a copy of img.
// Records from the primary pass are reported in the coordinates of the
// corrected image, so the polygon is mapped back when the frame was rotated.
func RenderOverlay(img image.Image, records []BarcodeRecord, correction orientation.Correction, col color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.ToRGBA(img)
	w, h := float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	for _, r := range records {
		if len(r.CornerPoints) == 0 {
			continue
		}
		pts := make([]utils.Point, len(r.CornerPoints))
		for i, p := range r.CornerPoints {
			x, y := p.X, p.Y
			if correction == orientation.CorrectionRotate180 {
				x, y = w-1-x, h-1-y
			}
			pts[i] = utils.Point{X: x, Y: y}
		}
		utils.DrawPolygon(dst, pts, col, 2)
	}
	return dst
}

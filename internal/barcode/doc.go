// Package barcode defines the detection engine contract used by the frame
// scanner: symbology codes and format sets, the Engine/Detector pair, and the
// raw detections an engine reports.
//
// The default engine is backed by gozxing (pure Go, no CGO). Engines are
// built once per requested FormatSet and the resulting Detector is safe for
// concurrent use.
package barcode

package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/framescan/internal/barcode"
)

// FrameFixture is a generated frame together with what a scan must report.
type FrameFixture struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputFile   string      `json:"input_file"`
	Spec        BarcodeSpec `json:"-"`
	// Expected lists the raw values in report order. Empty for frames
	// without a symbol.
	Expected []ExpectedBarcode `json:"expected"`
	// CheckInverted marks frames that only decode with the inverted pass.
	CheckInverted bool `json:"check_inverted,omitempty"`
	// DeviceOrientation is the orientation the frame was captured in.
	DeviceOrientation string `json:"device_orientation,omitempty"`
}

// ExpectedBarcode is one barcode a fixture must yield.
type ExpectedBarcode struct {
	Format   int    `json:"format"`
	RawValue string `json:"raw_value"`
}

// DefaultFixtures returns the standard fixture set.
func DefaultFixtures() []FrameFixture {
	qr := BarcodeSpec{Format: barcode.FormatQR, Content: "https://example.com/shelf/42", Margin: 16}
	inverted := qr
	inverted.Content = "light on dark"
	inverted.Inverted = true
	upside := qr
	upside.Content = "face down"
	upside.UpsideDown = true

	fixtures := []FrameFixture{
		{Name: "qr_url", Description: "QR code carrying a URL", Spec: qr},
		{Name: "qr_wifi", Description: "QR code carrying WiFi credentials",
			Spec: BarcodeSpec{Format: barcode.FormatQR, Content: "WIFI:S:Home;T:WPA;P:secret;;", Margin: 16}},
		{Name: "qr_inverted", Description: "Light-on-dark QR code", Spec: inverted, CheckInverted: true},
		{Name: "qr_upside_down", Description: "QR code captured face down", Spec: upside, DeviceOrientation: "face-down"},
		{Name: "ean13_product", Description: "EAN-13 retail code",
			Spec: BarcodeSpec{Format: barcode.FormatEAN13, Content: "4006381333931", Margin: 16}},
		{Name: "ean8_product", Description: "EAN-8 retail code",
			Spec: BarcodeSpec{Format: barcode.FormatEAN8, Content: "96385074", Margin: 16}},
		{Name: "code128_label", Description: "Code 128 shipping label",
			Spec: BarcodeSpec{Format: barcode.FormatCode128, Content: "FRAMESCAN-0042", Margin: 16}},
	}
	for i := range fixtures {
		f := &fixtures[i]
		f.InputFile = f.Name + ".png"
		f.Expected = []ExpectedBarcode{{Format: f.Spec.Format.Code(), RawValue: f.Spec.Content}}
	}
	return append(fixtures, FrameFixture{
		Name:        "blank",
		Description: "Frame without any barcode",
		InputFile:   "blank.png",
		Expected:    []ExpectedBarcode{},
	})
}

// WriteFixtures renders every fixture into dir as <name>.png plus a
// <name>.json description.
func WriteFixtures(dir string, fixtures []FrameFixture) error {
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to create fixtures directory: %w", err)
	}
	for _, f := range fixtures {
		img := CreateBlankFrame(LinearSize.Width, LinearSize.Height)
		if f.Spec.Content != "" {
			var err error
			if img, err = GenerateBarcode(f.Spec); err != nil {
				return fmt.Errorf("fixture %s: %w", f.Name, err)
			}
		}
		if err := WriteImage(filepath.Join(dir, f.InputFile), img); err != nil {
			return fmt.Errorf("fixture %s: %w", f.Name, err)
		}
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, f.Name+".json"), data, 0o600); err != nil {
			return fmt.Errorf("fixture %s: %w", f.Name, err)
		}
	}
	return nil
}

// LoadFixture reads the description of a fixture written by WriteFixtures.
func LoadFixture(dir, name string) (FrameFixture, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+".json")) //nolint:gosec // G304: fixture directory
	if err != nil {
		return FrameFixture{}, err
	}
	var f FrameFixture
	if err := json.Unmarshal(data, &f); err != nil {
		return FrameFixture{}, fmt.Errorf("failed to unmarshal fixture %s: %w", name, err)
	}
	return f, nil
}

package support

import (
	"os"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/testutil"
	"github.com/cucumber/godog"
)

// RegisterFrameSteps registers the steps that create frames on disk.
func (testCtx *TestContext) RegisterFrameSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a frame "([^"]*)" containing the QR code "([^"]*)"$`, testCtx.aFrameContainingQR)
	sc.Step(`^an inverted frame "([^"]*)" containing the QR code "([^"]*)"$`, testCtx.anInvertedFrameContainingQR)
	sc.Step(`^a frame "([^"]*)" containing the EAN-13 code "([^"]*)"$`, testCtx.aFrameContainingEAN13)
	sc.Step(`^a blank frame "([^"]*)"$`, testCtx.aBlankFrame)
	sc.Step(`^a corrupt frame "([^"]*)"$`, testCtx.aCorruptFrame)
}

func (testCtx *TestContext) writeBarcode(name string, spec testutil.BarcodeSpec) error {
	img, err := testutil.GenerateBarcode(spec)
	if err != nil {
		return err
	}
	return testutil.WriteImage(testCtx.path(name), img)
}

func (testCtx *TestContext) aFrameContainingQR(name, text string) error {
	return testCtx.writeBarcode(name, testutil.BarcodeSpec{Format: barcode.FormatQR, Content: text, Margin: 16})
}

func (testCtx *TestContext) anInvertedFrameContainingQR(name, text string) error {
	return testCtx.writeBarcode(name, testutil.BarcodeSpec{Format: barcode.FormatQR, Content: text, Margin: 16, Inverted: true})
}

func (testCtx *TestContext) aFrameContainingEAN13(name, digits string) error {
	return testCtx.writeBarcode(name, testutil.BarcodeSpec{Format: barcode.FormatEAN13, Content: digits, Margin: 16})
}

func (testCtx *TestContext) aBlankFrame(name string) error {
	return testutil.WriteImage(testCtx.path(name), testutil.CreateBlankFrame(120, 120))
}

func (testCtx *TestContext) aCorruptFrame(name string) error {
	return os.WriteFile(testCtx.path(name), []byte("this is not an image"), 0o600)
}

package scanner

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name string
		arg  any
		want barcode.FormatSet
	}{
		{"single int", []int{256}, barcode.NewFormatSet(barcode.FormatQR)},
		{"union", []int{32, 64}, barcode.NewFormatSet(barcode.FormatEAN13, barcode.FormatEAN8)},
		{"sentinel", []int{0}, barcode.AllFormats()},
		{"sentinel with extra", []int{0, 256}, barcode.AllFormats()},
		{"int64", []int64{4096}, barcode.NewFormatSet(barcode.FormatAztec)},
		{"json floats", []any{float64(1), float64(2048)}, barcode.NewFormatSet(barcode.FormatCode128, barcode.FormatPDF417)},
		{"json number", []any{json.Number("16")}, barcode.NewFormatSet(barcode.FormatDataMatrix)},
		{"typed formats", []barcode.Format{barcode.FormatUPCA}, barcode.NewFormatSet(barcode.FormatUPCA)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormats(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormats_Rejects(t *testing.T) {
	tests := []struct {
		name string
		arg  any
	}{
		{"absent", nil},
		{"not a list", "qr"},
		{"bare code", 256},
		{"bare json number", float64(256)},
		{"map", map[string]any{"formats": []int{1}}},
		{"empty", []int{}},
		{"unknown code", []int{3}},
		{"unknown code sentinel", []int{-1}},
		{"fractional", []any{1.5}},
		{"string element", []any{"256"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormats(tt.arg)
			require.ErrorIs(t, err, ErrMissingFormat)
		})
	}
}

func TestParseFormatNames(t *testing.T) {
	got, err := ParseFormatNames([]string{"qr, ean13", "aztec"})
	require.NoError(t, err)
	assert.Equal(t, barcode.NewFormatSet(barcode.FormatQR, barcode.FormatEAN13, barcode.FormatAztec), got)

	got, err = ParseFormatNames([]string{"ALL"})
	require.NoError(t, err)
	assert.Equal(t, barcode.AllFormats(), got)

	_, err = ParseFormatNames([]string{"maxicode"})
	require.ErrorIs(t, err, ErrMissingFormat)
	_, err = ParseFormatNames(nil)
	require.ErrorIs(t, err, ErrMissingFormat)
}

func TestCodesOfRoundTrip(t *testing.T) {
	set := barcode.NewFormatSet(barcode.FormatCodabar, barcode.FormatITF)
	assert.Equal(t, []int{8, 128}, CodesOf(set))
	back, err := ParseFormats(CodesOf(set))
	require.NoError(t, err)
	assert.Equal(t, set, back)
}

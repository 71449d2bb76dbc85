package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/content"
	"gopkg.in/yaml.v3"
)

// Output formats understood by FormatResults.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputText = "text"
)

// ToJSONRecords serializes the records of one frame as the host-facing JSON
// array. A nil slice is written as [].
func ToJSONRecords(records []BarcodeRecord) (string, error) {
	if records == nil {
		records = []BarcodeRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONResults serializes frame reports to pretty JSON.
func ToJSONResults(results []FrameResult) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToYAMLResults serializes frame reports to YAML.
func ToYAMLResults(results []FrameResult) (string, error) {
	b, err := yaml.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText writes one line per record: source, format name, content type
// and display value.
func ToPlainText(results []FrameResult) string {
	var sb strings.Builder
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(&sb, "%s\terror\t%s\n", r.Source, r.Error)
			continue
		}
		if len(r.Records) == 0 {
			fmt.Fprintf(&sb, "%s\tnone\n", r.Source)
			continue
		}
		for _, rec := range r.Records {
			typ := "-"
			if !rec.Content.IsEmpty() {
				typ = rec.Content.Type.String()
			}
			value := rec.DisplayValue
			if value == "" {
				value = rec.RawValue
			}
			fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", r.Source, formatName(rec.Format), typ, value)
		}
	}
	return sb.String()
}

// FormatResults renders frame reports in the named output format.
func FormatResults(results []FrameResult, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", OutputJSON:
		return ToJSONResults(results)
	case OutputYAML:
		return ToYAMLResults(results)
	case OutputText:
		return ToPlainText(results), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatName(code int) string {
	if f, ok := barcode.LookupFormat(code); ok {
		return f.String()
	}
	return barcode.FormatUnknown.String()
}

// ValidateRecord performs simple consistency checks on a record.
func ValidateRecord(r BarcodeRecord) error {
	if r.CornerPoints == nil {
		return errors.New("corner points must not be nil")
	}
	if _, ok := barcode.LookupFormat(r.Format); !ok && r.Format != barcode.FormatUnknown.Code() {
		return fmt.Errorf("unknown format code %d", r.Format)
	}
	if !r.Content.IsEmpty() && r.Content.Type == content.TypeProduct {
		return errors.New("product content must be empty")
	}
	return nil
}

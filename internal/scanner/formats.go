package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/barcode"
)

// ErrMissingFormat reports that the caller supplied no usable format list:
// the argument was absent, not a list of integer codes, empty, or contained a
// code that names no supported symbology.
var ErrMissingFormat = errors.New("scanner: no barcode format provided")

// ParseFormats converts the caller's format argument into a FormatSet. Each
// element is either barcode.AllFormatsCode (0), expanding to every supported
// symbology, or the code of a single symbology. The result is the union.
func ParseFormats(arg any) (barcode.FormatSet, error) {
	codes, err := toCodes(arg)
	if err != nil {
		return 0, err
	}
	if len(codes) == 0 {
		return 0, fmt.Errorf("%w: empty format list", ErrMissingFormat)
	}
	var set barcode.FormatSet
	for _, code := range codes {
		if code == barcode.AllFormatsCode {
			set = set.Union(barcode.AllFormats())
			continue
		}
		f, ok := barcode.LookupFormat(code)
		if !ok {
			return 0, fmt.Errorf("%w: invalid format code %d", ErrMissingFormat, code)
		}
		set = set.Union(barcode.NewFormatSet(f))
	}
	return set, nil
}

// ParseFormatNames converts symbology names ("qr", "ean13", "all") into a
// FormatSet. It backs the CLI flag and the config file list.
func ParseFormatNames(names []string) (barcode.FormatSet, error) {
	var set barcode.FormatSet
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if strings.EqualFold(name, "all") {
				set = set.Union(barcode.AllFormats())
				continue
			}
			f, ok := barcode.ParseFormatName(name)
			if !ok {
				return 0, fmt.Errorf("%w: unknown format %q", ErrMissingFormat, name)
			}
			set = set.Union(barcode.NewFormatSet(f))
		}
	}
	if set.IsEmpty() {
		return 0, fmt.Errorf("%w: empty format list", ErrMissingFormat)
	}
	return set, nil
}

// CodesOf returns the wire codes of the set's members, for hosts that build
// the per-frame argument list from a FormatSet.
func CodesOf(set barcode.FormatSet) []int {
	fs := set.Formats()
	codes := make([]int, len(fs))
	for i, f := range fs {
		codes[i] = f.Code()
	}
	return codes
}

func toCodes(arg any) ([]int, error) {
	switch v := arg.(type) {
	case nil:
		return nil, fmt.Errorf("%w: argument absent", ErrMissingFormat)
	case []int:
		return v, nil
	case []int32:
		out := make([]int, len(v))
		for i, c := range v {
			out[i] = int(c)
		}
		return out, nil
	case []int64:
		out := make([]int, len(v))
		for i, c := range v {
			out[i] = int(c)
		}
		return out, nil
	case []float64:
		out := make([]int, len(v))
		for i, c := range v {
			code, err := codeOf(c)
			if err != nil {
				return nil, err
			}
			out[i] = code
		}
		return out, nil
	case []barcode.Format:
		out := make([]int, len(v))
		for i, f := range v {
			out[i] = f.Code()
		}
		return out, nil
	case []any:
		out := make([]int, len(v))
		for i, e := range v {
			code, err := codeOf(e)
			if err != nil {
				return nil, err
			}
			out[i] = code
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of format codes, got %T", ErrMissingFormat, arg)
	}
}

func codeOf(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case barcode.Format:
		return n.Code(), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("%w: non-integral format code %v", ErrMissingFormat, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrMissingFormat, err)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("%w: non-numeric format code %v (%T)", ErrMissingFormat, v, v)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/pdf"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
	"github.com/MeKo-Tech/framescan/internal/utils"
	"github.com/MeKo-Tech/framescan/internal/version"
)

const formatOverlay = "overlay"

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// formatsHandler lists the symbologies the scanner can be configured for.
func (s *Server) formatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	supported := barcode.SupportedFormats()
	decodable := barcode.DecodableFormats()
	list := make([]FormatInfo, len(supported))
	for i, f := range supported {
		list[i] = FormatInfo{Name: f.String(), Code: f.Code(), Decodable: decodable.Has(f)}
	}
	s.writeJSON(w, http.StatusOK, FormatsResponse{Formats: list, Count: len(list)})
}

// scanHandler scans a single uploaded frame. The frame is sent as multipart
// field "frame"; "formats", "checkInverted", "deviceOrientation" and
// "interfaceOrientation" override the server defaults for this request.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.parseUpload(w, r) {
		return
	}

	file, header, err := r.FormFile("frame")
	if err != nil {
		s.writeErrorResponse(w, "No frame provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read frame data", http.StatusInternalServerError)
		return
	}
	img, _, err := utils.DecodeImage(data)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	args, err := s.requestArgs(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	provider, err := s.requestOrientation(r.FormValue("deviceOrientation"), r.FormValue("interfaceOrientation"))
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res := s.processor.ForOrientation(provider).Process(ctx, frame.NewImageFrame(img), args)
	if res.Err != nil {
		s.writeErrorResponse(w, res.Err.Error(), statusFor(res.Err))
		return
	}

	if requestFormat(r) == formatOverlay {
		ov := pipeline.RenderOverlay(img, res.Records, orientation.ResolveFrom(provider), s.overlayColor)
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, ov); err != nil {
			s.logger.Error("Failed to encode overlay", "error", err)
		}
		return
	}

	b := img.Bounds()
	s.writeJSON(w, http.StatusOK, ScanResponse{
		Success: true,
		Records: res.Records,
		Width:   b.Dx(),
		Height:  b.Dy(),
	})
}

// scanPDFHandler scans every image embedded in an uploaded PDF (multipart
// field "pdf"). "pages" selects a page range and "password" unlocks
// encrypted documents.
func (s *Server) scanPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.parseUpload(w, r) {
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	args, err := s.requestArgs(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	provider, err := s.requestOrientation(r.FormValue("deviceOrientation"), r.FormValue("interfaceOrientation"))
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	path, cleanup, err := saveUpload(file, header.Filename)
	if err != nil {
		s.writeErrorResponse(w, "Failed to store PDF", http.StatusInternalServerError)
		return
	}
	defer cleanup()

	var creds *pdf.PasswordCredentials
	if pw := r.FormValue("password"); pw != "" {
		creds = &pdf.PasswordCredentials{UserPassword: pw, OwnerPassword: pw}
	}
	sources, err := pdf.Sources(path, r.FormValue("pages"), creds)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if pdf.IsPasswordError(err) {
			status = http.StatusUnauthorized
		}
		s.writeErrorResponse(w, fmt.Sprintf("PDF extraction failed: %v", err), status)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	results := s.processor.ForOrientation(provider).ProcessAll(ctx, sources, args, pipeline.DefaultParallelConfig())
	if err := ctx.Err(); err != nil {
		s.writeErrorResponse(w, "PDF scan timed out", http.StatusGatewayTimeout)
		return
	}

	s.writeJSON(w, http.StatusOK, DocumentResponse{
		Success: true,
		File:    filepath.Base(header.Filename),
		Frames:  results,
	})
}

// parseUpload limits the body to the configured size and parses the
// multipart form. It writes the error response and returns false on failure.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return false
	}
	return true
}

// requestArgs builds the per-frame arguments from the form. An absent
// "formats" field uses the server's formats; a present but empty one is passed
// through and rejected by the processor. Formats are either numeric wire
// codes or symbology names.
func (s *Server) requestArgs(r *http.Request) ([]any, error) {
	opts := pipeline.Options{CheckInverted: s.checkInverted}
	if v := r.FormValue("checkInverted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid checkInverted value %q", v)
		}
		opts.CheckInverted = b
	}

	values, ok := r.Form["formats"]
	if !ok {
		return pipeline.Args(s.formats, opts), nil
	}
	codes, err := parseFormatField(values)
	if err != nil {
		return nil, err
	}
	return []any{codes, map[string]any{"checkInverted": opts.CheckInverted}}, nil
}

func parseFormatField(values []string) ([]int, error) {
	var tokens []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
	}

	codes := make([]int, 0, len(tokens))
	for _, t := range tokens {
		n, err := strconv.Atoi(t)
		if err != nil {
			set, err := scanner.ParseFormatNames(tokens)
			if err != nil {
				return nil, err
			}
			return scanner.CodesOf(set), nil
		}
		codes = append(codes, n)
	}
	return codes, nil
}

// requestOrientation overlays the reported orientation on the server default.
func (s *Server) requestOrientation(device, iface string) (orientation.StaticProvider, error) {
	p := s.orientation
	if device != "" {
		d, err := orientation.ParseDevice(device)
		if err != nil {
			return p, err
		}
		p.DeviceOrientation = d
	}
	if iface != "" {
		i, err := orientation.ParseInterface(iface)
		if err != nil {
			return p, err
		}
		p.InterfaceOrientation = i
	}
	return p, nil
}

func requestFormat(r *http.Request) string {
	if f := r.FormValue("format"); f != "" {
		return strings.ToLower(f)
	}
	return strings.ToLower(r.URL.Query().Get("format"))
}

// statusFor maps a frame failure to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scanner.ErrMissingFormat):
		return http.StatusBadRequest
	case errors.Is(err, frame.ErrBufferAccess), errors.Is(err, frame.ErrRasterize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// saveUpload copies an uploaded document into a private temporary directory,
// keeping its base name so extracted images and sources are named after it.
func saveUpload(src io.Reader, filename string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "framescan-upload-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload.pdf"
	}
	path := filepath.Join(dir, name)
	dst, err := os.Create(path) //nolint:gosec // path is inside our temp dir
	if err != nil {
		cleanup()
		return "", func() {}, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		cleanup()
		return "", func() {}, err
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return path, cleanup, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

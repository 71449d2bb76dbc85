// Package pdf turns the images embedded in a PDF document into frames for
// the barcode pipeline.
package pdf

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/utils"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageImage is one embedded image of a page.
type PageImage struct {
	Page  int
	Index int
	Image image.Image
}

// ExtractImages extracts the embedded images of the selected pages using
// pdfcpu. An empty pageRange selects all pages. Images are ordered by page
// and then by their position in the extraction output.
func ExtractImages(filename string, pageRange string) ([]PageImage, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "pdf-extract-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var pageStrings []string
	if len(pageNumbers) > 0 {
		pageStrings = make([]string, len(pageNumbers))
		for i, pageNum := range pageNumbers {
			pageStrings[i] = strconv.Itoa(pageNum)
		}
	}

	if err := api.ExtractImagesFile(filename, tempDir, pageStrings, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	images, err := collectExtractedImages(tempDir, base)
	if err != nil {
		return nil, fmt.Errorf("failed to process extracted images: %w", err)
	}
	return images, nil
}

// Sources extracts the images of a document as named pipeline sources, one
// per embedded image. Encrypted documents are decrypted with creds first.
func Sources(filename, pageRange string, creds *PasswordCredentials) ([]pipeline.Source, error) {
	working, cleanup, err := Decrypt(filename, creds)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	images, err := ExtractImages(working, pageRange)
	if err != nil {
		return nil, err
	}
	slog.Debug("Extracted PDF images", "file", filename, "images", len(images))

	name := filepath.Base(filename)
	sources := make([]pipeline.Source, len(images))
	for i, pi := range images {
		sources[i] = pipeline.Source{
			Name:  fmt.Sprintf("%s#page=%d&image=%d", name, pi.Page, pi.Index),
			Frame: frame.NewImageFrame(pi.Image),
		}
	}
	return sources, nil
}

type extractedFile struct {
	page int
	name string
	path string
}

// collectExtractedImages reads the images pdfcpu wrote to dir. Files that do
// not carry a page number or cannot be decoded are skipped.
func collectExtractedImages(dir, base string) ([]PageImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]extractedFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		page, err := parsePageFromFilename(base, e.Name())
		if err != nil {
			continue
		}
		files = append(files, extractedFile{page: page, name: e.Name(), path: filepath.Join(dir, e.Name())})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].page != files[j].page {
			return files[i].page < files[j].page
		}
		return files[i].name < files[j].name
	})

	out := make([]PageImage, 0, len(files))
	index := map[int]int{}
	for _, f := range files {
		img, _, err := utils.LoadImage(f.path)
		if err != nil || img == nil {
			slog.Debug("Skipping unreadable PDF image", "file", f.name, "error", err)
			continue
		}
		index[f.page]++
		out = append(out, PageImage{Page: f.page, Index: index[f.page], Image: img})
	}
	return out, nil
}

// parsePageFromFilename extracts the page number from an extracted image name.
// pdfcpu names images <base>_<page>[_<resource>].<ext>, with the page number
// possibly zero padded; page_<page>_image_<n>.<ext> is accepted as well.
func parsePageFromFilename(base, filename string) (int, error) {
	var rest string
	switch {
	case base != "" && strings.HasPrefix(filename, base+"_"):
		rest = strings.TrimPrefix(filename, base+"_")
	case strings.HasPrefix(filename, "page_"):
		rest = strings.TrimPrefix(filename, "page_")
	default:
		return 0, errors.New("not a page image")
	}

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, errors.New("invalid page number")
	}
	if end < len(rest) && rest[end] != '_' && rest[end] != '.' {
		return 0, errors.New("invalid filename format")
	}
	return strconv.Atoi(rest[:end])
}

// parsePageRange parses a page range string like "1-5" or "1,3,5".
func parsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}

package support

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
	"github.com/MeKo-Tech/framescan/internal/server"
	"github.com/cucumber/godog"
)

// RegisterServerSteps registers the steps that drive the HTTP API.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the framescan server is running$`, testCtx.theServerIsRunning)
	sc.Step(`^the framescan server is running with default formats "([^"]*)"$`, testCtx.theServerIsRunningWithFormats)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)"$`, testCtx.iUpload)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)" with formats "([^"]*)"$`, testCtx.iUploadWithFormats)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response should contain '([^']*)'$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response should not contain "([^"]*)"$`, testCtx.theResponseShouldNotContain)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
}

func (testCtx *TestContext) theServerIsRunning() error {
	return testCtx.startServer(barcode.AllFormats())
}

func (testCtx *TestContext) theServerIsRunningWithFormats(names string) error {
	formats, err := scanner.ParseFormatNames(strings.Split(names, ","))
	if err != nil {
		return err
	}
	return testCtx.startServer(formats)
}

func (testCtx *TestContext) startServer(formats barcode.FormatSet) error {
	processor := pipeline.NewProcessor(
		pipeline.WithCache(scanner.NewCache(barcode.NewEngine(barcode.EngineOptions{}))),
	)
	srv, err := server.NewServer(server.Config{Formats: formats, TimeoutSec: 10}, processor)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	testCtx.Server = httptest.NewServer(mux)
	return nil
}

func (testCtx *TestContext) iGET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, testCtx.serverURL(path), nil)
	if err != nil {
		return err
	}
	return testCtx.do(req)
}

func (testCtx *TestContext) iUpload(name, path string) error {
	return testCtx.upload(name, path, nil)
}

func (testCtx *TestContext) iUploadWithFormats(name, path, formats string) error {
	return testCtx.upload(name, path, map[string]string{"formats": formats})
}

func (testCtx *TestContext) upload(name, path string, fields map[string]string) error {
	data, err := os.ReadFile(testCtx.path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	field := "frame"
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		field = "pdf"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filepath.Base(name))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, testCtx.serverURL(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return testCtx.do(req)
}

func (testCtx *TestContext) serverURL(path string) string {
	return testCtx.Server.URL + path
}

func (testCtx *TestContext) do(req *http.Request) error {
	if testCtx.Server == nil {
		return fmt.Errorf("server is not running")
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(code string) error {
	want, err := strconv.Atoi(code)
	if err != nil {
		return err
	}
	if testCtx.LastHTTPStatusCode != want {
		return fmt.Errorf("expected status %d, got %d\nbody: %s", want, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain %q\nbody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response contains %q\nbody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != value {
		return fmt.Errorf("expected header %s to be %q, got %q", name, value, got)
	}
	return nil
}

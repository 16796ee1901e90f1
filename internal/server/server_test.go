package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/klytics/slidetext/internal/formats/pptx"
	"github.com/klytics/slidetext/internal/formats/pptx/pptxtest"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.UploadDir == "" {
		opts.UploadDir = t.TempDir()
	}
	return New(opts, pptx.NewExtractor(pptx.Options{}, zerolog.Nop()), zerolog.Nop())
}

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "deck.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/ppt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func samplePackage(t *testing.T) []byte {
	t.Helper()
	data, err := pptxtest.Build(map[string]string{
		pptx.SlidePartPath(2):   pptxtest.Slide(pptxtest.Paragraphs([]string{"Results"}) + pptxtest.ChartRef("rId3")),
		pptx.SlideRelsPath(2):   pptxtest.Rels(map[string]string{"rId3": "../charts/chart2.xml"}),
		"ppt/charts/chart2.xml": pptxtest.Chart([]string{"Q1 Revenue"}),
		pptx.SlidePartPath(1):   pptxtest.Slide(pptxtest.Paragraphs([]string{"Hello ", "World"}, []string{"Second"})),
	})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp upload not removed: %d entries left in %s", len(entries), dir)
	}
}

func TestExtractEndpoint(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, Options{UploadDir: dir})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, UploadField, samplePackage(t)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got []pptx.SlideRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 slides, got %+v", got)
	}
	if got[0].Slide != 1 || strings.Join(got[0].Texts, "|") != "Hello World|Second" {
		t.Errorf("slide 1 = %+v", got[0])
	}
	if got[1].Slide != 2 || strings.Join(got[1].Texts, "|") != "Results|Q1 Revenue" {
		t.Errorf("slide 2 = %+v", got[1])
	}
	assertDirEmpty(t, dir)
}

func TestExtractEndpointInvalidPackage(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, Options{UploadDir: dir})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, UploadField, []byte("definitely not a zip")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Error, "ZIP") {
		t.Errorf("error = %q", resp.Error)
	}
	assertDirEmpty(t, dir)
}

func TestExtractEndpointMissingField(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "file", samplePackage(t)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestExtractEndpointTooLarge(t *testing.T) {
	srv := newTestServer(t, Options{MaxUploadBytes: 64})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, UploadField, samplePackage(t)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestExtractEndpointMethod(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ppt", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, Options{CORSOrigins: []string{"https://app.example.com"}})
	req := httptest.NewRequest(http.MethodOptions, "/ppt", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	srv := newTestServer(t, Options{Addr: addr, ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// Package server exposes slide text extraction over HTTP.
//
// POST /ppt takes a multipart upload in the "ppt" field and answers with the
// JSON array [{"slide":1,"texts":["..."]}]. Failures answer {"error":"..."}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

// UploadField is the multipart form field carrying the presentation.
const UploadField = "ppt"

// Options configures a Server.
type Options struct {
	Addr            string
	MaxUploadBytes  int64
	UploadDir       string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Server is the HTTP front end of an Extractor.
type Server struct {
	opts    Options
	ext     *pptx.Extractor
	log     zerolog.Logger
	handler http.Handler
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds a Server. The extractor is shared by all requests.
func New(opts Options, ext *pptx.Extractor, log zerolog.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{opts: opts, ext: ext, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ppt", s.handleExtract)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	})
	s.handler = s.logRequests(c.Handler(mux))
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down cleanly: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.opts.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.opts.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	file, header, err := r.FormFile(UploadField)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.opts.MaxUploadBytes))
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing %q file field", UploadField))
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("could not read upload: %v", err))
		}
		return
	}
	defer file.Close()

	path, err := s.spool(file)
	if path != "" {
		defer s.removeTemp(path)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("could not store upload")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slides, err := s.extract(r.Context(), path)
	if err != nil {
		s.log.Warn().Err(err).Str("file", header.Filename).Msg("extraction failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Debug().Str("file", header.Filename).Int("slides", len(slides)).Msg("extracted")
	writeJSON(w, http.StatusOK, slides)
}

// spool copies the upload to a temp file. The returned path, when not
// empty, must be removed by the caller even if err is set.
func (s *Server) spool(src io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.opts.UploadDir, "upload-*.pptx")
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w", err)
	}
	path := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return path, fmt.Errorf("could not store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return path, fmt.Errorf("could not store upload: %w", err)
	}
	return path, nil
}

func (s *Server) extract(ctx context.Context, path string) ([]pptx.SlideRecord, error) {
	pkg, err := pptx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()

	slides, err := s.ext.ExtractAll(ctx, pkg)
	if err != nil {
		return nil, err
	}
	if slides == nil {
		slides = []pptx.SlideRecord{}
	}
	return slides, nil
}

func (s *Server) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("path", path).Msg("could not remove temp upload")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

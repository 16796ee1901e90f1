// Package pptx extracts slide text from .pptx (PowerPoint) packages, including
// text held in SmartArt diagram and chart parts that a slide references through
// its relationship manifest.
package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrPartNotFound is returned by Package.ReadPart when no part exists at the path.
var ErrPartNotFound = errors.New("part not found")

// Package is a read-only view of the parts inside a presentation container.
type Package interface {
	// PartPaths lists every part path in the container.
	PartPaths() []string
	// ReadPart returns the decoded text of one part, or ErrPartNotFound.
	ReadPart(path string) (string, error)
}

// ZipPackage is a Package backed by a zip archive.
type ZipPackage struct {
	files  map[string]*zip.File
	paths  []string
	closer io.Closer
}

// OpenFile opens the .pptx file at path. The caller must Close it.
func OpenFile(path string) (*ZipPackage, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s — check that the path is correct: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("invalid .pptx file — the file does not appear to be a valid ZIP archive: %w", err)
	}
	return newZipPackage(&rc.Reader, rc), nil
}

// Open opens a .pptx package held in memory.
func Open(data []byte) (*ZipPackage, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid .pptx file — the file does not appear to be a valid ZIP archive: %w", err)
	}
	return newZipPackage(r, nil), nil
}

func newZipPackage(r *zip.Reader, closer io.Closer) *ZipPackage {
	p := &ZipPackage{
		files:  make(map[string]*zip.File, len(r.File)),
		closer: closer,
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := p.files[f.Name]; dup {
			continue
		}
		p.files[f.Name] = f
		p.paths = append(p.paths, f.Name)
	}
	sort.Strings(p.paths)
	return p
}

// PartPaths returns the part paths in lexical order.
func (p *ZipPackage) PartPaths() []string {
	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

// ReadPart reads and decodes one part. It is safe for concurrent use.
func (p *ZipPackage) ReadPart(path string) (string, error) {
	f, ok := p.files[path]
	if !ok {
		return "", ErrPartNotFound
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}
	return decodePart(data)
}

// Close releases the underlying file, if any.
func (p *ZipPackage) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// decodePart converts part bytes to UTF-8. A UTF-16 or UTF-8 byte order mark
// selects the encoding; without one the bytes are taken as UTF-8.
func decodePart(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("could not decode part: %w", err)
	}
	return string(out), nil
}

// MemPackage is an in-memory Package keyed by part path.
type MemPackage map[string]string

// PartPaths returns the part paths in lexical order.
func (m MemPackage) PartPaths() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ReadPart returns the part text or ErrPartNotFound.
func (m MemPackage) ReadPart(path string) (string, error) {
	s, ok := m[path]
	if !ok {
		return "", ErrPartNotFound
	}
	return s, nil
}

package core

// source.go reads trajectory files into decoded text.
//
// Notebook exports arrive from every platform, so readers handle the usual
// encoding noise without the parser having to care:
//
//   - a leading BOM (UTF-8, or UTF-16 from some Windows tools) is removed
//     and selects the decoding
//   - invalid UTF-8 sequences become U+FFFD
//   - input larger than the configured limit is rejected, not truncated

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxSourceSize bounds a single source at 50MB.
const DefaultMaxSourceSize int64 = 50 * 1024 * 1024

// Source produces the CSV text of one import.
type Source interface {
	// Name identifies the source in logs, events and errors.
	Name() string
	// Read returns the decoded content.
	Read(ctx context.Context) (string, error)
}

type textSource struct {
	name    string
	content string
}

// TextSource wraps CSV text that is already in memory.
func TextSource(name, content string) Source {
	if name == "" {
		name = "inline"
	}
	return &textSource{name: name, content: content}
}

func (s *textSource) Name() string { return s.name }

func (s *textSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimPrefix(s.content, "\ufeff"), nil
}

type failedSource struct {
	name string
	err  error
}

// FailedSource is a source whose Read returns err. Transports use it for a
// body that could not be received, so the failure is recorded by Import
// like any other.
func FailedSource(name string, err error) Source {
	return &failedSource{name: name, err: err}
}

func (s *failedSource) Name() string { return s.name }

func (s *failedSource) Read(context.Context) (string, error) { return "", s.err }

type readerSource struct {
	name  string
	r     io.Reader
	limit int64
}

// ReaderSource reads at most limit bytes from r. A non-positive limit
// means DefaultMaxSourceSize. The reader is consumed by the first Read.
func ReaderSource(name string, r io.Reader, limit int64) Source {
	if limit <= 0 {
		limit = DefaultMaxSourceSize
	}
	return &readerSource{name: name, r: r, limit: limit}
}

func (s *readerSource) Name() string { return s.name }

func (s *readerSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return decode(s.name, s.r, s.limit)
}

type fileSource struct {
	path  string
	limit int64
}

// FileSource reads the file at path, rejecting files over limit bytes.
func FileSource(path string, limit int64) Source {
	if limit <= 0 {
		limit = DefaultMaxSourceSize
	}
	return &fileSource{path: path, limit: limit}
}

func (s *fileSource) Name() string { return filepath.Base(s.path) }

func (s *fileSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return "", &ReadError{Source: s.Name(), Err: err}
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > s.limit {
		return "", &SourceTooLargeError{Source: s.Name(), Limit: s.limit}
	}

	return decode(s.Name(), f, s.limit)
}

// decode reads r through a BOM-aware UTF-8 decoder.
func decode(name string, r io.Reader, limit int64) (string, error) {
	if r == nil {
		return "", &ReadError{Source: name, Err: fmt.Errorf("nil reader")}
	}

	// One byte past the limit tells "exactly limit" from "too large".
	limited := io.LimitReader(r, limit+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return "", &ReadError{Source: name, Err: err}
	}
	if int64(len(raw)) > limit {
		return "", &SourceTooLargeError{Source: name, Limit: limit}
	}

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", &ReadError{Source: name, Err: fmt.Errorf("decode: %w", err)}
	}
	return string(text), nil
}

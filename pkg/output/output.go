// Package output writes generated documents to disk and checks existing
// files against freshly generated bytes.
package output

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// ErrStale is returned by Check when a file on disk differs from what the
// generator would write.
var ErrStale = errors.New("output is stale")

// Document is one file the generator produces.
type Document struct {
	Name string
	Data []byte
}

// Digest returns the hex BLAKE3 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Compress returns data as a single zstd frame.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer enc.Close() //nolint:errcheck // EncodeAll does not need Close to flush
	return enc.EncodeAll(data, nil), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

// Writer writes documents into a directory.
type Writer struct {
	logger *slog.Logger
	dir    string
}

// NewWriter returns a writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// Path returns where a document named name is written.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Write stores every document, each through a temporary file and a rename
// so readers never see a partial file.
func (w *Writer) Write(docs ...Document) error {
	for _, doc := range docs {
		path := w.Path(doc.Name)
		if err := writeAtomic(path, doc.Data); err != nil {
			return err
		}
		w.logger.Info("wrote document", "path", path, "bytes", len(doc.Data), "blake3", Digest(doc.Data))
	}
	return nil
}

// Check compares every document with the file on disk and reports each one
// that is missing or different.
func (w *Writer) Check(docs ...Document) error {
	var errs []error
	for _, doc := range docs {
		path := w.Path(doc.Name)
		existing, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("%w: %s does not exist", ErrStale, path))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		if !bytes.Equal(existing, doc.Data) {
			errs = append(errs, fmt.Errorf("%w: %s has blake3 %s, generated %s", ErrStale, path, Digest(existing), Digest(doc.Data)))
			continue
		}
		w.logger.Debug("document up to date", "path", path)
	}
	return errors.Join(errs...)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // generated assets are public
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

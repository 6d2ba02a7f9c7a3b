// Package ziparchive adapts github.com/yeka/zip for the engine's full validator:
// given the archive bytes and the entry the locator (internal/archive) chose, it
// decrypts and decompresses a candidate password's attempt and reports whether the
// stream read to EOF without a checksum or decompression error.
package ziparchive

import (
	"bytes"
	"fmt"
	"io"

	yzip "github.com/yeka/zip"

	"zipcrack/internal/archive"
	"zipcrack/internal/zcerr"
)

// Handle binds the archive bytes to the single entry the locator selected. It holds
// no mutable state itself; each goroutine must call NewWorker for its own handle.
type Handle struct {
	zipBytes []byte
	name     string
}

// NewHandle validates that hdr's entry can be opened by the underlying library and
// uses a compression method this engine supports.
func NewHandle(zipBytes []byte, hdr *archive.Header) (*Handle, error) {
	if hdr.Method != archive.CompressionStored && hdr.Method != archive.CompressionDeflate {
		return nil, fmt.Errorf("entry %q: method %d: %w", hdr.Name, hdr.Method, zcerr.ErrUnsupportedCompression)
	}
	zr, err := yzip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", zcerr.ErrTruncatedArchive)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == hdr.Name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("entry %q: %w", hdr.Name, zcerr.ErrNoEncryptedEntry)
	}
	return &Handle{zipBytes: zipBytes, name: hdr.Name}, nil
}

// Worker is a per-goroutine handle with its own *yzip.File, since yzip.File's
// SetPassword/Open are not safe to call concurrently on a shared instance.
type Worker struct {
	file *yzip.File
}

// NewWorker opens a fresh reader over the same archive bytes and resolves the
// target entry again, so each worker goroutine gets an independent *yzip.File.
func (h *Handle) NewWorker() (*Worker, error) {
	zr, err := yzip.NewReader(bytes.NewReader(h.zipBytes), int64(len(h.zipBytes)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name == h.name {
			return &Worker{file: f}, nil
		}
	}
	return nil, fmt.Errorf("entry %q vanished between scans", h.name)
}

// Verify attempts to decrypt and fully decompress the entry with password, forcing
// the underlying reader to validate the stored CRC-32 against the decompressed
// bytes. Any error (wrong password, checksum mismatch, decompression failure) is
// reported as a simple false: a candidate is rejected rather than surfaced as an
// error.
func (w *Worker) Verify(password string) bool {
	w.file.SetPassword(password)
	rc, err := w.file.Open()
	if err != nil {
		return false
	}
	_, copyErr := io.Copy(io.Discard, rc)
	closeErr := rc.Close()
	return copyErr == nil && closeErr == nil
}

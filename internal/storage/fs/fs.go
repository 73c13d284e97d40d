package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage is the blob store: opaque handle in, bytes out. Handles are
// store-assigned and never contain path components.
type Storage struct {
	rootPath string
}

func New(rootPath string) (*Storage, error) {
	// Use filepath.Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// blobPath shards blobs by handle prefix to keep directories small.
func (s *Storage) blobPath(handle string) string {
	name := filepath.Base(filepath.Clean(handle)) // strip any path shenanigans
	shard := "00"
	if len(name) >= 2 {
		shard = name[:2]
	}
	return filepath.Join(s.rootPath, shard, name)
}

// Save writes a blob under its handle and returns the byte count.
func (s *Storage) Save(handle string, data io.Reader) (int64, error) {
	fullPath := s.blobPath(handle)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create shard directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, data)
	if err != nil {
		os.Remove(fullPath) // Best effort, ignore error here.
		return 0, fmt.Errorf("failed to copy file data: %w", err)
	}

	return n, nil
}

func (s *Storage) Read(handle string) (io.ReadCloser, error) {
	file, err := os.Open(s.blobPath(handle))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (s *Storage) Delete(handle string) error {
	err := os.Remove(s.blobPath(handle))
	if err != nil && !os.IsNotExist(err) {
		// Already-gone is fine, anything else is not
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

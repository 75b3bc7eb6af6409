// Package asset manages the uploaded image files backing content records.
// Files live in a flat public directory; records reference them by stored
// filename only.  File writes and database writes are not transactional:
// the caller writes files first, inserts second, and compensates by removing
// the files when the insert fails.
package asset

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andikasp/desa-wisata-api/internal/model"
)

// Upload validation failures.  All of them map to 400 at the HTTP boundary.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrTooManyFiles        = errors.New("too many files")
)

const (
	// MaxFileSize is the per-file upload cap.
	MaxFileSize = 5 << 20 // 5 MiB
	// MaxFileCount is the per-request upload cap.
	MaxFileCount = 10
)

// allowedExts is the image extension allow-list.  The extension decides the
// stored filename; the Content-Type header is checked as well but never
// trusted for naming.
var allowedExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store writes and removes image files under a single directory.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir.  The directory is created lazily
// on the first write.
func NewStore(dir string) *Store { return &Store{Dir: dir} }

// Save validates one uploaded file and writes it to the asset directory
// under a collision-resistant name (field name, nanosecond timestamp, the
// original extension).  It returns the stored filename.
func (s *Store) Save(fh *multipart.FileHeader, field string) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		return "", ErrUnsupportedFileType
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", ErrUnsupportedFileType
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%s-%d%s", field, time.Now().UnixNano(), ext)
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// SaveAll validates and writes a batch of uploaded files in order.  On any
// failure the files already written by this call are removed before the
// error is returned, so a rejected batch leaves nothing on disk.
func (s *Store) SaveAll(fhs []*multipart.FileHeader, field string) ([]string, error) {
	if len(fhs) > MaxFileCount {
		return nil, ErrTooManyFiles
	}
	names := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		name, err := s.Save(fh, field)
		if err != nil {
			s.Remove(ToImageRefs(names))
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// ToImageRefs converts stored filenames into ImageRefs with sequential
// 1-based ids matching upload order.
func ToImageRefs(names []string) []model.ImageRef {
	refs := make([]model.ImageRef, len(names))
	for i, n := range names {
		refs[i] = model.ImageRef{ID: i + 1, Dir: n}
	}
	return refs
}

// Remove unlinks each referenced file, best effort.  A missing file is not
// an error and a filesystem failure is logged rather than returned, so
// cleanup never aborts the surrounding request.
func (s *Store) Remove(refs []model.ImageRef) {
	for _, ref := range refs {
		if ref.Dir == "" {
			continue
		}
		// Uploads are flat filenames; strip any path a stale record carries.
		path := filepath.Join(s.Dir, filepath.Base(ref.Dir))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("asset: remove %s failed: %v", path, err)
		}
	}
}

// Package upload validates and stores user-supplied files on local disk.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"market/config"
	domainerrors "market/internal/domain/errors"
	"market/internal/errors"
	"market/internal/util"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/files"

// StoredFile describes a file accepted by Storage.
type StoredFile struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Checksum     string `json:"checksum"`
}

// ValidateFileType reports whether filename has one of the allowed extensions.
func ValidateFileType(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}

	return slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(a, ext)
	})
}

// ValidateFileSize reports whether size is positive and within max bytes.
func ValidateFileSize(size, max int64) bool {
	return size > 0 && size <= max
}

// UniqueFilename returns "<unix seconds>_<uuid><ext>" keeping the original extension.
func UniqueFilename(original string, now time.Time) string {
	return fmt.Sprintf("%d_%s%s", now.Unix(), uuid.NewString(), strings.ToLower(filepath.Ext(original)))
}

// Storage writes validated files under a single directory.
type Storage struct {
	dir     string
	maxSize int64
	allowed []string
	now     func() time.Time
}

// NewStorage builds a Storage from the upload configuration.
func NewStorage(cfg *config.Config) *Storage {
	return &Storage{
		dir:     cfg.Upload.Dir,
		maxSize: cfg.Upload.MaxFileSize,
		allowed: cfg.Upload.AllowedExtensions,
		now:     time.Now,
	}
}

// Dir returns the directory files are written to.
func (s *Storage) Dir() string {
	return s.dir
}

// Save validates the file name and size, then copies r to a uniquely named file.
func (s *Storage) Save(ctx context.Context, filename string, size int64, r io.Reader) (*StoredFile, error) {
	if !ValidateFileType(filename, s.allowed) {
		return nil, domainerrors.ErrInvalidFile.WithDetails("file type not allowed: " + filepath.Ext(filename))
	}
	if !ValidateFileSize(size, s.maxSize) {
		return nil, domainerrors.ErrInvalidFile.WithDetails("file size must be between 1 byte and " + util.FormatBytes(s.maxSize))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}

	name := UniqueFilename(filename, s.now())
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create upload file")
	}
	defer f.Close()

	// Read one byte past the limit to detect bodies larger than declared.
	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		_ = os.Remove(path)

		return nil, errors.Wrap(err, "failed to write upload file")
	}
	if written > s.maxSize {
		_ = os.Remove(path)

		return nil, domainerrors.ErrInvalidFile.WithDetails("file exceeds " + util.FormatBytes(s.maxSize))
	}

	checksum, err := util.FileChecksum(path)
	if err != nil {
		return nil, err
	}

	return &StoredFile{
		Name:         name,
		OriginalName: filepath.Base(filename),
		URL:          PublicPrefix + "/" + name,
		Size:         written,
		Checksum:     checksum,
	}, nil
}

package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/gamehouse/models"
)

// ErrFileTooLarge and ErrNotImage reject uploads before anything is written.
var (
	ErrFileTooLarge = newError(KindValidation, 40004, "file exceeds the upload size limit")
	ErrNotImage     = newError(KindValidation, 40005, "only image uploads are accepted")
)

// BlobStore persists uploaded images and returns their public URL.
type BlobStore interface {
	Store(ctx context.Context, ownerID uint, filename string, r io.Reader) (*models.UploadedFile, error)
}

// DiskBlobStore writes images under a directory using the BLAKE3 digest of the
// content as file name, so identical uploads share one file.
type DiskBlobStore struct {
	db        *gorm.DB
	dir       string
	urlPrefix string
	maxBytes  int64
	log       *zap.Logger
}

// NewDiskBlobStore creates a DiskBlobStore rooted at dir and served under urlPrefix.
func NewDiskBlobStore(db *gorm.DB, dir, urlPrefix string, maxBytes int64, log *zap.Logger) *DiskBlobStore {
	return &DiskBlobStore{db: db, dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/"), maxBytes: maxBytes, log: log}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Store reads r fully (bounded by the size limit), validates it is an image
// and records the upload for ownerID.
func (s *DiskBlobStore) Store(ctx context.Context, ownerID uint, filename string, r io.Reader) (*models.UploadedFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, Validation("empty upload")
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return nil, ErrNotImage
	}

	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	name := digest + ext
	full := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if _, err := os.Stat(full); errors.Is(err, os.ErrNotExist) {
		if err := writeAtomic(full, data); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	rec := models.UploadedFile{
		OwnerID:  ownerID,
		Digest:   digest,
		FilePath: full,
		URL:      path.Join(s.urlPrefix, name),
		Size:     int64(len(data)),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	s.log.Info("upload stored", zap.Uint("owner", ownerID), zap.String("name", filename), zap.String("digest", digest), zap.Int64("size", rec.Size))
	return &rec, nil
}

func writeAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

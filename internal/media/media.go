// Package media stores uploaded post images and hands back stable references.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yatube/yatube/pkg/logging"
)

// ErrNotImage is returned when an upload does not sniff as an image
var ErrNotImage = errors.New("upload a valid image")

// Store persists an uploaded image and returns its reference
type Store interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	URL(ref string) string
}

// LocalStore writes images below a root directory
type LocalStore struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewLocalStore creates a store rooted at root and served under baseURL
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{
		root:    root,
		baseURL: baseURL,
		logger:  logging.WithComponent("media"),
	}
}

// Save copies the upload to posts/<uuid><ext> under the root
func (s *LocalStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect upload type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	ref := path.Join("posts", uuid.NewString()+mtype.Extension())
	dst := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	s.logger.Info("Image stored",
		zap.String("ref", ref),
		zap.String("mime", mtype.String()),
		zap.Int64("size", file.Size))
	return ref, nil
}

// URL maps a reference to the public URL it is served from
func (s *LocalStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + ref
}

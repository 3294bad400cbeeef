// Package storage keeps uploaded product images for the stub backend.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// Allowed image types and the extension stored for each
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type PutResult struct {
	Key string
	URL string
}

// Local writes images to a directory served under URLPrefix.
type Local struct {
	BaseDir   string
	URLPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

// Put stores r under a random key. The extension comes from the sniffed
// content, never from the client's file name.
func (l *Local) Put(ctx context.Context, r io.Reader) (PutResult, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(3072)

	mtype := mimetype.Detect(head)
	ext, ok := imageExtensions[mtype.String()]
	if !ok {
		return PutResult{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return PutResult{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	key := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(l.BaseDir, key), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return PutResult{}, fmt.Errorf("failed to create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, br); err != nil {
		os.Remove(f.Name())
		return PutResult{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return PutResult{Key: key, URL: path.Join(l.URLPrefix, key)}, nil
}

// Delete removes a stored image by key or by the URL Put returned.
// Missing files are ignored.
func (l *Local) Delete(ctx context.Context, keyOrURL string) error {
	key := filepath.Base(strings.TrimPrefix(keyOrURL, l.URLPrefix))
	if key == "." || key == "/" || key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.BaseDir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// Dir returns the directory images are stored in
func (l *Local) Dir() string { return l.BaseDir }

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }

package resource

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is a binary attachment sent alongside a payload
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// NewFile wraps data as an attachment, sniffing the content type.
func NewFile(name string, data []byte) *File {
	return &File{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Content:     bytes.NewReader(data),
	}
}

// OpenFile reads the file at path into an attachment.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	return NewFile(filepath.Base(path), data), nil
}

package models

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// ImageFile is a picked image waiting to be uploaded.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *ImageFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// LoadImageFile reads path and sniffs its content type from the first bytes.
func LoadImageFile(path string) (*ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return &ImageFile{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

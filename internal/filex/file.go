// Package filex holds file helpers for the CLI: preparing the directory of
// the local database and reading files picked for upload.
package filex

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadSize caps files read by ReadUpload.
const MaxUploadSize = 50 << 20

var ErrTooLarge = errors.New("file too large")

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Upload is a file read from disk for upload.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadUpload reads path and guesses its content type from the extension,
// then from the content.
func ReadUpload(path string) (Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return Upload{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxUploadSize {
		return Upload{}, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}

	name := filepath.Base(path)
	return Upload{Name: name, ContentType: contentType(name, data), Data: data}, nil
}

func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize is the maximum accepted upload size in bytes.
const MaxUploadSize = 10 << 20 // 10 MB

// AllowedExtensions lists the file extensions accepted for upload.
var AllowedExtensions = []string{".txt", ".md", ".docx", ".pdf"}

// ValidateUpload checks an upload's original filename against the extension
// allow-list and returns the normalized file type (extension without dot).
func ValidateUpload(originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return strings.TrimPrefix(ext, "."), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
}

// SaveUpload streams an upload to dir under a random filename, preserving the
// original extension. At most MaxUploadSize bytes are accepted; larger
// uploads fail with ErrFileTooLarge and leave nothing behind. Returns the
// path of the stored file.
func SaveUpload(dir, originalName string, r io.Reader) (string, error) {
	if _, err := ValidateUpload(originalName); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(dir, uuid.New().String()+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	// Read one byte past the limit to detect oversized uploads.
	n, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if n > MaxUploadSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return path, nil
}

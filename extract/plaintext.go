package extract

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Plaintext extracts text from .txt and .md files.
// Content is passed through with line endings normalized to \n.
type Plaintext struct{}

// Extract returns the file content as UTF-8 text.
func (Plaintext) Extract(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrMalformedFile
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}

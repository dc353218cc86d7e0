// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package extract converts uploaded document files into plain text.
//
// Each supported format has its own Extractor implementation. ForType maps a
// file extension to an extractor; unsupported extensions fail with
// ErrUnsupportedFormat. All extractors consume raw bytes rather than paths so
// callers control file IO.
package extract

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnsupportedFormat indicates a file extension with no registered extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoText indicates the file was parsed but yielded no extractable text.
	ErrNoText = errors.New("no text extracted from document")

	// ErrMalformedFile indicates the file could not be parsed in its declared format.
	ErrMalformedFile = errors.New("malformed document file")
)

// Extractor converts a document file of a single format into plain text.
type Extractor interface {
	// Extract returns the plain-text content of the document bytes.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ForType returns the extractor for a file extension.
// The extension may be given with or without the leading dot and is
// matched case-insensitively.
func ForType(fileType string) (Extractor, error) {
	switch normalizeType(fileType) {
	case "txt", "md":
		return Plaintext{}, nil
	case "docx":
		return Docx{}, nil
	case "pdf":
		return PDF{}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Supported reports whether a file extension has a registered extractor.
func Supported(fileType string) bool {
	_, err := ForType(fileType)
	return err == nil
}

func normalizeType(fileType string) string {
	return strings.ToLower(strings.TrimPrefix(fileType, "."))
}

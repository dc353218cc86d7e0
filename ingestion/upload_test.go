package ingestion

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	t.Run("allowed extensions", func(t *testing.T) {
		for name, want := range map[string]string{
			"notes.txt":     "txt",
			"README.md":     "md",
			"report.docx":   "docx",
			"handbook.PDF":  "pdf",
			"dir/inner.txt": "txt",
		} {
			fileType, err := ValidateUpload(name)
			require.NoError(t, err, name)
			assert.Equal(t, want, fileType, name)
		}
	})

	t.Run("rejected extensions", func(t *testing.T) {
		for _, name := range []string{"virus.exe", "archive.zip", "noext", "image.png"} {
			_, err := ValidateUpload(name)
			assert.ErrorIs(t, err, ErrUnsupportedFileType, name)
		}
	})
}

func TestSaveUpload(t *testing.T) {
	t.Run("stores file under random name with original extension", func(t *testing.T) {
		dir := t.TempDir()

		path, err := SaveUpload(dir, "notes.txt", strings.NewReader("hello"))
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.Equal(t, ".txt", filepath.Ext(path))
		assert.NotEqual(t, "notes.txt", filepath.Base(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("rejects disallowed extension before writing", func(t *testing.T) {
		dir := t.TempDir()

		_, err := SaveUpload(dir, "script.sh", strings.NewReader("#!/bin/sh"))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects oversized upload and removes partial file", func(t *testing.T) {
		dir := t.TempDir()

		_, err := SaveUpload(dir, "big.txt", bytes.NewReader(make([]byte, MaxUploadSize+1)))
		assert.ErrorIs(t, err, ErrFileTooLarge)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("accepts upload at the size limit", func(t *testing.T) {
		dir := t.TempDir()

		path, err := SaveUpload(dir, "exact.txt", bytes.NewReader(make([]byte, MaxUploadSize)))
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.EqualValues(t, MaxUploadSize, info.Size())
	})
}

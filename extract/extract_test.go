package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForType(t *testing.T) {
	t.Run("known extensions", func(t *testing.T) {
		for _, ext := range []string{"txt", "md", "docx", "pdf"} {
			e, err := ForType(ext)
			require.NoError(t, err, ext)
			assert.NotNil(t, e, ext)
		}
	})

	t.Run("leading dot and case are ignored", func(t *testing.T) {
		e, err := ForType(".TXT")
		require.NoError(t, err)
		assert.IsType(t, Plaintext{}, e)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := ForType("exe")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(".md"))
	assert.False(t, Supported(".zip"))
}

func TestPlaintextExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("passes text through", func(t *testing.T) {
		text, err := Plaintext{}.Extract(ctx, []byte("hello world"))
		require.NoError(t, err)
		assert.Equal(t, "hello world", text)
	})

	t.Run("normalizes line endings", func(t *testing.T) {
		text, err := Plaintext{}.Extract(ctx, []byte("a\r\nb\rc"))
		require.NoError(t, err)
		assert.Equal(t, "a\nb\nc", text)
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		_, err := Plaintext{}.Extract(ctx, []byte{0xff, 0xfe, 0xfd})
		assert.ErrorIs(t, err, ErrMalformedFile)
	})
}

// buildDocx assembles a minimal Office Open XML file in memory.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDocxExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts paragraph text", func(t *testing.T) {
		data := buildDocx(t, `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
  </body>
</document>`)

		text, err := Docx{}.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
	})

	t.Run("rejects non-zip data", func(t *testing.T) {
		_, err := Docx{}.Extract(ctx, []byte("not a zip file"))
		assert.ErrorIs(t, err, ErrMalformedFile)
	})

	t.Run("rejects archive without document.xml", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create("other.txt")
		require.NoError(t, err)
		_, err = f.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		_, err = Docx{}.Extract(ctx, buf.Bytes())
		assert.ErrorIs(t, err, ErrMalformedFile)
	})

	t.Run("empty document yields ErrNoText", func(t *testing.T) {
		data := buildDocx(t, `<?xml version="1.0"?><document><body></body></document>`)

		_, err := Docx{}.Extract(ctx, data)
		assert.ErrorIs(t, err, ErrNoText)
	})
}

func TestPDFExtract(t *testing.T) {
	t.Run("rejects non-pdf data", func(t *testing.T) {
		_, err := PDF{}.Extract(context.Background(), []byte("definitely not a pdf"))
		assert.ErrorIs(t, err, ErrMalformedFile)
	})
}

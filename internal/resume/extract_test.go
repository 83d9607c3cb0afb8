package resume

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jiffyapply/internal/errors"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText_DOCX(t *testing.T) {
	data := buildDOCX(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Go</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve">Kubernetes</w:t></w:r></w:p>`)

	text, err := ExtractText(MIMEDOCX, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo\tKubernetes", text)
}

func TestExtractText_Failures(t *testing.T) {
	tests := []struct {
		name string
		mime string
		data []byte
		kind error
	}{
		{"empty docx", MIMEDOCX, buildDOCX(t, `<w:p><w:r><w:t>   </w:t></w:r></w:p>`), apperrors.ErrExtraction},
		{"docx without document", MIMEDOCX, func() []byte {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			_, _ = zw.Create("other.xml")
			_ = zw.Close()
			return buf.Bytes()
		}(), apperrors.ErrExtraction},
		{"not a zip", MIMEDOCX, []byte("plain text"), apperrors.ErrExtraction},
		{"broken pdf", MIMEPDF, []byte("%PDF-1.4 garbage"), apperrors.ErrExtraction},
		{"unsupported type", "text/plain", []byte("hello"), apperrors.ErrUnsupportedMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractText(tt.mime, tt.data)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestExtractText_Truncates(t *testing.T) {
	long := strings.Repeat("a", MaxTextLength+10)
	data := buildDOCX(t, `<w:p><w:r><w:t>`+long+`</w:t></w:r></w:p>`)

	text, err := ExtractText(MIMEDOCX, data)
	require.NoError(t, err)
	assert.Len(t, text, MaxTextLength)
}

func TestExtractText_DOCX_OversizedDocument(t *testing.T) {
	huge := strings.Repeat("a", maxDocumentXMLSize+1<<20)
	data := buildDOCX(t, `<w:p><w:r><w:t>`+huge+`</w:t></w:r></w:p>`)
	require.Less(t, len(data), MaxUploadSize)

	text, err := ExtractText(MIMEDOCX, data)
	require.NoError(t, err)
	assert.Len(t, text, MaxTextLength)
}

func TestDocumentText_Limits(t *testing.T) {
	doc := `<w:document xmlns:w="w"><w:body>` +
		`<w:p><w:r><w:t>  héllo</w:t></w:r></w:p><w:p><w:r><w:t>world</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	t.Run("stops at rune budget", func(t *testing.T) {
		text, err := documentText(strings.NewReader(doc), 1<<20, 3)
		require.NoError(t, err)
		assert.Equal(t, "hél", text)
	})

	t.Run("keeps text read before byte budget", func(t *testing.T) {
		cut := strings.Index(doc, "world")
		text, err := documentText(strings.NewReader(doc), int64(cut), 100)
		require.NoError(t, err)
		assert.Equal(t, "héllo\n", text)
	})

	t.Run("malformed xml", func(t *testing.T) {
		_, err := documentText(strings.NewReader(`<w:p><w:t>x</w:p>`), 1<<20, 100)
		assert.Error(t, err)
	})
}

func TestResolveMIME(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
		wantErr  bool
	}{
		{"declared pdf", "application/pdf", []byte("anything"), MIMEPDF, false},
		{"declared docx with params", MIMEDOCX + "; charset=binary", nil, MIMEDOCX, false},
		{"sniffed pdf", "application/octet-stream", []byte("%PDF-1.7\n%âãÏÓ\n"), MIMEPDF, false},
		{"plain text", "text/plain", []byte("just some words"), "", true},
		{"declared image", "image/png", []byte("\x89PNG\r\n\x1a\n"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMIME(tt.declared, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrUnsupportedMedia)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(MaxUploadSize))
	assert.ErrorIs(t, CheckSize(MaxUploadSize+1), apperrors.ErrUnsupportedMedia)
}

// Package resume turns uploaded resume documents into plain text and a
// structured summary.
package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	apperrors "jiffyapply/internal/errors"
)

// Accepted upload types.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxUploadSize is the largest accepted upload in bytes.
const MaxUploadSize = 5 << 20

// MaxTextLength caps the extracted text, in characters.
const MaxTextLength = 50000

// maxDocumentXMLSize bounds how much of word/document.xml is inflated.
const maxDocumentXMLSize = 32 << 20

var (
	errUnsupportedType = apperrors.New(apperrors.ErrUnsupportedMedia, "only PDF and DOCX files are allowed")
	errTooLarge        = apperrors.New(apperrors.ErrUnsupportedMedia, "file exceeds the 5MB limit")
	errNoText          = apperrors.New(apperrors.ErrExtraction, "could not extract text from resume")
)

// ResolveMIME decides the document type of an upload. The declared type wins
// when it is accepted; otherwise the content is sniffed.
func ResolveMIME(declared string, data []byte) (string, error) {
	declared = strings.TrimSpace(strings.SplitN(declared, ";", 2)[0])
	if isAccepted(declared) {
		return declared, nil
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if isAccepted(m.String()) {
			return m.String(), nil
		}
	}
	return "", errUnsupportedType
}

func isAccepted(mime string) bool {
	return mime == MIMEPDF || mime == MIMEDOCX
}

// CheckSize rejects uploads above MaxUploadSize.
func CheckSize(size int64) error {
	if size > MaxUploadSize {
		return errTooLarge
	}
	return nil
}

// ExtractText returns the plain text of a PDF or DOCX document, truncated to
// MaxTextLength characters. Whitespace-only output is an extraction error.
func ExtractText(mime string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch mime {
	case MIMEPDF:
		text, err = extractPDF(data)
	case MIMEDOCX:
		text, err = extractDOCX(data)
	default:
		return "", errUnsupportedType
	}
	if err != nil {
		return "", apperrors.New(apperrors.ErrExtraction, fmt.Sprintf("could not extract text from resume: %v", err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errNoText
	}
	return truncate(text, MaxTextLength), nil
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(io.LimitReader(plain, maxDocumentXMLSize))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentText(rc, maxDocumentXMLSize, MaxTextLength)
	}
	return "", fmt.Errorf("word/document.xml not found")
}

// documentText collects w:t runs, breaking lines at paragraphs and w:br. It
// reads at most maxBytes of XML and stops once maxRunes characters follow
// the leading whitespace. A document cut short by maxBytes keeps the text
// decoded so far.
func documentText(r io.Reader, maxBytes int64, maxRunes int) (string, error) {
	lr := &io.LimitedReader{R: r, N: maxBytes}
	text := &textBuffer{limit: maxRunes}
	inText := false

	dec := xml.NewDecoder(lr)
	for !text.full() {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if lr.N <= 0 {
				break
			}
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				text.write("\t")
			case "br":
				text.write("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text.write("\n")
			}
		case xml.CharData:
			if inText {
				text.write(string(t))
			}
		}
	}
	return text.String(), nil
}

// textBuffer accumulates text up to limit runes, not counting leading whitespace.
type textBuffer struct {
	sb      strings.Builder
	limit   int
	runes   int
	started bool
}

func (b *textBuffer) write(s string) {
	for _, r := range s {
		if b.full() {
			return
		}
		if !b.started {
			if unicode.IsSpace(r) {
				continue
			}
			b.started = true
		}
		b.sb.WriteRune(r)
		b.runes++
	}
}

func (b *textBuffer) full() bool { return b.runes >= b.limit }

func (b *textBuffer) String() string { return b.sb.String() }

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

package service

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "jiffyapply/internal/errors"
	"jiffyapply/internal/lib/sl"
	"jiffyapply/internal/model"
	"jiffyapply/internal/resume"
)

type stubParser struct {
	result resume.Result
	err    error
	text   string
}

func (p *stubParser) Parse(_ context.Context, text string) (resume.Result, error) {
	p.text = text
	return p.result, p.err
}

func docxWithText(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestResumeService_Upload(t *testing.T) {
	userID := uuid.New()
	uploadedAt := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)
	parsed := model.ParsedResume{Skills: []string{"Go"}, Keywords: []string{"backend"}}

	repo := new(MockUserRepository)
	repo.On("UpdateResume", mock.Anything, userID, mock.MatchedBy(func(r *model.Resume) bool {
		return r.OriginalText == "Jane Doe Go engineer" && r.UploadedAt.Equal(uploadedAt)
	})).Return(nil)

	parser := &stubParser{result: resume.Result{Parsed: parsed}}
	svc := NewResumeService(repo, parser, nil, sl.Discard()).(*resumeService)
	svc.now = func() time.Time { return uploadedAt }

	data := docxWithText(t, "Jane Doe Go engineer")
	got, err := svc.Upload(context.Background(), userID, Upload{
		Filename:    "cv.docx",
		ContentType: resume.MIMEDOCX,
		Size:        int64(len(data)),
		Data:        data,
	})
	require.NoError(t, err)
	assert.Equal(t, parsed, got.Parsed)
	assert.Equal(t, uploadedAt, got.UploadedAt)
	assert.Equal(t, "Jane Doe Go engineer", parser.text)
	repo.AssertExpectations(t)
}

func TestResumeService_Upload_Failures(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name   string
		upload func(t *testing.T) Upload
		parser *stubParser
		kind   error
	}{
		{
			name:   "no file",
			upload: func(t *testing.T) Upload { return Upload{} },
			parser: &stubParser{},
			kind:   apperrors.ErrValidation,
		},
		{
			name: "too large",
			upload: func(t *testing.T) Upload {
				data := docxWithText(t, "text")
				return Upload{ContentType: resume.MIMEDOCX, Size: resume.MaxUploadSize + 1, Data: data}
			},
			parser: &stubParser{},
			kind:   apperrors.ErrUnsupportedMedia,
		},
		{
			name: "wrong type",
			upload: func(t *testing.T) Upload {
				return Upload{ContentType: "text/plain", Size: 5, Data: []byte("hello")}
			},
			parser: &stubParser{},
			kind:   apperrors.ErrUnsupportedMedia,
		},
		{
			name: "empty text",
			upload: func(t *testing.T) Upload {
				data := docxWithText(t, "   ")
				return Upload{ContentType: resume.MIMEDOCX, Size: int64(len(data)), Data: data}
			},
			parser: &stubParser{},
			kind:   apperrors.ErrExtraction,
		},
		{
			name: "unparseable reply",
			upload: func(t *testing.T) Upload {
				data := docxWithText(t, "Jane")
				return Upload{ContentType: resume.MIMEDOCX, Size: int64(len(data)), Data: data}
			},
			parser: &stubParser{err: apperrors.New(apperrors.ErrParse, "could not parse resume data")},
			kind:   apperrors.ErrParse,
		},
		{
			name: "llm down",
			upload: func(t *testing.T) Upload {
				data := docxWithText(t, "Jane")
				return Upload{ContentType: resume.MIMEDOCX, Size: int64(len(data)), Data: data}
			},
			parser: &stubParser{err: apperrors.New(apperrors.ErrUpstream, "resume parser failed")},
			kind:   apperrors.ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			svc := NewResumeService(repo, tt.parser, nil, sl.Discard())

			_, err := svc.Upload(context.Background(), userID, tt.upload(t))
			assert.ErrorIs(t, err, tt.kind)
			repo.AssertNotCalled(t, "UpdateResume", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResumeService_Upload_UnknownUser(t *testing.T) {
	userID := uuid.New()
	repo := new(MockUserRepository)
	repo.On("UpdateResume", mock.Anything, userID, mock.Anything).Return(gorm.ErrRecordNotFound)

	svc := NewResumeService(repo, &stubParser{}, nil, sl.Discard())
	data := docxWithText(t, "Jane")

	_, err := svc.Upload(context.Background(), userID, Upload{ContentType: resume.MIMEDOCX, Size: int64(len(data)), Data: data})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

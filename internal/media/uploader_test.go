package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"testing"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	name        string
	contentType string
	body        []byte
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.name, f.contentType, f.body = name, contentType, body
	return "https://cdn.test/" + name, nil
}

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 17)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 16)...)
)

func fileHeader(t *testing.T, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestObjectName(t *testing.T) {
	name := ObjectName(KindPost, "Holiday.JPG")
	assert.Regexp(t, regexp.MustCompile(`^posts/[0-9a-f-]{36}\.jpg$`), name)
	assert.NotEqual(t, name, ObjectName(KindPost, "Holiday.JPG"))
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	fh := fileHeader(t, "cat.png", "image/png", pngBytes)
	up := &fakeUploader{}

	url, err := UploadImage(ctx, up, KindComment, fh, DefaultMaxBytes)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/"+up.name, url)
	assert.Equal(t, "image/png", up.contentType)
	assert.Equal(t, pngBytes, up.body)
}

func TestUploadImageUsesDetectedType(t *testing.T) {
	fh := fileHeader(t, "photo.png", "image/png", jpegBytes)
	up := &fakeUploader{}

	_, err := UploadImage(context.Background(), up, KindProfile, fh, DefaultMaxBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", up.contentType)
	assert.Equal(t, jpegBytes, up.body)
}

func TestUploadImageRejectsDisguisedFiles(t *testing.T) {
	fh := fileHeader(t, "cat.png", "image/png", []byte("#!/bin/sh\necho not an image\n"))
	up := &fakeUploader{}

	_, err := UploadImage(context.Background(), up, KindPost, fh, DefaultMaxBytes)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, up.name)
}

func TestUploadImageRejectsNonImages(t *testing.T) {
	fh := fileHeader(t, "notes.txt", "text/plain", []byte("hello"))
	_, err := UploadImage(context.Background(), &fakeUploader{}, KindPost, fh, DefaultMaxBytes)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUploadImageRejectsLargeFiles(t *testing.T) {
	fh := fileHeader(t, "big.png", "image/png", bytes.Repeat([]byte("x"), 64))
	_, err := UploadImage(context.Background(), &fakeUploader{}, KindPost, fh, 32)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUploadImageWithoutBackend(t *testing.T) {
	fh := fileHeader(t, "cat.png", "image/png", pngBytes)
	_, err := UploadImage(context.Background(), nil, KindPost, fh, DefaultMaxBytes)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUploadImageSurfacesHostMessage(t *testing.T) {
	fh := fileHeader(t, "cat.png", "image/png", pngBytes)
	_, err := UploadImage(context.Background(), &fakeUploader{err: errors.New("bucket quota exceeded")}, KindPost, fh, DefaultMaxBytes)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	assert.Equal(t, "bucket quota exceeded", err.(*apperr.Error).Message)
}

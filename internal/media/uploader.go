// Package media stores uploaded images on an object host and returns their public URLs.
package media

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	FormField       = "image"
	DefaultMaxBytes = 5 << 20

	KindProfile = "profiles"
	KindPost    = "posts"
	KindComment = "comments"
)

var ErrNotConfigured = apperr.New(apperr.KindUnavailable, "image uploads are not configured")

// Uploader stores one object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// ObjectName builds "<kind>/<uuid><ext>" for an uploaded file name.
func ObjectName(kind, filename string) string {
	return kind + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// ContentType returns the declared content type of the part, falling back to
// the file extension.
func ContentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(filepath.Ext(fh.Filename))
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// Validate checks that fh is declared as an image no larger than maxBytes.
// The bytes themselves are checked by Sniff.
func Validate(fh *multipart.FileHeader, maxBytes int64) error {
	if fh == nil {
		return apperr.InvalidField(FormField, "an image file is required")
	}
	if !strings.HasPrefix(ContentType(fh), "image/") {
		return apperr.InvalidField(FormField, "file must be an image")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return apperr.InvalidField(FormField, "file is too large")
	}
	return nil
}

// Sniff detects the content type of src from its leading bytes and rewinds
// it. Anything that is not an image is a validation error.
func Sniff(src io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "could not read uploaded file", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "could not read uploaded file", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperr.InvalidField(FormField, "file must be an image")
	}
	return mtype.String(), nil
}

// UploadImage validates fh and stores it under kind using u.
func UploadImage(ctx context.Context, u Uploader, kind string, fh *multipart.FileHeader, maxBytes int64) (string, error) {
	if u == nil {
		return "", ErrNotConfigured
	}
	if err := Validate(fh, maxBytes); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "could not read uploaded file", err)
	}
	defer src.Close()

	contentType, err := Sniff(src)
	if err != nil {
		return "", err
	}

	url, err := u.Upload(ctx, ObjectName(kind, fh.Filename), src, fh.Size, contentType)
	if err != nil {
		return "", apperr.Upstream(err)
	}
	return url, nil
}

package media

import (
	"context"
	"fmt"
	"io"

	"firebase.google.com/go/v4/storage"
)

// FirebaseUploader stores images in the Firebase project's Cloud Storage bucket.
type FirebaseUploader struct {
	client *storage.Client
	bucket string
}

func NewFirebaseUploader(client *storage.Client, bucket string) *FirebaseUploader {
	return &FirebaseUploader{client: client, bucket: bucket}
}

func (u *FirebaseUploader) Upload(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	handle, err := u.client.Bucket(u.bucket)
	if err != nil {
		return "", err
	}
	w := handle.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, name), nil
}

package storage

import (
	"context"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: c, bucket: bucket}, nil
}

func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *GCSStore) Delete(ctx context.Context, objectName string) error {
	err := s.client.Bucket(s.bucket).Object(objectName).Delete(ctx)
	if err == gcs.ErrObjectNotExist {
		return nil
	}
	return err
}

// SignedGetURL returns a time-limited read URL. Audio blobs stay private;
// playback clients get access only through these URLs.
func (s *GCSStore) SignedGetURL(_ context.Context, objectName string, ttl time.Duration) (string, error) {
	return s.client.Bucket(s.bucket).SignedURL(objectName, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
}

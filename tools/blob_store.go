package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"snip_api/types"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// BlobStore is the object-store contract: put bytes under a
// store-assigned name and get a public URL back, delete by that URL.
// Every object belongs to exactly one post.
type BlobStore interface {
	Upload(ctx context.Context, r io.Reader, contentType, extension string) (string, error)
	Delete(ctx context.Context, downloadURL string) error
}

// GCSBlobStore stores post images in a Cloud Storage bucket and serves
// them through Firebase download URLs.
type GCSBlobStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSBlobStore(client *gcs.Client, bucket string) *GCSBlobStore {
	return &GCSBlobStore{client: client, bucket: bucket}
}

// Upload writes the image bytes under a random name in the posts
// folder and returns the public download URL.
func (s *GCSBlobStore) Upload(ctx context.Context, r io.Reader, contentType, extension string) (string, error) {
	objectPath := types.FIREBASE_STORAGE_POSTS_FOLDER + uuid.NewString() + extension

	obj := s.client.Bucket(s.bucket).Object(objectPath)
	sw := obj.NewWriter(ctx)
	sw.ContentType = contentType

	if _, err := io.Copy(sw, r); err != nil {
		return "", err
	}
	if err := sw.Close(); err != nil {
		return "", err
	}

	// Firebase serves the object publicly once a download token is set
	// on its metadata.
	downloadToken := uuid.NewString()
	_, err := obj.Update(ctx, gcs.ObjectAttrsToUpdate{
		Metadata: map[string]string{
			"firebaseStorageDownloadTokens": downloadToken,
		},
	})
	if err != nil {
		return "", err
	}

	return DownloadURL(s.bucket, objectPath, downloadToken), nil
}

// Delete removes the object the download URL points at. An object that
// is already gone counts as deleted, so delete paths stay idempotent.
func (s *GCSBlobStore) Delete(ctx context.Context, downloadURL string) error {
	objectPath, err := ObjectPathFromDownloadURL(downloadURL, s.bucket)
	if err != nil {
		return err
	}

	err = s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}

	return err
}

// DownloadURL builds the public Firebase media URL for an object.
func DownloadURL(bucket, objectPath, downloadToken string) string {
	return "https://firebasestorage.googleapis.com/v0/b/" + bucket +
		"/o/" + url.PathEscape(objectPath) + "?alt=media&token=" + downloadToken
}

// ObjectPathFromDownloadURL recovers the bucket object path from a
// download URL produced by DownloadURL.
func ObjectPathFromDownloadURL(downloadURL, bucket string) (string, error) {
	parsed, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}

	prefix := "/v0/b/" + bucket + "/o/"
	if !strings.HasPrefix(parsed.EscapedPath(), prefix) {
		return "", fmt.Errorf("download url %q does not reference bucket %q", downloadURL, bucket)
	}

	objectPath, err := url.PathUnescape(strings.TrimPrefix(parsed.EscapedPath(), prefix))
	if err != nil {
		return "", fmt.Errorf("unescape object path: %w", err)
	}

	return objectPath, nil
}

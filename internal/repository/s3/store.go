package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/smokerelay/smokerelay/internal/model"
)

// Internal adapter interface to enable mocking without a real object store.
type s3API interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// Wrapper to adapt *minio.Client to s3API.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

var _ model.ConfigStore = (*Store)(nil)

// Store keeps the whole config document as a single object in an
// S3-compatible bucket.
type Store struct {
	api    s3API
	bucket string
	object string
}

// NewStore creates an object-storage config store using a real *minio.Client.
func NewStore(ctx context.Context, client *minio.Client, bucket, object string) (*Store, error) {
	return NewStoreWithAPI(ctx, minioClientWrapper{c: client}, bucket, object)
}

// NewStoreWithAPI allows injecting a mockable API (used in tests).
func NewStoreWithAPI(ctx context.Context, api s3API, bucket, object string) (*Store, error) {
	s := &Store{
		api:    api,
		bucket: bucket,
		object: object,
	}

	if err := s.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return s, nil
}

func (s *Store) ensureBucketExists(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Get returns the stored document. A missing object means a fresh deployment
// and yields an empty document, not an error.
func (s *Store) Get(ctx context.Context) (model.Document, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: failed to get object: %w", model.ErrConfigUnavailable, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		// minio reports missing keys lazily, on first read.
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return model.EmptyDocument(), nil
		}
		return model.Document{}, fmt.Errorf("%w: failed to read object: %w", model.ErrConfigUnavailable, err)
	}

	var doc model.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.Document{}, fmt.Errorf("%w: malformed document: %w", model.ErrConfigUnavailable, err)
	}

	return doc, nil
}

// Put replaces the stored document object.
func (s *Store) Put(ctx context.Context, doc model.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.api.PutObject(ctx, s.bucket, s.object, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	return nil
}

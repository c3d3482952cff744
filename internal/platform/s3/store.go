package s3

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/imamik/paxosfleet/internal/config"
)

// objectClient is the part of Client a Store needs.
type objectClient interface {
	CreateBucket(ctx context.Context, bucketName string) error
	PutObject(ctx context.Context, bucketName, key string, data []byte) error
	ListObjects(ctx context.Context, bucketName, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucketName, key string) ([]byte, error)
}

// Store keeps benchmark artifacts in one bucket. The bucket is created on
// the first upload.
type Store struct {
	client objectClient
	bucket string

	once      sync.Once
	bucketErr error
}

// NewStore returns a store writing to bucket through client.
func NewStore(client *Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// NewStoreFromConfig builds the client and store described by cfg.
func NewStoreFromConfig(cfg config.ArtifactsConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("artifact bucket is not configured")
	}
	client, err := NewClient(cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	return NewStore(client, cfg.Bucket), nil
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

// Upload stores data under key. Concurrent uploads share one bucket creation.
func (s *Store) Upload(ctx context.Context, key string, data []byte) error {
	s.once.Do(func() {
		s.bucketErr = s.client.CreateBucket(ctx, s.bucket)
	})
	if s.bucketErr != nil {
		return s.bucketErr
	}
	return s.client.PutObject(ctx, s.bucket, key, data)
}

// List returns the keys under prefix, with the bucket-relative separator
// normalized so "run" and "run/" list the same objects.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return s.client.ListObjects(ctx, s.bucket, prefix)
}

// Download returns the object stored under key.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	return s.client.GetObject(ctx, s.bucket, key)
}

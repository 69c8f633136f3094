// Package cli provides the command-line interface for bucketctl.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/bucketops/bucketctl/internal/api"
	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/models"
	storages3 "github.com/bucketops/bucketctl/internal/storage/s3"
)

// bucketStore is the operation surface the commands run against. Two
// implementations: the REST API client (default) and direct S3 access for
// integrations with local credentials. Commands never care which one they
// got.
type bucketStore interface {
	ListBuckets(ctx context.Context) ([]models.Bucket, error)
	CreateBucket(ctx context.Context, name string, policy *models.RetentionPolicy) error
	UpdateBucket(ctx context.Context, name string, policy models.RetentionPolicy) error
	DeleteBucket(ctx context.Context, name string) error

	ListFiles(ctx context.Context, bucket string) (*models.FileListResponse, error)
	// Upload bodies must be seekable: the direct S3 path rewinds the
	// stream for checksum computation. size -1 means unknown.
	Upload(ctx context.Context, bucket, name string, r io.ReadSeeker, size int64) error
	Download(ctx context.Context, bucket, name string, w io.Writer) (int64, error)
	DeleteFiles(ctx context.Context, bucket string, names ...string) error
}

// newStore picks the implementation for the selected integration: direct
// S3 when the config carries credentials for it, the REST API otherwise.
func newStore(cfg *config.Config, integration string) (bucketStore, error) {
	if integ, ok := cfg.DirectIntegration(integration); ok && integration != "" {
		client, err := storages3.NewClient(GetContext(), integration, integ)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client for %q: %w", integration, err)
		}
		return &directStore{client: client}, nil
	}

	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return &apiStore{client: client.WithIntegration(integration)}, nil
}

// apiStore adapts api.Client to the bucketStore surface.
type apiStore struct {
	client *api.Client
}

func (s *apiStore) ListBuckets(ctx context.Context) ([]models.Bucket, error) {
	return s.client.ListBuckets(ctx)
}

func (s *apiStore) CreateBucket(ctx context.Context, name string, policy *models.RetentionPolicy) error {
	req := models.BucketRequest{Name: name}
	if policy != nil {
		req.ExpirationMeasure = policy.ExpirationMeasure
		req.ExpirationValue = policy.ExpirationValue
	}
	return s.client.CreateBucket(ctx, req)
}

func (s *apiStore) UpdateBucket(ctx context.Context, name string, policy models.RetentionPolicy) error {
	return s.client.UpdateBucket(ctx, name, policy)
}

func (s *apiStore) DeleteBucket(ctx context.Context, name string) error {
	return s.client.DeleteBucket(ctx, name)
}

func (s *apiStore) ListFiles(ctx context.Context, bucket string) (*models.FileListResponse, error) {
	return s.client.ListFiles(ctx, bucket)
}

func (s *apiStore) Upload(ctx context.Context, bucket, name string, r io.ReadSeeker, size int64) error {
	_, err := s.client.UploadFile(ctx, bucket, name, r, true)
	return err
}

func (s *apiStore) Download(ctx context.Context, bucket, name string, w io.Writer) (int64, error) {
	return s.client.DownloadFile(ctx, bucket, name, w)
}

func (s *apiStore) DeleteFiles(ctx context.Context, bucket string, names ...string) error {
	return s.client.DeleteFiles(ctx, bucket, names...)
}

// directStore adapts the S3 client to the bucketStore surface.
type directStore struct {
	client *storages3.Client
}

func (s *directStore) ListBuckets(ctx context.Context) ([]models.Bucket, error) {
	return s.client.ListBuckets(ctx)
}

func (s *directStore) CreateBucket(ctx context.Context, name string, policy *models.RetentionPolicy) error {
	days := 0
	if policy != nil {
		var err error
		days, err = policy.Days()
		if err != nil {
			return err
		}
	}
	return s.client.CreateBucket(ctx, name, days)
}

func (s *directStore) UpdateBucket(ctx context.Context, name string, policy models.RetentionPolicy) error {
	days, err := policy.Days()
	if err != nil {
		return err
	}
	return s.client.SetRetentionDays(ctx, name, days)
}

func (s *directStore) DeleteBucket(ctx context.Context, name string) error {
	return s.client.DeleteBucket(ctx, name)
}

func (s *directStore) ListFiles(ctx context.Context, bucket string) (*models.FileListResponse, error) {
	rows, err := s.client.ListFiles(ctx, bucket)
	if err != nil {
		return nil, err
	}

	resp := &models.FileListResponse{Total: len(rows), Rows: rows}
	if days, err := s.client.RetentionDays(ctx, bucket); err == nil && days > 0 {
		policy := models.RetentionFromDays(days)
		resp.RetentionPolicy = &policy
	}
	return resp, nil
}

func (s *directStore) Upload(ctx context.Context, bucket, name string, r io.ReadSeeker, size int64) error {
	return s.client.Upload(ctx, bucket, name, r, size)
}

func (s *directStore) Download(ctx context.Context, bucket, name string, w io.Writer) (int64, error) {
	return s.client.Download(ctx, bucket, name, w)
}

func (s *directStore) DeleteFiles(ctx context.Context, bucket string, names ...string) error {
	return s.client.DeleteFiles(ctx, bucket, names...)
}

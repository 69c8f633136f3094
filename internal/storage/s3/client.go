// Package s3 provides direct access to an S3-compatible storage
// integration (MinIO, AWS). When the user configured local credentials for
// an integration, bucketctl skips the REST API and talks to the endpoint
// itself, producing the same row types so the table pipeline is shared.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/http"
	"github.com/bucketops/bucketctl/internal/models"
	"github.com/bucketops/bucketctl/internal/util/sizes"
)

// Client wraps the AWS S3 client for one storage integration.
// Safe for concurrent use.
type Client struct {
	s3    *s3.Client
	title string // integration title, becomes the rows' tag category
}

// NewClient builds a client for an S3-compatible integration using static
// credentials. MinIO-style deployments need the endpoint override plus
// path-style addressing.
func NewClient(ctx context.Context, title string, integ config.IntegrationConfig) (*Client, error) {
	if integ.Endpoint == "" && integ.Region == "" {
		return nil, fmt.Errorf("integration %q has neither endpoint nor region", title)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(integ.Region),
		awsconfig.WithHTTPClient(http.NewPooledClient()),
		awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(integ.AccessKey, integ.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if integ.Endpoint != "" {
			o.BaseEndpoint = aws.String(integ.Endpoint)
		}
		o.UsePathStyle = integ.PathStyle
	})

	return &Client{s3: client, title: strings.ToLower(title)}, nil
}

// ListBuckets returns bucket rows with human-readable sizes. Bucket size
// is the sum of its object sizes, the same way the server computes it.
func (c *Client) ListBuckets(ctx context.Context) ([]models.Bucket, error) {
	out, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets failed: %w", err)
	}

	rows := make([]models.Bucket, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		size, err := c.bucketSize(ctx, name)
		if err != nil {
			return nil, err
		}

		row := models.Bucket{
			Name: name,
			Size: sizes.Format(size),
			Tags: models.Tags{Type: c.title},
		}
		if days, err := c.RetentionDays(ctx, name); err == nil && days > 0 {
			policy := models.RetentionFromDays(days)
			row.RetentionPolicy = &policy
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) bucketSize(ctx context.Context, bucket string) (int64, error) {
	var total int64
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list objects in %s failed: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			total += aws.ToInt64(obj.Size)
		}
	}
	return total, nil
}

// CreateBucket creates a bucket and, when days > 0, attaches an expiration
// lifecycle rule.
func (c *Client) CreateBucket(ctx context.Context, name string, days int) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return fmt.Errorf("bucket %s already exists: %w", name, err)
		}
		return fmt.Errorf("create bucket %s failed: %w", name, err)
	}

	if days > 0 {
		return c.SetRetentionDays(ctx, name, days)
	}
	return nil
}

// SetRetentionDays installs a lifecycle rule expiring objects after the
// given number of days.
func (c *Client) SetRetentionDays(ctx context.Context, bucket string, days int) error {
	_, err := c.s3.PutBucketLifecycleConfiguration(ctx, &s3.PutBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucket),
		LifecycleConfiguration: &types.BucketLifecycleConfiguration{
			Rules: []types.LifecycleRule{
				{
					ID:         aws.String("bucketctl-retention"),
					Status:     types.ExpirationStatusEnabled,
					Filter:     &types.LifecycleRuleFilter{Prefix: aws.String("")},
					Expiration: &types.LifecycleExpiration{Days: aws.Int32(int32(days))},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("set lifecycle on %s failed: %w", bucket, err)
	}
	return nil
}

// RetentionDays reads the expiration lifecycle rule. Returns 0 when the
// bucket has no lifecycle configuration.
func (c *Client) RetentionDays(ctx context.Context, bucket string) (int, error) {
	out, err := c.s3.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		// Buckets without a lifecycle return NoSuchLifecycleConfiguration.
		if strings.Contains(err.Error(), "NoSuchLifecycleConfiguration") {
			return 0, nil
		}
		return 0, fmt.Errorf("get lifecycle on %s failed: %w", bucket, err)
	}

	for _, rule := range out.Rules {
		if rule.Expiration != nil && rule.Expiration.Days != nil {
			return int(aws.ToInt32(rule.Expiration.Days)), nil
		}
	}
	return 0, nil
}

// DeleteBucket removes a bucket, purging its objects first. S3 refuses to
// delete non-empty buckets.
func (c *Client) DeleteBucket(ctx context.Context, name string) error {
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects in %s failed: %w", name, err)
		}
		for _, obj := range page.Contents {
			_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(name),
				Key:    obj.Key,
			})
			if err != nil {
				return fmt.Errorf("purge %s/%s failed: %w", name, aws.ToString(obj.Key), err)
			}
		}
	}

	if _, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)}); err != nil {
		return fmt.Errorf("delete bucket %s failed: %w", name, err)
	}
	return nil
}

// ListFiles returns the file rows of a bucket.
func (c *Client) ListFiles(ctx context.Context, bucket string) ([]models.FileRow, error) {
	var rows []models.FileRow
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %s failed: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			row := models.FileRow{
				Name: aws.ToString(obj.Key),
				Size: sizes.Format(aws.ToInt64(obj.Size)),
				Tags: models.Tags{Type: c.title},
			}
			if obj.LastModified != nil {
				row.ModifiedTime = obj.LastModified.UTC().Format("2006-01-02 15:04:05")
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Upload stores r as an object named key in the bucket. The body must be
// seekable and the size known: the SDK rewinds the stream to compute the
// payload checksum, and without TLS an unseekable body is rejected before
// any bytes move.
func (c *Client) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	_, err := c.s3.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("put %s/%s failed: %w", bucket, key, err)
	}
	return nil
}

// Download streams the object into w and returns bytes written.
func (c *Client) Download(ctx context.Context, bucket, key string, w io.Writer) (int64, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("get %s/%s failed: %w", bucket, key, err)
	}
	defer out.Body.Close()

	n, err := io.Copy(w, out.Body)
	if err != nil {
		return n, fmt.Errorf("download interrupted after %d bytes: %w", n, err)
	}
	return n, nil
}

// DeleteFiles removes the named objects from a bucket.
func (c *Client) DeleteFiles(ctx context.Context, bucket string, names ...string) error {
	for _, name := range names {
		_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(name),
		})
		if err != nil {
			return fmt.Errorf("delete %s/%s failed: %w", bucket, name, err)
		}
	}
	return nil
}

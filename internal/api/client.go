// Package api implements the REST client for the artifact storage service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/constants"
	"github.com/bucketops/bucketctl/internal/http"
	"github.com/bucketops/bucketctl/internal/logging"
	"github.com/bucketops/bucketctl/internal/models"
)

// retryLogger adapts our logger to the retryablehttp.LeveledLogger interface.
// Only errors and warnings get through; per-attempt info is noise.
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Msgf("retry: %s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Msgf("retry: %s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Client talks to the artifact storage REST API for a single project.
// Safe for concurrent use.
type Client struct {
	httpClient  *nethttp.Client
	baseURL     string
	apiKey      string
	project     string
	integration string // configuration_title query param, empty = project-local
	logger      *logging.Logger
}

// NewClient creates a new API client from connection settings.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = http.NewPooledClient()
	retryClient.RetryMax = constants.APIRetryMax
	retryClient.RetryWaitMin = constants.APIRetryWaitMin
	retryClient.RetryWaitMax = constants.APIRetryWaitMax
	retryClient.Logger = &retryLogger{logger: logger}

	return &Client{
		httpClient:  retryClient.StandardClient(),
		baseURL:     strings.TrimSuffix(cfg.ServerURL, "/"),
		apiKey:      cfg.APIKey,
		project:     cfg.Project,
		integration: cfg.Integration,
		logger:      logger,
	}, nil
}

// WithIntegration returns a shallow copy of the client bound to the given
// storage integration title. Empty title selects project-local storage.
func (c *Client) WithIntegration(title string) *Client {
	clone := *c
	clone.integration = title
	return &clone
}

// Integration returns the active integration title.
func (c *Client) Integration() string {
	return c.integration
}

// doRequest performs an authenticated HTTP request. The integration title,
// when set, rides along as the configuration_title query parameter on every
// call.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	if query == nil {
		query = url.Values{}
	}
	if c.integration != "" {
		query.Set("configuration_title", c.integration)
	}

	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// ListBuckets retrieves all buckets for the project, with their
// human-readable sizes and category tags.
func (c *Client) ListBuckets(ctx context.Context) ([]models.Bucket, error) {
	path := fmt.Sprintf("/api/v1/artifacts/buckets/%s/", c.project)

	resp, err := c.doRequest(ctx, "GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list buckets failed: status %d: %s", resp.StatusCode, string(body))
	}

	var result models.BucketListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode bucket list: %w", err)
	}

	return result.Rows, nil
}

// CreateBucket creates a bucket, optionally with a retention policy.
// A retention period over the project's data retention limit surfaces as
// ErrRetentionLimitExceeded.
func (c *Client) CreateBucket(ctx context.Context, req models.BucketRequest) error {
	path := fmt.Sprintf("/api/v1/artifacts/buckets/%s/", c.project)

	resp, err := c.doRequest(ctx, "POST", path, nil, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == nethttp.StatusOK || resp.StatusCode == nethttp.StatusCreated {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	switch resp.StatusCode {
	case nethttp.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrRetentionLimitExceeded, bodyStr)
	case nethttp.StatusConflict:
		return fmt.Errorf("%w: %s", ErrBucketAlreadyExists, bodyStr)
	}

	bodyLower := strings.ToLower(bodyStr)
	if strings.Contains(bodyLower, "already exists") || strings.Contains(bodyLower, "duplicate") {
		return fmt.Errorf("%w: %s", ErrBucketAlreadyExists, bodyStr)
	}

	return fmt.Errorf("create bucket failed: status %d: %s", resp.StatusCode, bodyStr)
}

// UpdateBucket replaces the retention policy on an existing bucket.
func (c *Client) UpdateBucket(ctx context.Context, name string, policy models.RetentionPolicy) error {
	path := fmt.Sprintf("/api/v1/artifacts/buckets/%s/", c.project)

	req := models.BucketRequest{
		Name:              name,
		ExpirationMeasure: policy.ExpirationMeasure,
		ExpirationValue:   policy.ExpirationValue,
	}

	resp, err := c.doRequest(ctx, "PUT", path, nil, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == nethttp.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrBucketNotFound, string(body))
	}
	if resp.StatusCode == nethttp.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrRetentionLimitExceeded, string(body))
	}
	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update bucket failed: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// DeleteBucket removes a bucket and everything in it.
func (c *Client) DeleteBucket(ctx context.Context, name string) error {
	path := fmt.Sprintf("/api/v1/artifacts/buckets/%s/", c.project)

	query := url.Values{}
	query.Set("name", name)

	resp, err := c.doRequest(ctx, "DELETE", path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete bucket failed: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// ListFiles retrieves the file rows of a bucket along with the bucket's
// retention policy (nil when the bucket has no lifecycle rule).
func (c *Client) ListFiles(ctx context.Context, bucket string) (*models.FileListResponse, error) {
	path := fmt.Sprintf("/api/v1/artifacts/artifacts/%s/%s/", c.project, bucket)

	resp, err := c.doRequest(ctx, "GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == nethttp.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, string(body))
	}
	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list files failed: status %d: %s", resp.StatusCode, string(body))
	}

	var result models.FileListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode file list: %w", err)
	}

	return &result, nil
}

// UploadFile uploads a local file into a bucket as a multipart form.
// The reader is streamed, not buffered, so arbitrarily large artifacts
// upload in constant memory. createIfMissing asks the server to create the
// bucket first when it does not exist yet.
func (c *Client) UploadFile(ctx context.Context, bucket, localPath string, r io.Reader, createIfMissing bool) (*models.StatusResponse, error) {
	if r == nil {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", localPath, err)
		}
		defer f.Close()
		r = f
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(localPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	query := url.Values{}
	if createIfMissing {
		query.Set("create_if_not_exists", "true")
	}
	if c.integration != "" {
		query.Set("configuration_title", c.integration)
	}

	path := fmt.Sprintf("/api/v1/artifacts/artifacts/%s/%s/", c.project, bucket)
	u := c.baseURL + path + "?" + query.Encode()

	req, err := nethttp.NewRequestWithContext(ctx, "POST", u, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	// The piped body streams once and cannot be rewound, so a failed
	// attempt surfaces to the caller instead of being retried.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upload failed: status %d: %s", resp.StatusCode, string(body))
	}

	var status models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &status, nil
}

// DownloadFile streams a file from a bucket into w and returns the number
// of bytes written.
func (c *Client) DownloadFile(ctx context.Context, bucket, filename string, w io.Writer) (int64, error) {
	path := fmt.Sprintf("/api/v1/artifacts/artifact/%s/%s/%s/", c.project, bucket, filename)

	resp, err := c.doRequest(ctx, "GET", path, nil, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == nethttp.StatusNotFound {
		return 0, fmt.Errorf("file %s not found in bucket %s", filename, bucket)
	}
	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("download failed: status %d: %s", resp.StatusCode, string(body))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download interrupted after %d bytes: %w", n, err)
	}
	return n, nil
}

// DeleteFiles removes the named files from a bucket in one call.
func (c *Client) DeleteFiles(ctx context.Context, bucket string, names ...string) error {
	path := fmt.Sprintf("/api/v1/artifacts/artifacts/%s/%s/", c.project, bucket)

	query := url.Values{}
	for _, name := range names {
		query.Add("fname[]", name)
	}

	resp, err := c.doRequest(ctx, "DELETE", path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete files failed: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

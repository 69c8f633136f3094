package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/models"
)

func testConfig(serverURL string) *config.Config {
	cfg := config.New()
	cfg.ServerURL = serverURL
	cfg.APIKey = "test-token"
	cfg.Project = "42"
	return cfg
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := config.New() // no url/key/project
	if _, err := NewClient(cfg, nil); err == nil {
		t.Fatal("NewClient() should reject an empty configuration")
	}
}

func TestListBuckets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/artifacts/buckets/42/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 2, "rows": [
			{"name": "reports", "size": "10K", "tags": {"type": "local"}},
			{"name": "traces", "size": "1G", "tags": {"type": "system"}}
		]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	buckets, err := client.ListBuckets(context.Background())
	if err != nil {
		t.Fatalf("ListBuckets() error = %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	if buckets[0].Name != "reports" || buckets[0].Size != "10K" || buckets[0].Tags.Type != "local" {
		t.Errorf("first bucket = %+v", buckets[0])
	}
}

func TestListBucketsCarriesIntegration(t *testing.T) {
	var gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.URL.Query().Get("configuration_title")
		w.Write([]byte(`{"total": 0, "rows": []}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.WithIntegration("offsite-s3").ListBuckets(context.Background()); err != nil {
		t.Fatalf("ListBuckets() error = %v", err)
	}
	if gotTitle != "offsite-s3" {
		t.Errorf("configuration_title = %q, want offsite-s3", gotTitle)
	}
}

func TestCreateBucketRetentionLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The data retention limit allowed in the project has been exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	err = client.CreateBucket(context.Background(), models.BucketRequest{
		Name:              "forever",
		ExpirationMeasure: models.MeasureYears,
		ExpirationValue:   100,
	})
	if !errors.Is(err, ErrRetentionLimitExceeded) {
		t.Errorf("CreateBucket() error = %v, want ErrRetentionLimitExceeded", err)
	}
}

func TestCreateBucketConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket already exists", http.StatusConflict)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	err = client.CreateBucket(context.Background(), models.BucketRequest{Name: "reports"})
	if !IsBucketExistsError(err) {
		t.Errorf("CreateBucket() error = %v, want bucket-exists", err)
	}
}

func TestListFilesRetentionPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"retention_policy": {"expiration_measure": "weeks", "expiration_value": 4},
			"total": 1,
			"rows": [{"name": "report.html", "size": "5M", "tags": {"type": "local"}}]
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	list, err := client.ListFiles(context.Background(), "reports")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if list.RetentionPolicy == nil || list.RetentionPolicy.ExpirationMeasure != models.MeasureWeeks {
		t.Errorf("retention policy = %+v", list.RetentionPolicy)
	}
	if len(list.Rows) != 1 || list.Rows[0].Size != "5M" {
		t.Errorf("rows = %+v", list.Rows)
	}
}

func TestDeleteFilesQuery(t *testing.T) {
	var gotNames []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		gotNames = r.URL.Query()["fname[]"]
		w.Write([]byte(`{"message": "Deleted", "size": "0"}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := client.DeleteFiles(context.Background(), "reports", "a.txt", "b.txt"); err != nil {
		t.Fatalf("DeleteFiles() error = %v", err)
	}
	if len(gotNames) != 2 || gotNames[0] != "a.txt" || gotNames[1] != "b.txt" {
		t.Errorf("fname[] = %v", gotNames)
	}
}

func TestUploadFileMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		if header.Filename != "data.tar.gz" {
			t.Errorf("filename = %q", header.Filename)
		}
		if r.URL.Query().Get("create_if_not_exists") != "true" {
			t.Error("create_if_not_exists not set")
		}
		w.Write([]byte(`{"message": "Done", "size": "11"}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	status, err := client.UploadFile(context.Background(), "reports", "data.tar.gz",
		strings.NewReader("hello world"), true)
	if err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if status.Message != "Done" {
		t.Errorf("message = %q", status.Message)
	}
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/artifacts/artifact/42/reports/report.html/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	var buf bytes.Buffer
	n, err := client.DownloadFile(context.Background(), "reports", "report.html", &buf)
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	if n != int64(buf.Len()) || buf.String() != "<html></html>" {
		t.Errorf("downloaded %d bytes: %q", n, buf.String())
	}
}

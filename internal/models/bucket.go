// Package models defines the wire types exchanged with the artifact
// storage API.
package models

// Tags carries the category metadata attached to bucket and file rows.
// Type is the value the table's category selector filters on ("local",
// "system", or an integration title).
type Tags struct {
	Type string `json:"type"`
}

// Bucket represents one bucket row as returned by the buckets endpoint.
// Size is a human-readable size string ("10K", "5M"); it is sorted by
// magnitude, not lexically.
type Bucket struct {
	Name            string           `json:"name"`
	Size            string           `json:"size"`
	Tags            Tags             `json:"tags,omitempty"`
	RetentionPolicy *RetentionPolicy `json:"retention_policy,omitempty"`
}

// BucketRequest is the payload for bucket creation and update.
type BucketRequest struct {
	Name              string `json:"name"`
	ExpirationMeasure string `json:"expiration_measure,omitempty"`
	ExpirationValue   int    `json:"expiration_value,omitempty"`
}

// BucketListResponse is the response shape of the bucket list endpoint.
type BucketListResponse struct {
	Total int      `json:"total"`
	Rows  []Bucket `json:"rows"`
}

// FileRow represents one file row within a bucket listing.
type FileRow struct {
	Name         string `json:"name"`
	Size         string `json:"size"`
	ModifiedTime string `json:"modified,omitempty"`
	Tags         Tags   `json:"tags,omitempty"`
}

// Row accessors let the table layer sort and filter buckets and files
// through one code path.

func (b Bucket) RowName() string { return b.Name }
func (b Bucket) RowSize() string { return b.Size }
func (b Bucket) RowTag() string  { return b.Tags.Type }

func (f FileRow) RowName() string { return f.Name }
func (f FileRow) RowSize() string { return f.Size }
func (f FileRow) RowTag() string  { return f.Tags.Type }

// FileListResponse is the response shape of the per-bucket file listing.
type FileListResponse struct {
	RetentionPolicy *RetentionPolicy `json:"retention_policy"`
	Total           int              `json:"total"`
	Rows            []FileRow        `json:"rows"`
}

// StatusResponse is the generic message envelope the API returns for
// mutations. Size carries the bucket size after upload/delete operations.
type StatusResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	Size    string `json:"size,omitempty"`
}

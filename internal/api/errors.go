// Package api provides error types for artifact API responses.
package api

import (
	"errors"
	"strings"
)

// ErrBucketAlreadyExists indicates a bucket with the same name already exists.
var ErrBucketAlreadyExists = errors.New("bucket already exists")

// ErrBucketNotFound indicates the named bucket does not exist.
var ErrBucketNotFound = errors.New("bucket not found")

// ErrRetentionLimitExceeded indicates the requested retention period exceeds
// the data retention limit allowed in the project. The server rejects the
// bucket creation with 403 in that case.
var ErrRetentionLimitExceeded = errors.New("data retention limit exceeded")

// IsBucketExistsError checks if an error indicates a duplicate bucket.
//
// Detects the condition from multiple sources: a wrapped
// ErrBucketAlreadyExists, an HTTP 409, or server messages containing
// "already exists", "duplicate" or "conflict".
func IsBucketExistsError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrBucketAlreadyExists) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	conflictIndicators := []string{
		"already exists",
		"duplicate",
		"conflict",
		"bucketalreadyownedbyyou",
	}

	for _, indicator := range conflictIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// Package constants centralizes tunable values shared across packages.
package constants

import "time"

// Application identity.
const (
	AppName = "bucketctl"
)

// Event bus sizing.
const (
	// EventBusDefaultBuffer - default buffer size for event channels.
	// Sized so a burst of per-row table events never blocks a publisher.
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - cap on subscriber buffer size.
	EventBusMaxBuffer = 5000
)

// Concurrent transfer limits.
const (
	// DefaultMaxConcurrent - default concurrent file operations.
	DefaultMaxConcurrent = 5

	// MinMaxConcurrent - minimum concurrent operations (sequential mode).
	MinMaxConcurrent = 1

	// MaxMaxConcurrent - maximum concurrent operations allowed.
	MaxMaxConcurrent = 10
)

// API client retry tuning (transport-level, via retryablehttp).
const (
	APIRetryMax     = 5
	APIRetryWaitMin = 1 * time.Second
	APIRetryWaitMax = 30 * time.Second
)

// HTTP transport tuning for multipart uploads and streaming downloads.
const (
	HTTPIdleConnTimeout     = 90 * time.Second
	HTTPTLSHandshakeTimeout = 30 * time.Second
	HTTPMaxIdleConns        = 128
	HTTPMaxIdleConnsPerHost = 32
)

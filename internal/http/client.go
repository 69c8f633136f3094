// Package http builds the shared HTTP clients used by the API layer and
// the direct S3 mode.
package http

import (
	nethttp "net/http"

	"golang.org/x/net/http2"

	"github.com/bucketops/bucketctl/internal/constants"
)

// NewPooledClient creates an HTTP client tuned for repeated API calls and
// file transfers: generous connection pool, HTTP/2 where the server speaks
// it, no overall timeout (per-operation deadlines come from contexts).
//
// The same client is shared between the REST client and uploads/downloads
// so connections get reused across operations.
func NewPooledClient() *nethttp.Client {
	tr := nethttp.DefaultTransport.(*nethttp.Transport).Clone()

	tr.MaxIdleConns = constants.HTTPMaxIdleConns
	tr.MaxIdleConnsPerHost = constants.HTTPMaxIdleConnsPerHost
	tr.MaxConnsPerHost = constants.HTTPMaxIdleConnsPerHost
	tr.IdleConnTimeout = constants.HTTPIdleConnTimeout
	tr.TLSHandshakeTimeout = constants.HTTPTLSHandshakeTimeout

	// Uploaded artifacts are usually archives; recompressing them on the
	// wire costs CPU for nothing.
	tr.DisableCompression = true

	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	return &nethttp.Client{
		Transport: tr,
		Timeout:   0,
	}
}

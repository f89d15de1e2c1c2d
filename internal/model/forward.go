// Package model defines shared types for the gateway.
package model

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// HeaderGatewayError marks responses the gateway produced itself rather than
// relayed from upstream. Its value is the failure kind.
const HeaderGatewayError = "X-Gateway-Error"

// ForwardRequest represents a caller request to be relayed upstream.
type ForwardRequest struct {
	Ctx    context.Context
	Method string

	// Segments is the wildcard suffix after the mount path, still escaped
	// the way the caller sent it.
	Segments []string
	RawQuery string
	Header   http.Header
	Body     io.ReadCloser

	// ContentLength mirrors http.Request.ContentLength; -1 means unknown.
	ContentLength int64
}

// SubPath joins the captured segments back into the escaped sub-path.
func (r *ForwardRequest) SubPath() string {
	return strings.Join(r.Segments, "/")
}

// ForwardResponse represents the upstream response to be streamed back.
type ForwardResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// SplitSubPath splits an escaped sub-path into its segments. Empty segments
// are kept so that joining the result reproduces the input exactly.
func SplitSubPath(subPath string) []string {
	if subPath == "" {
		return nil
	}
	return strings.Split(subPath, "/")
}

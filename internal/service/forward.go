// Package service implements the core forwarding logic.
package service

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"upstream-gateway/internal/client"
	"upstream-gateway/internal/config"
	"upstream-gateway/internal/httpheader"
	"upstream-gateway/internal/model"
)

// blockedResponseHeaders scope a policy to the gateway's own origin and must
// not constrain proxied content.
var blockedResponseHeaders = []string{
	"Content-Security-Policy",
	"Content-Security-Policy-Report-Only",
	"X-Frame-Options",
}

// ForwardService relays requests to the configured upstream origin.
type ForwardService struct {
	client  *client.UpstreamClient
	logger  *slog.Logger
	baseURL string
}

// NewForwardService creates a ForwardService.
func NewForwardService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger) (*ForwardService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream base_url %q must be absolute", cfg.Upstream.BaseURL)
	}

	return &ForwardService{
		client:  c,
		logger:  logger.With("component", "forward_service"),
		baseURL: strings.TrimRight(cfg.Upstream.BaseURL, "/"),
	}, nil
}

// Forward sends a ForwardRequest to the upstream origin and returns the response.
// The caller is responsible for closing the response body.
//
// Exactly one upstream attempt is made. The request context bounds the call,
// so a caller that goes away cancels it.
func (s *ForwardService) Forward(fr *model.ForwardRequest) (*model.ForwardResponse, error) {
	upstreamURL := s.buildUpstreamURL(fr.Segments, fr.RawQuery)
	header := FilterRequestHeaders(fr.Header)

	var body io.Reader
	contentLength := int64(0)
	if carriesBody(fr.Method) && fr.Body != nil {
		body = fr.Body
		contentLength = fr.ContentLength
	}

	s.logger.Debug("forwarding request",
		"method", fr.Method,
		"sub_path", fr.SubPath(),
	)

	resp, err := s.client.DoStream(fr.Ctx, fr.Method, upstreamURL, header, body, contentLength)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	resp.Header = FilterResponseHeaders(resp.Header)
	return resp, nil
}

// buildUpstreamURL appends the escaped sub-path and the raw query to the base
// URL verbatim; nothing is decoded or re-encoded on the way.
func (s *ForwardService) buildUpstreamURL(segments []string, rawQuery string) string {
	var b strings.Builder
	b.WriteString(s.baseURL)
	b.WriteByte('/')
	b.WriteString(strings.Join(segments, "/"))
	if rawQuery != "" {
		b.WriteByte('?')
		b.WriteString(rawQuery)
	}
	return b.String()
}

// carriesBody reports whether a method conventionally sends a request body.
func carriesBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}

// FilterRequestHeaders copies the inbound headers minus Host, so the gateway's
// own host never reaches upstream.
func FilterRequestHeaders(src http.Header) http.Header {
	return httpheader.CloneWithout(src, "Host")
}

// FilterResponseHeaders copies the upstream headers minus the response
// blocklist and any hop-by-hop headers. The gateway error marker is dropped
// too: only the gateway itself may set it.
func FilterResponseHeaders(src http.Header) http.Header {
	dst := httpheader.CloneWithout(src, blockedResponseHeaders...)
	httpheader.Remove(dst, model.HeaderGatewayError)
	httpheader.StripHopByHop(dst)
	return dst
}

package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"upstream-gateway/internal/client"
	"upstream-gateway/internal/config"
	"upstream-gateway/internal/model"
	"upstream-gateway/internal/service"
)

// statusClientClosedRequest is the nginx convention for a caller that hung
// up before the response was ready. It only ever reaches logs and metrics.
const statusClientClosedRequest = 499

// queryPattern matches the query part of URLs embedded in error messages.
var queryPattern = regexp.MustCompile(`(https?://[^\s"?]+)\?[^\s"]*`)

// GatewayHandler relays requests under the mount path to the upstream origin.
type GatewayHandler struct {
	service   *service.ForwardService
	logger    *slog.Logger
	mountPath string
}

// NewGatewayHandler creates a GatewayHandler.
func NewGatewayHandler(svc *service.ForwardService, cfg *config.Config, logger *slog.Logger) *GatewayHandler {
	return &GatewayHandler{
		service:   svc,
		logger:    logger.With("component", "gateway_handler"),
		mountPath: cfg.Gateway.MountPath,
	}
}

// Handle forwards the request to upstream and streams the response back with
// upstream's status, filtered headers and unmodified body.
func (h *GatewayHandler) Handle(c echo.Context) error {
	req := c.Request()

	subPath := h.subPath(c)
	if subPath == "" {
		return echo.ErrNotFound
	}

	fr := &model.ForwardRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		Segments:      model.SplitSubPath(subPath),
		RawQuery:      req.URL.RawQuery,
		Header:        req.Header,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}

	resp, err := h.service.Forward(fr)
	if err != nil {
		return h.mapError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	dst := c.Response().Header()
	for key, vals := range resp.Header {
		dst[key] = vals
	}

	c.Response().WriteHeader(resp.StatusCode)

	var w io.Writer = c.Response()
	if isStreaming(resp.Header) {
		w = flushWriter{c.Response()}
	}

	// Once the status is out a failed copy can only be logged; the caller
	// sees a truncated body.
	if n, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", sanitizeError(err),
			"path", req.URL.Path,
			"copied", humanize.IBytes(uint64(n)),
		)
	}

	return nil
}

// subPath returns the wildcard suffix exactly as the caller escaped it.
func (h *GatewayHandler) subPath(c echo.Context) string {
	if rest, ok := strings.CutPrefix(c.Request().URL.EscapedPath(), h.mountPath+"/"); ok {
		return rest
	}
	return c.Param("*")
}

func (h *GatewayHandler) mapError(c echo.Context, err error) error {
	// Errors raised by our own middleware, such as the body limit tripping
	// mid-upload, keep their status.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	kind := client.Kind(err)
	status := http.StatusBadGateway
	msg := "upstream request failed"

	switch {
	case errors.Is(err, client.ErrCallerAborted):
		h.logger.Info("caller aborted",
			"path", c.Request().URL.Path,
		)
		c.Response().Header().Set(model.HeaderGatewayError, kind)
		return c.NoContent(statusClientClosedRequest)
	case errors.Is(err, client.ErrUpstreamTimeout):
		status, msg = http.StatusGatewayTimeout, "upstream request timed out"
	case errors.Is(err, client.ErrUpstreamUnreachable):
		msg = "upstream host unreachable"
	case errors.Is(err, client.ErrUpstreamProtocol):
		msg = "upstream returned an invalid response"
	}

	h.logger.Error("gateway error",
		"err", sanitizeError(err),
		"kind", kind,
		"path", c.Request().URL.Path,
	)

	c.Response().Header().Set(model.HeaderGatewayError, kind)
	return c.JSON(status, map[string]any{
		"success": false,
		"code":    kind,
		"error":   msg,
	})
}

// sanitizeError drops query strings from URLs in error messages; callers put
// tokens there.
func sanitizeError(err error) string {
	return queryPattern.ReplaceAllString(err.Error(), "${1}?[REDACTED]")
}

// isStreaming reports whether the response is an incremental stream that
// must reach the caller as it arrives.
func isStreaming(h http.Header) bool {
	mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "text/event-stream" || mediaType == "application/x-ndjson"
}

// flushWriter flushes after every write.
type flushWriter struct {
	res *echo.Response
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.res.Write(p)
	f.res.Flush()
	return n, err
}

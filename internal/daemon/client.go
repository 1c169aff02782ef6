// Package daemon talks to a locally running walrus daemon over its HTTP API
// (walrus ... daemon -b 127.0.0.1:8899).
package daemon

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/walrus-tools/walrusctl/internal/observability"
	"github.com/walrus-tools/walrusctl/internal/walrus"
)

// Client is an HTTP client for the daemon's /v1 endpoints.
type Client struct {
	baseURL string
	hc      *http.Client
	metrics *observability.Metrics
}

// New creates a daemon client for the given host:port address.
func New(addr string, metrics *observability.Metrics) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 5 * time.Minute},
		metrics: metrics,
	}
}

// Store uploads data for the given number of epochs via
// PUT /v1/store?epochs=N and returns the normalized store result.
func (c *Client) Store(ctx context.Context, data []byte, epochs int) (result *walrus.StoreResult, err error) {
	op, ctx := observability.StartOperation(ctx, c.metrics, "daemon.store",
		attribute.Int("size", len(data)), attribute.Int("epochs", epochs))
	defer func() { op.End(err) }()

	u := c.baseURL + "/v1/store?epochs=" + strconv.Itoa(epochs)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	c.metrics.AddBytes("upload", len(data))
	return walrus.ParseStoreResponse(body)
}

// Read downloads the blob with the given textual id via GET /v1/{blobId}.
func (c *Client) Read(ctx context.Context, blobID string) (data []byte, err error) {
	op, ctx := observability.StartOperation(ctx, c.metrics, "daemon.read",
		attribute.String("blob_id", blobID))
	defer func() { op.End(err) }()

	u := c.baseURL + "/v1/" + url.PathEscape(blobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build read request: %w", err)
	}

	data, err = c.do(req)
	if err != nil {
		return nil, err
	}
	c.metrics.AddBytes("download", len(data))
	return data, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, bodyExcerpt(body))
	}
	return body, nil
}

func bodyExcerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	const max = 200
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}

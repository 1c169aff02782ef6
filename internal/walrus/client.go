// Package walrus drives the walrus client binary in its JSON mode: one
// command document on stdin, one JSON reply on stdout.
package walrus

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/walrus-tools/walrusctl/internal/observability"
)

// Client invokes the walrus binary for store and read commands.
type Client struct {
	bin        string
	configPath string
	metrics    *observability.Metrics
}

// New creates a JSON-mode client. configPath may be empty, in which case the
// binary falls back to its own default config resolution.
func New(bin, configPath string, metrics *observability.Metrics) *Client {
	return &Client{bin: bin, configPath: configPath, metrics: metrics}
}

type commandEnvelope struct {
	Config  string  `json:"config,omitempty"`
	Command command `json:"command"`
}

type command struct {
	Store *storeCommand `json:"store,omitempty"`
	Read  *readCommand  `json:"read,omitempty"`
}

type storeCommand struct {
	File   string `json:"file"`
	Epochs int    `json:"epochs"`
}

type readCommand struct {
	BlobID string `json:"blobId"`
}

// Store uploads the file at path for the given number of epochs and returns
// the resulting blob id and certificate object id.
func (c *Client) Store(ctx context.Context, path string, epochs int) (result *StoreResult, err error) {
	op, ctx := observability.StartOperation(ctx, c.metrics, "walrus.store",
		attribute.String("file", path), attribute.Int("epochs", epochs))
	defer func() { op.End(err) }()

	req := commandEnvelope{
		Config:  c.configPath,
		Command: command{Store: &storeCommand{File: path, Epochs: epochs}},
	}
	out, err := c.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseStoreResponse(out)
}

// Read downloads the blob with the given textual id.
func (c *Client) Read(ctx context.Context, blobID string) (data []byte, err error) {
	op, ctx := observability.StartOperation(ctx, c.metrics, "walrus.read",
		attribute.String("blob_id", blobID))
	defer func() { op.End(err) }()

	req := commandEnvelope{
		Config:  c.configPath,
		Command: command{Read: &readCommand{BlobID: blobID}},
	}
	out, err := c.run(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp readResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("decode read response: %w", err)
	}
	if resp.Blob == "" {
		return nil, fmt.Errorf("read response for %s carries no blob", blobID)
	}
	data, err = base64.StdEncoding.DecodeString(resp.Blob)
	if err != nil {
		return nil, fmt.Errorf("decode blob payload: %w", err)
	}
	c.metrics.AddBytes("download", len(data))
	return data, nil
}

type readResponse struct {
	BlobID string `json:"blobId"`
	Blob   string `json:"blob"`
}

func (c *Client) run(ctx context.Context, req commandEnvelope) ([]byte, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode walrus command: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.bin, "json")
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s json: %w%s", c.bin, err, stderrExcerpt(&stderr))
	}
	return bytes.TrimSpace(stdout.Bytes()), nil
}

func stderrExcerpt(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return ""
	}
	const max = 300
	if len(s) > max {
		s = s[:max] + "…"
	}
	return ": " + s
}

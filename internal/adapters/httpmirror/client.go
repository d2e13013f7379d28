// Package httpmirror pushes trip snapshots to a remote planner endpoint over
// HTTP. The remote copy is advisory only: responses are drained and
// discarded, and a failed push leaves local state untouched.
package httpmirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trip-trio/trip-planner-api/internal/domain"
)

const defaultTimeout = 5 * time.Second

type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a mirror client for the given base URL, e.g.
// "http://localhost:6969". The trailing slash, if any, is stripped.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// The remote endpoints take the whole trip as the body; the update endpoint
// shallow-merges it over the stored copy by id.
func (c *Client) CreateTrip(ctx context.Context, t domain.Trip) error {
	return c.post(ctx, "/create-trip", t)
}

func (c *Client) UpdateTrip(ctx context.Context, t domain.Trip) error {
	return c.post(ctx, "/update-trip", t)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", path, res.StatusCode)
	}
	return nil
}

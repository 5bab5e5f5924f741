package dm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BCDA-APS/beamtools/internal/infrastructure/config"
)

const (
	defaultRequestTimeout = 10 * time.Second

	// stationKeyHeader carries the station's API key. The key is opaque to
	// this client; the DM service owns its format.
	stationKeyHeader = "DM-Station-Key"
)

// Client is a thin REST client for the DM workflow owner API.
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	url        string
	stationKey string
	owner      string
	httpClient *http.Client
}

// NewClient creates a client from the DM configuration section.
func NewClient(cfg config.DMConfig) *Client {
	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		stationKey: cfg.StationKey,
		owner:      cfg.WorkflowOwner,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// Owner returns the configured workflow owner account.
func (c *Client) Owner() string { return c.owner }

// submitRequest is the POST /jobs payload.
type submitRequest struct {
	Workflow string         `json:"workflowName"`
	Owner    string         `json:"owner"`
	Args     map[string]any `json:"args,omitempty"`
}

// SubmitJob submits one workflow execution and returns the created job.
func (c *Client) SubmitJob(ctx context.Context, workflow string, args map[string]any) (*Job, error) {
	body, err := json.Marshal(submitRequest{
		Workflow: workflow,
		Owner:    c.owner,
		Args:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("dm: encode submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.url+"/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// JobStatus fetches the current state of a submitted job.
func (c *Client) JobStatus(ctx context.Context, id string) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url+"/jobs/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Job, error) {
	if c.stationKey != "" {
		req.Header.Set(stationKeyHeader, c.stationKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrJobNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// Keep a short error excerpt; DM error bodies are one-line JSON.
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: %s: %s", ErrRequestFailed, resp.Status,
			strings.TrimSpace(string(excerpt)))
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("dm: decode job: %w", err)
	}
	return &job, nil
}

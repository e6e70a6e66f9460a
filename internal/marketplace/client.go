package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides access to the job-marketplace HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Protocol = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a marketplace client.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("marketplace base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("marketplace api key required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// State fetches the current jobs and inventory snapshot.
func (c *Client) State(ctx context.Context) (*State, error) {
	var payload State
	if err := c.get(ctx, "/state", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SearchAgents finds counterparty agents matching the query string.
func (c *Client) SearchAgents(ctx context.Context, query string) ([]Agent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)

	var payload struct {
		Agents []Agent `json:"agents"`
	}
	if err := c.get(ctx, "/agents", params, &payload); err != nil {
		return nil, err
	}
	return payload.Agents, nil
}

// InitiateJob opens a job against an agent. The protocol assigns the job id
// asynchronously; callers discover it by diffing active-job snapshots.
func (c *Client) InitiateJob(ctx context.Context, req InitiateRequest) error {
	if strings.TrimSpace(req.AgentWallet) == "" {
		return errors.New("agent wallet required")
	}
	if strings.TrimSpace(req.Desc) == "" {
		return errors.New("job description required")
	}
	return c.post(ctx, "/jobs", req, nil)
}

// PayJob settles an open job.
func (c *Client) PayJob(ctx context.Context, jobID int64, amount int64) error {
	if jobID <= 0 {
		return errors.New("job id must be positive")
	}
	body := map[string]int64{"amount": amount}
	return c.post(ctx, fmt.Sprintf("/jobs/%d/pay", jobID), body, nil)
}

// DeliverJob submits an artifact for a job where this process is the seller.
func (c *Client) DeliverJob(ctx context.Context, jobID int64, artifactType ArtifactType, value string) error {
	if jobID <= 0 {
		return errors.New("job id must be positive")
	}
	body := map[string]string{"type": string(artifactType), "value": value}
	return c.post(ctx, fmt.Sprintf("/jobs/%d/deliver", jobID), body, nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse marketplace url: %w", err)
	}
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("marketplace %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode marketplace response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse marketplace url: %w", err)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("marketplace %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode marketplace response: %w", err)
	}
	return nil
}

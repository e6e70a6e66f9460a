package media

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

	"brandforge/internal/services"
)

// Kind selects the media type a generation job produces.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Job describes a generation job on the media API.
type Job struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

const (
	statusDone   = "done"
	statusFailed = "failed"
)

// Client provides access to the image/video generation HTTP API. Generation
// is asynchronous: CreateJob submits a prompt and Wait polls until the
// artifact URL is available or the polling budget is exhausted.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	pollAttempts int
	pollDelay    time.Duration
}

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

// WithPollBudget sets the polling attempt cap and the fixed delay between
// attempts.
func WithPollBudget(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.pollAttempts = attempts
		}
		if delay > 0 {
			c.pollDelay = delay
		}
	}
}

// New creates a media generation client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("media base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("media api key required")
	}
	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollAttempts: 10,
		pollDelay:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CreateJob submits a generation prompt and returns the assigned job id.
func (c *Client) CreateJob(ctx context.Context, kind Kind, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	body := map[string]string{"kind": string(kind), "prompt": prompt}
	var job Job
	if err := c.post(ctx, "/jobs", body, &job); err != nil {
		return "", err
	}
	if job.ID == "" {
		return "", errors.New("media api returned no job id")
	}
	return job.ID, nil
}

// Wait polls the job until it produces an artifact URL. A job that reports
// failure or outlives the polling budget returns an error; the budget case is
// a timeout so callers can distinguish it from a hard failure.
func (c *Client) Wait(ctx context.Context, jobID string) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", errors.New("job id must not be empty")
	}

	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.pollDelay):
			}
		}

		var job Job
		if err := c.get(ctx, "/jobs/"+url.PathEscape(jobID), &job); err != nil {
			return "", err
		}
		switch job.Status {
		case statusDone:
			if job.URL == "" {
				return "", fmt.Errorf("media job %s done without artifact url", jobID)
			}
			return job.URL, nil
		case statusFailed:
			return "", fmt.Errorf("media job %s failed", jobID)
		}
	}

	return "", services.Wrap(services.ErrTimeout, "media", "wait",
		fmt.Sprintf("job %s not done after %d polls", jobID, c.pollAttempts), nil)
}

// Generate submits a prompt and blocks until the artifact URL is ready.
func (c *Client) Generate(ctx context.Context, kind Kind, prompt string) (string, error) {
	jobID, err := c.CreateJob(ctx, kind, prompt)
	if err != nil {
		return "", err
	}
	return c.Wait(ctx, jobID)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
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
		return fmt.Errorf("media api %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode media response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
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
		return fmt.Errorf("media api %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode media response: %w", err)
	}
	return nil
}

package vidu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"vidu-cli/internal/config"
)

const downloadChunkSize = 8 * 1024

// Client talks to the image-to-video API. The credential and base URL are
// explicit fields so nothing in this package reads the environment.
type Client struct {
	APIKey  string
	BaseURL string

	// HTTPClient serves submit and status calls; DownloadClient serves
	// media downloads and carries a longer timeout.
	HTTPClient     *http.Client
	DownloadClient *http.Client

	// Verbose enables per-attempt discovery logging to LogWriter.
	Verbose   bool
	LogWriter io.Writer
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		APIKey:         cfg.APIKey,
		BaseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient:     &http.Client{Timeout: 60 * time.Second},
		DownloadClient: &http.Client{Timeout: 2 * time.Minute},
		LogWriter:      os.Stderr,
	}
}

// APIError is a non-success HTTP response from the service. Body keeps the
// raw response bytes so callers can pretty-print JSON error payloads.
type APIError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(string(e.Body))
	if msg == "" {
		return fmt.Sprintf("request failed: %s", e.Status)
	}
	return fmt.Sprintf("request failed: %s: %s", e.Status, msg)
}

// ErrAllEndpointsFailed means no status candidate produced a usable answer.
var ErrAllEndpointsFailed = errors.New("failed to query generation status (all tried endpoints)")

// SubmitURL is the endpoint a Submit call will POST to.
func (c *Client) SubmitURL() string {
	return c.BaseURL + "/img2video"
}

// Submit issues a single image-to-video generation request. The request is
// validated locally first; nothing goes on the wire for an invalid request.
// There is no retry: transport errors and non-2xx statuses are returned
// directly.
func (c *Client) Submit(ctx context.Context, genReq *GenerationRequest) (map[string]any, error) {
	if err := genReq.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SubmitURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read submit response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("submit response is not valid JSON: %w: %s", err, truncate(string(body), 1000))
	}
	return decoded, nil
}

// TaskStatus is one usable answer from the status API.
type TaskStatus struct {
	Body map[string]any
	// ViaURL is the endpoint that produced the answer.
	ViaURL string
}

// QueryTask asks the service about a task, trying candidate endpoint shapes
// in a fixed order until one returns an HTTP success with a JSON body. A
// transport error, error status, or unparseable body just moves discovery to
// the next candidate. With an override only that single endpoint is tried.
func (c *Client) QueryTask(ctx context.Context, taskID string, override *EndpointOverride) (TaskStatus, error) {
	var attempts []statusAttempt
	if override != nil {
		attempts = []statusAttempt{override.attempt(taskID)}
	} else {
		attempts = statusAttempts(c.BaseURL, taskID)
	}

	var lastStatus string
	var lastBody string
	var lastURL string

	for _, attempt := range attempts {
		resp, err := c.doAttempt(ctx, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return TaskStatus{}, ctx.Err()
			}
			c.logf("request error for %s %s: %v", attempt.Method, attempt.URL, err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if readErr != nil {
			c.logf("read error for %s %s: %v", attempt.Method, attempt.URL, readErr)
			continue
		}

		c.logf("tried %s %s -> %d", attempt.Method, attempt.URL, resp.StatusCode)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastStatus = resp.Status
			lastBody = truncate(string(body), 1000)
			lastURL = attempt.URL
			continue
		}

		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			c.logf("response from %s was not valid JSON: %s", attempt.URL, truncate(string(body), 1000))
			continue
		}
		return TaskStatus{Body: decoded, ViaURL: attempt.URL}, nil
	}

	if lastURL != "" {
		c.logf("last failure %s from %s: %s", lastStatus, lastURL, lastBody)
	}
	return TaskStatus{}, ErrAllEndpointsFailed
}

func (c *Client) doAttempt(ctx context.Context, attempt statusAttempt) (*http.Response, error) {
	var reqBody io.Reader
	if attempt.Body != nil {
		payload, err := json.Marshal(attempt.Body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, attempt.Method, attempt.URL, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.APIKey)
	if attempt.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.HTTPClient.Do(req)
}

// Download streams a remote file to dest in fixed-size chunks, overwriting
// any existing file.
func (c *Client) Download(ctx context.Context, fileURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.DownloadClient.Do(req)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("download failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return out.Close()
}

func (c *Client) logf(format string, args ...any) {
	if !c.Verbose || c.LogWriter == nil {
		return
	}
	fmt.Fprintf(c.LogWriter, format+"\n", args...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

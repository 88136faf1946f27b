// Package client is the Go SDK for the LeaseLens REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leaselens/leaselens/internal/application/qa"
	"github.com/leaselens/leaselens/internal/application/search"
	"github.com/leaselens/leaselens/internal/domain/lease"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"requestId"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("leaselens: %s (HTTP %d): %s [request_id=%s]",
		e.Code, e.StatusCode, e.Message, e.RequestID)
}

// IsNotFound reports whether the server answered 404.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// Client talks to one LeaseLens server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client for the given base URL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("client: baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid baseURL: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Analyze submits extracted clauses for analysis and returns the result.
func (c *Client) Analyze(ctx context.Context, leaseID string, clauses []lease.ExtractedClause) (*lease.AnalysisResult, error) {
	body := map[string]interface{}{"clauses": clauses}
	var result lease.AnalysisResult
	err := c.do(ctx, http.MethodPost, "/api/v1/leases/"+url.PathEscape(leaseID)+"/analysis", body, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAnalysis fetches the stored analysis of a lease.
func (c *Client) GetAnalysis(ctx context.Context, leaseID string) (*lease.AnalysisResult, error) {
	var result lease.AnalysisResult
	err := c.do(ctx, http.MethodGet, "/api/v1/leases/"+url.PathEscape(leaseID)+"/analysis", nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchResponse is the /search payload.
type SearchResponse struct {
	Results []search.Result `json:"results"`
	Total   int             `json:"total"`
}

// Search runs one enhanced clause search.
func (c *Client) Search(ctx context.Context, q search.Query) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ask submits one question about an analyzed lease.
func (c *Client) Ask(ctx context.Context, leaseID, userID, question string) (*qa.Answer, error) {
	body := map[string]string{"userId": userID, "question": question}
	var answer qa.Answer
	err := c.do(ctx, http.MethodPost, "/api/v1/leases/"+url.PathEscape(leaseID)+"/questions", body, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// History fetches the conversation history for a lease and user.
func (c *Client) History(ctx context.Context, leaseID, userID string) (*lease.Conversation, error) {
	path := "/api/v1/leases/" + url.PathEscape(leaseID) + "/conversation?userId=" + url.QueryEscape(userID)
	var conv lease.Conversation
	if err := c.do(ctx, http.MethodGet, path, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ComponentStatus is one dependency's probe result in a health report.
type ComponentStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthStatus is the server's readiness report.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

// Ready reports whether every component is healthy.
func (s *HealthStatus) Ready() bool { return s.Status == "ready" }

// Health probes the server's readiness endpoint. A degraded server still
// yields a report; the error is non-nil only when the endpoint itself is
// unreachable or unparseable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: GET /readyz: %w", err)
	}
	defer resp.Body.Close()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("client: decode health report: %w", err)
	}
	return &status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
		var envelope struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

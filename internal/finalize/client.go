// Package finalize records a subtask's completion on the remote service.
// One call is one POST; the caller decides what to do with the outcome.
package finalize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/version"
)

// Reason codes produced locally rather than by the server.
const (
	CodeAlreadyDone  = "ALREADY_DONE"
	CodeAuthRequired = "AUTH_REQUIRED"
	CodeBadResponse  = "BAD_RESPONSE"
	CodeNetworkError = "NETWORK_ERROR"
	CodeNotOK        = "NOT_OK"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Kind classifies an Outcome.
type Kind int

const (
	Rejected Kind = iota
	Accepted
	AlreadyDone
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case AlreadyDone:
		return "already_done"
	}
	return "rejected"
}

// Outcome is the interpreted server answer. Reason is set only for Rejected.
type Outcome struct {
	Kind   Kind
	Reason string
}

// Succeeded reports whether the server recorded the completion, now or before.
func (o Outcome) Succeeded() bool {
	return o.Kind == Accepted || o.Kind == AlreadyDone
}

func (o Outcome) String() string {
	if o.Kind == Rejected {
		return "rejected(" + o.Reason + ")"
	}
	return o.Kind.String()
}

// Reject builds a rejected outcome.
func Reject(reason string) Outcome {
	return Outcome{Kind: Rejected, Reason: reason}
}

// Completer is what the orchestrator needs from a Client.
type Completer interface {
	Complete(ctx context.Context, subtaskKey, phone, token string, payload map[string]any) Outcome
}

type request struct {
	Phone      string         `json:"phone"`
	SubtaskKey string         `json:"subtaskKey"`
	Payload    map[string]any `json:"payload"`
}

type response struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}

// Client posts completion envelopes to a single endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the transport timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client posting to url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ Completer = (*Client)(nil)

// Complete issues exactly one POST and interprets the answer. Missing
// credentials are rejected with AUTH_REQUIRED before any network access.
// There are no retries.
func (c *Client) Complete(ctx context.Context, subtaskKey, phone, token string, payload map[string]any) Outcome {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(phone) == "" {
		return Reject(CodeAuthRequired)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	body, err := json.Marshal(request{Phone: phone, SubtaskKey: subtaskKey, Payload: payload})
	if err != nil {
		c.logger.Error("failed to encode completion request", "subtask", subtaskKey, "error", err)
		return Reject(CodeBadResponse)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to build completion request", "subtask", subtaskKey, "error", err)
		return Reject(CodeNetworkError)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", "phoenix/"+version.Version)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("completion request failed", "subtask", subtaskKey, "request_id", requestID, "error", err)
		return Reject(CodeNetworkError)
	}
	defer resp.Body.Close()

	outcome := interpret(resp)
	c.logger.Info("completion request finished",
		"subtask", subtaskKey,
		"request_id", requestID,
		"status", resp.StatusCode,
		"outcome", outcome.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome
}

// interpret applies the fixed rule: an ALREADY_DONE error wins, then a 2xx
// with ok=true is accepted, anything else is rejected with the most
// specific code available.
func interpret(resp *http.Response) Outcome {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if err != nil {
		return Reject(CodeNetworkError)
	}

	var body response
	if jsonErr := json.Unmarshal(data, &body); jsonErr != nil {
		if success {
			return Reject(CodeBadResponse)
		}
		return Reject(httpCode(resp.StatusCode))
	}

	if body.Error == CodeAlreadyDone {
		return Outcome{Kind: AlreadyDone}
	}
	if body.Error != "" {
		return Reject(body.Error)
	}
	if !success {
		return Reject(httpCode(resp.StatusCode))
	}
	if body.OK == nil || !*body.OK {
		return Reject(CodeNotOK)
	}
	return Outcome{Kind: Accepted}
}

func httpCode(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}

// Package workflow implements the client for the remote workflow-invocation
// endpoint.
//
// The endpoint exposes a single primitive: POST a JSON body
// {input, enableStreaming, sessionId} to /workflows/{id}/invoke with a bearer
// credential. With streaming enabled the response is a server-sent-event
// stream of message / function_call / error records; with streaming disabled
// it is a single JSON result object. Both modes are the same protocol, so
// both live on the same client.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tickerchat/model"
)

// Config holds the client configuration.
type Config struct {
	BaseURL    string // e.g. "https://api.superagent.example"
	WorkflowID string
	APIKey     string
	HTTPClient *http.Client // optional; a streaming-safe default is used when nil
}

// Client talks to one workflow. Construct it once at process start and pass
// it to collaborators; there is no package-level instance.
type Client struct {
	baseURL    string
	workflowID string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Entry
}

var _ model.Invoker = (*Client)(nil)

// invokeBody is the JSON request body for both invocation modes.
type invokeBody struct {
	Input           string `json:"input"`
	EnableStreaming bool   `json:"enableStreaming"`
	SessionID       string `json:"sessionId"`
}

// NewClient creates a workflow client.
//
// Returns an error if the base URL, workflow ID, or API key is missing. The
// default HTTP client has no overall timeout: a streaming invocation stays
// open for as long as the workflow runs, so liveness is governed by the
// transport (and by the caller's context).
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("workflow API base URL is required")
	}
	if cfg.WorkflowID == "" {
		return nil, fmt.Errorf("workflow ID is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("workflow API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		workflowID: cfg.WorkflowID,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		log:        logrus.WithField("component", "workflow"),
	}, nil
}

func (c *Client) invokeURL() string {
	return fmt.Sprintf("%s/workflows/%s/invoke", c.baseURL, c.workflowID)
}

func (c *Client) newRequest(ctx context.Context, req model.InvokeRequest, streaming bool) (*http.Request, error) {
	body, err := json.Marshal(invokeBody{
		Input:           req.Input,
		EnableStreaming: streaming,
		SessionID:       req.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoke body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build invoke request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if streaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	return httpReq, nil
}

// Invoke implements model.Invoker.Invoke.
//
// Events are delivered strictly in arrival order on the calling goroutine.
// Cancellation is cooperative: after ctx is canceled the next read fails and
// Invoke returns ctx's error, but a record already buffered may still reach
// OnEvent first.
func (c *Client) Invoke(ctx context.Context, req model.InvokeRequest, cb model.StreamCallbacks) error {
	httpReq, err := c.newRequest(ctx, req, true)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to open stream: %s", resp.Status)
	}

	c.log.WithFields(logrus.Fields{
		"session": req.SessionID,
		"status":  resp.StatusCode,
	}).Debug("stream opened")

	if cb.OnOpen != nil {
		cb.OnOpen()
	}

	scanner := newEventScanner(resp.Body)
	for {
		ev, err := scanner.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Prefer the cancellation cause over the wrapped read error so
			// callers can distinguish an abort from a transport failure.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream read failed: %w", err)
		}
		if cb.OnEvent != nil {
			if err := cb.OnEvent(ev); err != nil {
				return err
			}
		}
	}

	c.log.WithFields(logrus.Fields{
		"session": req.SessionID,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("stream closed")

	if cb.OnClose != nil {
		cb.OnClose()
	}
	return nil
}

// InvokeSync implements model.Invoker.InvokeSync.
func (c *Client) InvokeSync(ctx context.Context, req model.InvokeRequest) (json.RawMessage, error) {
	httpReq, err := c.newRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"session": req.SessionID,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("workflow responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to send message: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("workflow returned invalid JSON")
	}
	return json.RawMessage(data), nil
}

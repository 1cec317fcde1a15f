package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"docs-agent/config"
	"docs-agent/web/types"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrContextWindowExceeded is returned when the model reports the prompt
// exceeds the available context size.
var ErrContextWindowExceeded = errors.New("context window exceeded")

type reasoningParams struct {
	Effort string `json:"effort"`
}

type responseRequest struct {
	Model           string               `json:"model"`
	Instructions    string               `json:"instructions,omitempty"`
	Input           []types.AgentMessage `json:"input"`
	Stream          bool                 `json:"stream,omitempty"`
	Reasoning       *reasoningParams     `json:"reasoning,omitempty"`
	MaxOutputTokens int                  `json:"max_output_tokens,omitempty"`
}

type responseBody struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ResponseOptions carries the per-request knobs the agent controls.
type ResponseOptions struct {
	Model           string
	Instructions    string
	ReasoningEffort string // "low", "medium", "high"; empty = server default
	MaxOutputTokens int
}

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	// Use a client with the configured timeout; streaming requests rely on context
	// cancellation or the server closing the stream.
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
}

// CreateResponse performs a non-streaming Responses API call and returns the
// concatenated output text.
func (c *Client) CreateResponse(ctx context.Context, input []types.AgentMessage, opts ResponseOptions) (string, error) {
	reqBody := c.buildRequest(input, opts, false)
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal response request: %w", err)
	}

	url := c.cfg.OpenAIBaseURL + "/v1/responses"

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := c.newRequest(ctx, url, jsonBody)
		if err != nil {
			return "", err
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			// Do not retry on context cancellation/deadline
			if ctx.Err() != nil {
				break
			}
			c.logger.Warn("Responses API transport error, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
		} else if retryableStatus(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.logger.Warn("Responses API transient failure, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			resp = nil
			continue
		} else {
			break
		}
	}
	if resp == nil {
		return "", fmt.Errorf("no response from model API: %w", lastErr)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isContextWindowError(string(bodyBytes)) {
			return "", ErrContextWindowExceeded
		}
		return "", fmt.Errorf("model API status %s: %s", resp.Status, string(bodyBytes))
	}

	var rb responseBody
	if err := json.Unmarshal(bodyBytes, &rb); err != nil {
		return "", fmt.Errorf("decode response body: %w", err)
	}
	if rb.Error != nil {
		return "", fmt.Errorf("model API error: %s", rb.Error.Message)
	}

	var out strings.Builder
	for _, item := range rb.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				out.WriteString(part.Text)
			}
		}
	}
	return out.String(), nil
}

// StreamResponse performs a streaming Responses API call, invoking onDelta
// for each output text fragment. It blocks until the stream ends and returns
// transport failures, non-200 statuses after retries, and stream-reported
// failures, so callers can tell an upstream outage from an empty answer.
func (c *Client) StreamResponse(ctx context.Context, input []types.AgentMessage, opts ResponseOptions, onDelta func(string)) error {
	reqBody := c.buildRequest(input, opts, true)
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal response request: %w", err)
	}

	url := c.cfg.OpenAIBaseURL + "/v1/responses"

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := c.newRequest(ctx, url, jsonBody)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "text/event-stream")

		r, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("Responses API transport error for stream, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		}

		if retryableStatus(r.StatusCode) {
			lastErr = fmt.Errorf("model API status %s", r.Status)
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			c.logger.Warn("Responses API unavailable for stream, retrying",
				zap.Int("status", r.StatusCode),
				zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		}

		resp = r
		break
	}
	if resp == nil {
		return fmt.Errorf("no response from model API: %w", lastErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		bodyString := string(bodyBytes)
		if isContextWindowError(bodyString) {
			return ErrContextWindowExceeded
		}
		return fmt.Errorf("model API status %s: %s", resp.Status, bodyString)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "response.output_text.delta":
			if ev.Delta != "" {
				onDelta(ev.Delta)
			}
		case "response.failed", "error":
			if ev.Error != nil {
				return fmt.Errorf("model stream failed: %s", ev.Error.Message)
			}
			return fmt.Errorf("model stream failed")
		case "response.completed":
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read response stream: %w", err)
	}
	return nil
}

func (c *Client) buildRequest(input []types.AgentMessage, opts ResponseOptions, stream bool) responseRequest {
	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxOutputTokens
	}
	req := responseRequest{
		Model:           model,
		Instructions:    opts.Instructions,
		Input:           input,
		Stream:          stream,
		MaxOutputTokens: maxTokens,
	}
	if opts.ReasoningEffort != "" {
		req.Reasoning = &reasoningParams{Effort: opts.ReasoningEffort}
	}
	return req
}

func (c *Client) newRequest(ctx context.Context, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	return req, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusInternalServerError ||
		status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}

func isContextWindowError(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "context window") ||
		strings.Contains(lower, "maximum context length") ||
		strings.Contains(lower, "context_length_exceeded")
}

func (c *Client) backoffSleep(attempt int) {
	// Exponential backoff with small jitter and a configurable cap
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second // config normalization should prevent this
	}
	d := base * time.Duration(1<<attempt)
	maxWait := c.cfg.LLMBackoffMaxSeconds
	if maxWait > 0 && d > maxWait {
		d = maxWait
	}
	jitter := time.Duration(float64(d) * 0.1)
	time.Sleep(d - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter+1)))
}

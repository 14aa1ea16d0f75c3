// Package oracle is the Oracle Adapter: the single call boundary to the
// external LLM. It formulates prompts, enforces JSON-only
// responses for classifiers, retries once against a fallback model on
// non-quota errors, classifies failures, and writes a per-session trace
// log.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Message is one chat message in the wire request to the LLM endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body sent to the oracle's chat-completions
// style endpoint.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

// chatResponse is the subset of the response this adapter cares about.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client is the Oracle Adapter's HTTP boundary. One Client serves every
// classifier in the Dialogue Controller.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	model         string
	fallbackModel string
	apiKey        string
	backoffMin    time.Duration
	backoffMax    time.Duration
	logger        *slog.Logger
	tracer        *Tracer
}

// Config bundles the connection details a Client needs. Field names match
// config.LLMConfig/config.OracleConfig so callers can pass them through
// directly.
type Config struct {
	BaseURL       string
	Model         string
	FallbackModel string
	APIKey        string
	Timeout       time.Duration
	BackoffMin    time.Duration
	BackoffMax    time.Duration
}

// NewClient builds a Client writing traces under tracesDir.
func NewClient(cfg Config, tracesDir string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	backoffMin := cfg.BackoffMin
	if backoffMin <= 0 {
		backoffMin = 200 * time.Millisecond
	}
	backoffMax := cfg.BackoffMax
	if backoffMax <= 0 {
		backoffMax = 2 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		apiKey:        cfg.APIKey,
		backoffMin:    backoffMin,
		backoffMax:    backoffMax,
		logger:        slog.Default(),
		tracer:        NewTracer(tracesDir),
	}
}

// call performs one HTTP round trip against the given model and returns
// the assistant's raw content string.
func (c *Client) call(ctx context.Context, model string, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("oracle: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("oracle: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &CallError{Class: classifyTransportError(err), Op: model, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &CallError{Class: ClassOther, Op: model, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var parsed chatResponse
		quotaHint := false
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
			quotaHint = isQuotaHint(parsed.Error.Code, parsed.Error.Type, parsed.Error.Message)
		}
		class := classifyHTTPError(resp.StatusCode, quotaHint)
		return "", &CallError{Class: class, Op: model, Err: fmt.Errorf("oracle returned HTTP %d", resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &CallError{Class: ClassOther, Op: model, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &CallError{Class: ClassOther, Op: model, Err: fmt.Errorf("empty choices")}
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func isQuotaHint(code, typ, message string) bool {
	for _, s := range []string{code, typ, message} {
		l := strings.ToLower(s)
		if strings.Contains(l, "quota") || strings.Contains(l, "insufficient_quota") || strings.Contains(l, "billing") {
			return true
		}
	}
	return false
}

// jsonObjectGuard is prepended to the message list whenever a classifier
// requires a pure JSON object and none of the supplied messages already
// mentions "json".
const jsonObjectGuard = "Respond with a single JSON object only. No prose, no markdown fences, no commentary."

func ensureJSONGuard(messages []Message) []Message {
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m.Content), "json") {
			return messages
		}
	}
	guarded := make([]Message, 0, len(messages)+1)
	guarded = append(guarded, Message{Role: "system", Content: jsonObjectGuard})
	guarded = append(guarded, messages...)
	return guarded
}

// invokeJSON runs one classifier call: it guards the prompt, calls the
// primary model, retries once against the fallback model on any
// non-quota error, traces every attempt, and unmarshals the final JSON
// content into out.
func (c *Client) invokeJSON(ctx context.Context, sessionID, op, phase string, messages []Message, out any) error {
	guarded := ensureJSONGuard(messages)

	content, callErr := c.call(ctx, c.model, guarded)
	c.tracer.Write(sessionID, op, phase, guarded, content, callErr)

	if callErr != nil {
		var ce *CallError
		if asCallError(callErr, &ce) && isRetryable(ce.Class) && c.fallbackModel != "" && c.fallbackModel != c.model {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = c.backoffMin
			bo.MaxInterval = c.backoffMax
			bo.MaxElapsedTime = c.backoffMax
			// WithMaxRetries(bo, 0) stops after the first fallback call, so
			// the fallback model is tried exactly once, without a delay.

			var retryErr error
			retryErr = backoff.Retry(func() error {
				var err error
				content, err = c.call(ctx, c.fallbackModel, guarded)
				if err != nil {
					var innerCE *CallError
					if asCallError(err, &innerCE) && innerCE.Class == ClassQuotaExhausted {
						return backoff.Permanent(err)
					}
				}
				return err
			}, backoff.WithContext(backoff.WithMaxRetries(bo, 0), ctx))
			c.tracer.Write(sessionID, op, phase, guarded, content, retryErr)
			if retryErr != nil {
				return retryErr
			}
		} else {
			return callErr
		}
	}

	content = stripJSONFences(content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return &CallError{Class: ClassOther, Op: op, Err: fmt.Errorf("parse oracle JSON: %w", err)}
	}
	return nil
}

func asCallError(err error, target **CallError) bool {
	ce, ok := err.(*CallError)
	if !ok {
		return false
	}
	*target = ce
	return true
}

// stripJSONFences removes a leading/trailing ```json fence some models add
// despite the guard instruction.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ProviderErrorKind string

const (
	// ProviderTransient covers timeouts, network failures and provider-side
	// overload; the caller may retry.
	ProviderTransient ProviderErrorKind = "transient"
	// ProviderPermanent covers rejected requests (bad key, bad model); a
	// retry with the same inputs will fail again.
	ProviderPermanent ProviderErrorKind = "permanent"
	// ProviderMalformed means the provider answered but returned nothing
	// usable.
	ProviderMalformed ProviderErrorKind = "malformed-response"
)

type ProviderError struct {
	Kind    ProviderErrorKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation provider %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation provider %s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Retryable() bool {
	return e.Kind == ProviderTransient
}

// TextGenerator is the capability boundary for the external model: prompt
// in, text or *ProviderError out. Stub it in tests; swap it for another
// vendor without touching the orchestrator.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, system, user string) (string, error)
}

// OpenAIClient talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAIClient) GenerateText(ctx context.Context, model, system, user string) (string, error) {
	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   2000,
		Temperature: 0.3,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &ProviderError{Kind: ProviderPermanent, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Kind: ProviderPermanent, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &ProviderError{Kind: ProviderTransient, Message: "provider call timed out", Err: err}
		}
		return "", &ProviderError{Kind: ProviderTransient, Message: "provider unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Kind: ProviderTransient, Message: "failed to read provider response", Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &ProviderError{
			Kind:    ProviderTransient,
			Message: fmt.Sprintf("provider returned status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("provider returned status %d", resp.StatusCode)
		var decoded chatResponse
		if json.Unmarshal(raw, &decoded) == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return "", &ProviderError{Kind: ProviderPermanent, Message: msg}
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &ProviderError{Kind: ProviderMalformed, Message: "undecodable provider response", Err: err}
	}
	if len(decoded.Choices) == 0 {
		return "", &ProviderError{Kind: ProviderMalformed, Message: "provider returned no choices"}
	}

	return decoded.Choices[0].Message.Content, nil
}

// withTimeout guards against an unbounded provider call when the inbound
// context has no deadline of its own.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

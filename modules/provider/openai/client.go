package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/parleychat/parley/internal/provider"
)

// maxResponseSize is the maximum response body size (10 MB).
// Protects against OOM from malformed or huge responses.
const maxResponseSize = 10 * 1024 * 1024

// Adapter calls the Chat Completions endpoint.
type Adapter struct {
	baseURL string
	client  *http.Client
}

// NewAdapter creates an Adapter against the given base URL. Used by
// tests; production construction goes through the module lifecycle.
func NewAdapter(baseURL string, client *http.Client) *Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Adapter{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Name implements provider.Adapter.
func (a *Adapter) Name() string { return provider.NameOpenAI }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements provider.Adapter.
func (a *Adapter) Complete(ctx context.Context, turns []provider.Turn, model, apiKey string) (string, error) {
	if model == "" {
		return "", provider.Errorf(provider.NameOpenAI, 0, "model is required")
	}
	if apiKey == "" {
		return "", provider.Errorf(provider.NameOpenAI, 0, "api key is required")
	}

	payload := chatRequest{Model: model, Messages: make([]chatMessage, 0, len(turns))}
	for _, t := range turns {
		role := "user"
		if t.Role == provider.RoleAssistant {
			role = "assistant"
		}
		payload.Messages = append(payload.Messages, chatMessage{Role: role, Content: t.Text})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", provider.NewError(provider.NameOpenAI, 0, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", provider.NewError(provider.NameOpenAI, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", provider.NewError(provider.NameOpenAI, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", provider.NewError(provider.NameOpenAI, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var cr chatResponse
		if json.Unmarshal(raw, &cr) == nil && cr.Error != nil {
			return "", provider.Errorf(provider.NameOpenAI, resp.StatusCode, "%s", cr.Error.Message)
		}
		return "", provider.Errorf(provider.NameOpenAI, resp.StatusCode, "request failed")
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", provider.NewError(provider.NameOpenAI, resp.StatusCode, fmt.Errorf("unmarshal response: %w", err))
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", provider.NewError(provider.NameOpenAI, resp.StatusCode, errors.New("no completion in response"))
	}
	return cr.Choices[0].Message.Content, nil
}

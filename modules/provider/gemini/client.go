package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/parleychat/parley/internal/provider"
)

// maxResponseSize is the maximum response body size (10 MB).
// Protects against OOM from malformed or huge responses.
const maxResponseSize = 10 * 1024 * 1024

// Adapter calls the Generative Language generateContent endpoint.
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
func (a *Adapter) Name() string { return provider.NameGemini }

// generateRequest is the generateContent request payload.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the subset of the generateContent response the
// adapter reads.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements provider.Adapter. Turns map onto Gemini roles as
// user→"user", assistant→"model"; the completion text is the
// concatenation of the first candidate's parts.
func (a *Adapter) Complete(ctx context.Context, turns []provider.Turn, model, apiKey string) (string, error) {
	if model == "" {
		return "", provider.Errorf(provider.NameGemini, 0, "model is required")
	}
	if apiKey == "" {
		return "", provider.Errorf(provider.NameGemini, 0, "api key is required")
	}

	payload := generateRequest{Contents: make([]content, 0, len(turns))}
	for _, t := range turns {
		role := "user"
		if t.Role == provider.RoleAssistant {
			role = "model"
		}
		payload.Contents = append(payload.Contents, content{
			Role:  role,
			Parts: []part{{Text: t.Text}},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", provider.NewError(provider.NameGemini, 0, fmt.Errorf("marshal request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		a.baseURL, url.PathEscape(model), url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", provider.NewError(provider.NameGemini, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", provider.NewError(provider.NameGemini, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", provider.NewError(provider.NameGemini, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gr generateResponse
		if json.Unmarshal(raw, &gr) == nil && gr.Error != nil {
			return "", provider.Errorf(provider.NameGemini, resp.StatusCode, "%s", gr.Error.Message)
		}
		return "", provider.Errorf(provider.NameGemini, resp.StatusCode, "request failed")
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", provider.NewError(provider.NameGemini, resp.StatusCode, fmt.Errorf("unmarshal response: %w", err))
	}
	if len(gr.Candidates) == 0 {
		return "", provider.NewError(provider.NameGemini, resp.StatusCode, errors.New("no candidates in response"))
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if text == "" {
		return "", provider.NewError(provider.NameGemini, resp.StatusCode, errors.New("empty candidate content"))
	}
	return text, nil
}

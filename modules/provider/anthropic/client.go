package anthropic

import (
	"context"
	"errors"
	"net/http"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/parleychat/parley/internal/provider"
)

// Adapter calls the Messages API through the official SDK. A client is
// built per call because credentials arrive per call from settings.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
	maxTokens  int
}

// NewAdapter creates an Adapter. An empty base URL uses the SDK default;
// a nil client uses the SDK's default transport.
func NewAdapter(baseURL string, client *http.Client, maxTokens int) *Adapter {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Adapter{baseURL: baseURL, httpClient: client, maxTokens: maxTokens}
}

// Name implements provider.Adapter.
func (a *Adapter) Name() string { return provider.NameAnthropic }

// Complete implements provider.Adapter.
func (a *Adapter) Complete(ctx context.Context, turns []provider.Turn, model, apiKey string) (string, error) {
	if model == "" {
		return "", provider.Errorf(provider.NameAnthropic, 0, "model is required")
	}
	if apiKey == "" {
		return "", provider.Errorf(provider.NameAnthropic, 0, "api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}
	if a.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(a.httpClient))
	}
	client := sdkanthropic.NewClient(opts...)

	messages := make([]sdkanthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := sdkanthropic.NewTextBlock(t.Text)
		if t.Role == provider.RoleAssistant {
			messages = append(messages, sdkanthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, sdkanthropic.NewUserMessage(block))
		}
	}

	msg, err := client.Messages.New(ctx, sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(model),
		MaxTokens: int64(a.maxTokens),
		Messages:  messages,
	})
	if err != nil {
		return "", mapError(err)
	}

	var text string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(sdkanthropic.TextBlock); ok {
			if text != "" {
				text += "\n"
			}
			text += tb.Text
		}
	}
	if text == "" {
		return "", provider.NewError(provider.NameAnthropic, 0, errors.New("no text content in response"))
	}
	return text, nil
}

// mapError normalizes SDK failures into the uniform provider error.
// Context errors pass through untouched so callers recognise
// cancellation.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *sdkanthropic.Error
	if errors.As(err, &apiErr) {
		return provider.NewError(provider.NameAnthropic, apiErr.StatusCode, err)
	}
	return provider.NewError(provider.NameAnthropic, 0, err)
}

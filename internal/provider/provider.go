package provider

import "context"

// Adapter is the uniform completion contract every provider implements.
// One call, one attempt: adapters never retry internally. Any transport
// failure, non-success status, or malformed response body is returned
// as a *Error.
type Adapter interface {
	// Name returns the provider's display name (e.g. "Google Gemini").
	Name() string

	// Complete sends the ordered turn list and returns the completion text.
	Complete(ctx context.Context, turns []Turn, model, apiKey string) (string, error)
}

// Package providertest provides a scriptable provider.Adapter for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/parleychat/parley/internal/provider"
)

// Call records one Complete invocation.
type Call struct {
	Turns  []provider.Turn
	Model  string
	APIKey string
}

// Adapter is a scriptable provider.Adapter. Responses are returned in
// order; once exhausted, the last response repeats. A nil Responses
// slice yields empty completions.
type Adapter struct {
	mu          sync.Mutex
	calls       []Call
	Responses   []string
	Err         error
	AdapterName string
}

var _ provider.Adapter = (*Adapter)(nil)

// Name implements provider.Adapter.
func (a *Adapter) Name() string {
	if a.AdapterName != "" {
		return a.AdapterName
	}
	return "test"
}

// Complete implements provider.Adapter.
func (a *Adapter) Complete(_ context.Context, turns []provider.Turn, model, apiKey string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	copied := make([]provider.Turn, len(turns))
	copy(copied, turns)
	a.calls = append(a.calls, Call{Turns: copied, Model: model, APIKey: apiKey})

	if a.Err != nil {
		return "", a.Err
	}
	if len(a.Responses) == 0 {
		return "", nil
	}
	idx := len(a.calls) - 1
	if idx >= len(a.Responses) {
		idx = len(a.Responses) - 1
	}
	return a.Responses[idx], nil
}

// Calls returns a copy of every recorded invocation.
func (a *Adapter) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Call, len(a.calls))
	copy(result, a.calls)
	return result
}

// CallCount returns the number of Complete invocations.
func (a *Adapter) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

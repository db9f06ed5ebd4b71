package llm

import "context"

// MockCompleter is a test double for the Completer interface
// It allows tests to control behavior and verify interactions
type MockCompleter struct {
	// Response is the canned answer returned for every prompt
	Response string

	// Track method calls for verification in tests
	CompleteCalls []string

	// Control behavior for error scenarios
	CompleteError error
}

// NewMockCompleter creates a mock that answers every prompt with response
func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{
		Response:      response,
		CompleteCalls: []string{},
	}
}

// Complete implements the Completer interface
// Tracks calls and returns the configured response or error
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.CompleteCalls = append(m.CompleteCalls, prompt)

	if m.CompleteError != nil {
		return "", m.CompleteError
	}

	return m.Response, nil
}

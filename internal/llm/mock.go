package llm

import "context"

// Mock returns canned completions for tests.
type Mock struct {
	Reply string
	Err   error
	Calls int
}

func (m *Mock) Complete(ctx context.Context, system, prompt string) (*Response, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return &Response{Content: m.Reply, Provider: "mock"}, nil
}

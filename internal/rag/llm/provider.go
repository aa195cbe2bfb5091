package llm

import "context"

// Answer is the generation result plus whatever token accounting the
// upstream model reports (0 when the provider does not say).
type Answer struct {
	Text   string
	Tokens int
}

// Provider is the answer-generating port. The assembled context string and
// recent conversation history arrive pre-built; the provider only shapes
// the prompt for its particular model.
type Provider interface {
	Generate(ctx context.Context, query, contextText string, history []string) (Answer, error)
}

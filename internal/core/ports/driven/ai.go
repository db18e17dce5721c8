package driven

import "context"

// AIService is the external AI provider consumed as an opaque capability.
// Every call is a potentially slow, potentially failing network round trip;
// nothing is cached or retried here. Implementations must honour context
// cancellation. The service is injected into the document, search, and Q&A
// services so tests can substitute deterministic fakes.
type AIService interface {
	// Embed returns the embedding vector for the given text. The
	// dimensionality is fixed by the provider's embedding model.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Summarize returns a brief prose summary of the text.
	Summarize(ctx context.Context, text string) (string, error)

	// GenerateTags returns short lowercase tags describing the text.
	GenerateTags(ctx context.Context, text string) ([]string, error)

	// Answer responds to the question using only the supplied context,
	// stating insufficient information when the context does not contain
	// the answer.
	Answer(ctx context.Context, question, context string) (string, error)
}

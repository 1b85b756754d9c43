package driven

import "context"

// EmbeddingService turns text into vectors. Passages and questions must
// go through the same model so their vectors are comparable; Dimensions
// fixes the vector size process-wide and the index rejects anything
// else. Adapters exist for Ollama (local) and OpenAI (remote).
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds multiple texts in one call where the provider
	// supports it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model in use.
	ModelName() string

	// Ping checks reachability without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

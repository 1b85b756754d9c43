package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmbeddingService(t *testing.T) {
	t.Run("defaults to ollama", func(t *testing.T) {
		svc, err := CreateEmbeddingService(Settings{})
		require.NoError(t, err)
		defer svc.Close()

		assert.Equal(t, "all-minilm", svc.ModelName())
		assert.Equal(t, 384, svc.Dimensions())
	})

	t.Run("openai requires an api key", func(t *testing.T) {
		_, err := CreateEmbeddingService(Settings{Provider: "openai"})
		assert.Error(t, err)
	})

	t.Run("openai with key", func(t *testing.T) {
		svc, err := CreateEmbeddingService(Settings{
			Provider: "openai",
			APIKey:   "sk-test",
			Model:    "text-embedding-3-small",
		})
		require.NoError(t, err)
		defer svc.Close()

		assert.Equal(t, "text-embedding-3-small", svc.ModelName())
		assert.Equal(t, 1536, svc.Dimensions())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := CreateEmbeddingService(Settings{Provider: "bedrock"})
		assert.Error(t, err)
	})
}

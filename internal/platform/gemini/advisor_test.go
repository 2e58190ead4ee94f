package gemini

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jurisai/jurisai-api/internal/advice"
	"github.com/jurisai/jurisai-api/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAdvisorValidation(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil logger", func(t *testing.T) {
		t.Parallel()

		_, err := NewAdvisor(context.Background(), nil, config.LLMConfig{
			GeminiAPIKey: "key", ModelName: "gemini-2.0-flash",
		})
		assert.Error(t, err)
	})

	t.Run("rejects empty API key", func(t *testing.T) {
		t.Parallel()

		_, err := NewAdvisor(context.Background(), testLogger(), config.LLMConfig{
			ModelName: "gemini-2.0-flash",
		})
		assert.ErrorIs(t, err, advice.ErrInvalidConfig)
	})

	t.Run("rejects empty model name", func(t *testing.T) {
		t.Parallel()

		_, err := NewAdvisor(context.Background(), testLogger(), config.LLMConfig{
			GeminiAPIKey: "key",
		})
		assert.ErrorIs(t, err, advice.ErrInvalidConfig)
	})
}

func TestSystemInstruction(t *testing.T) {
	t.Parallel()

	a := &Advisor{logger: testLogger()}

	t.Run("includes persona, audience and jurisdiction", func(t *testing.T) {
		t.Parallel()

		got := a.systemInstruction(advice.Request{
			Agent:        advice.AgentLegalAdvisor,
			ClientType:   "business",
			Jurisdiction: "federal",
		})
		assert.Contains(t, got, "legal advisor")
		assert.Contains(t, got, "business audience")
		assert.Contains(t, got, "federal jurisdiction")
	})

	t.Run("document analyst carries focus", func(t *testing.T) {
		t.Parallel()

		got := a.systemInstruction(advice.Request{
			Agent: advice.AgentDocumentAnalyst,
			Focus: "risk",
		})
		assert.Contains(t, got, "document analyst")
		assert.Contains(t, got, "risk aspects")
	})

	t.Run("unknown agent falls back to legal advisor", func(t *testing.T) {
		t.Parallel()

		got := a.systemInstruction(advice.Request{Agent: "mystery"})
		assert.Contains(t, got, "legal advisor")
	})
}

// Package gemini implements the advice.Advisor interface using Google's
// Gemini API. It is the only place in the codebase that knows which model
// produces legal opinions; everything upstream sees the Advisor boundary.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jurisai/jurisai-api/internal/advice"
	"github.com/jurisai/jurisai-api/internal/config"
)

// agentInstructions maps each advisor persona to its system instruction.
var agentInstructions = map[string]string{
	advice.AgentLegalAdvisor: "You are an experienced legal advisor. Answer legal questions " +
		"accurately, cite the relevant legal principles, and state clearly when a question " +
		"needs a licensed attorney.",
	advice.AgentDocumentAnalyst: "You are a legal document analyst. Review the provided document, " +
		"summarize its key provisions, and flag risks, unusual clauses, and compliance issues.",
	advice.AgentClientIntake: "You are a client intake specialist at a law firm. Assess the " +
		"prospective client's situation, outline the legal issues involved, and recommend " +
		"concrete next steps.",
}

// Advisor produces legal opinions through the Gemini API.
type Advisor struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// NewAdvisor creates a Gemini-backed advisor from the LLM configuration.
func NewAdvisor(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Advisor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", advice.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", advice.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", advice.ErrInvalidConfig, err)
	}

	return &Advisor{
		logger: logger.With("component", "gemini_advisor"),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Advise sends the request to Gemini and returns the opinion, retrying
// transient failures with exponential backoff. Permanent failures such
// as safety blocks are returned immediately.
func (a *Advisor) Advise(ctx context.Context, req advice.Request) (*advice.Opinion, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: empty prompt", advice.ErrAdviceFailed)
	}

	output, err := a.callWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	return &advice.Opinion{Output: output, Agent: req.Agent}, nil
}

func (a *Advisor) callWithRetry(ctx context.Context, req advice.Request) (string, error) {
	maxRetries := a.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := time.Duration(a.config.RetryDelaySeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(a.systemInstruction(req), genai.RoleUser),
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		a.logger.InfoContext(ctx, "calling Gemini API",
			"model", a.model,
			"agent", req.Agent,
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		output, transient, err := a.call(ctx, req.Prompt, genConfig)
		if err == nil {
			return output, nil
		}
		lastErr = err

		a.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"transient", transient,
			"error", err)

		if !transient || attempt == maxRetries {
			break
		}

		// Exponential backoff with jitter.
		backoff := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt)))
		backoff += time.Duration(rng.Int63n(int64(baseDelay)))

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", advice.ErrAdviceFailed, ctx.Err())
		case <-time.After(backoff):
		}
	}

	return "", lastErr
}

// call makes a single API request. The second return value reports
// whether the failure is worth retrying.
func (a *Advisor) call(ctx context.Context, prompt string, genConfig *genai.GenerateContentConfig) (string, bool, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), genConfig)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, fmt.Errorf("%w: %v", advice.ErrAdviceFailed, ctx.Err())
		}
		return "", true, fmt.Errorf("%w: %v", advice.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", advice.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w", advice.ErrContentBlocked)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", false, fmt.Errorf("%w: empty response text", advice.ErrInvalidResponse)
	}
	return text, false, nil
}

func (a *Advisor) systemInstruction(req advice.Request) string {
	var b strings.Builder

	instruction, ok := agentInstructions[req.Agent]
	if !ok {
		instruction = agentInstructions[advice.AgentLegalAdvisor]
	}
	b.WriteString(instruction)

	if req.ClientType != "" {
		fmt.Fprintf(&b, " Write your answer for a %s audience.", req.ClientType)
	}
	if req.Jurisdiction != "" {
		fmt.Fprintf(&b, " Assume %s jurisdiction unless stated otherwise.", req.Jurisdiction)
	}
	if req.Focus != "" {
		fmt.Fprintf(&b, " Focus the analysis on %s aspects.", req.Focus)
	}
	return b.String()
}

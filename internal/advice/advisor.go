package advice

import (
	"context"

	"github.com/jurisai/jurisai-api/internal/domain"
)

// Advisor is the interface to the legal reasoning engine.
type Advisor interface {
	// Advise produces a legal opinion for the given request. It blocks
	// until the opinion is ready or ctx is done; callers bound execution
	// time through the context.
	Advise(ctx context.Context, req Request) (*Opinion, error)
}

// Request is the prepared input handed to an advisor.
type Request struct {
	// Kind is the task kind the request originated from.
	Kind domain.TaskKind

	// Prompt is the fully rendered question or instruction.
	Prompt string

	// Agent names the advisor persona the prompt is addressed to.
	Agent string

	// ClientType shapes the register of the answer: citizen, business
	// or lawyer.
	ClientType string

	// Focus is the analysis focus area for document analysis requests.
	Focus string

	// Jurisdiction is the governing jurisdiction for the matter.
	Jurisdiction string
}

// Opinion is the advisor's answer.
type Opinion struct {
	// Output is the full text of the opinion.
	Output string

	// Agent names the persona that produced the output.
	Agent string
}

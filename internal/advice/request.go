package advice

import (
	"fmt"
	"strings"

	"github.com/jurisai/jurisai-api/internal/domain"
)

// Advisor personas, one per task kind.
const (
	AgentLegalAdvisor    = "legal_advisor"
	AgentDocumentAnalyst = "document_analyst"
	AgentClientIntake    = "client_intake"
)

// Default values applied when a submission leaves optional fields empty.
const (
	defaultJurisdiction = "federal"
	defaultCaseType     = "general"
)

// ClientTypeFor maps a case type onto the client category the answer
// should be written for.
func ClientTypeFor(caseType string) string {
	switch caseType {
	case "corporate", "intellectual_property", "business":
		return "business"
	case "complex_litigation", "appeals":
		return "lawyer"
	default:
		return "citizen"
	}
}

// analysisFocus maps the submitted analysis type onto a focus area.
var analysisFocus = map[string]string{
	"comprehensive":   "general",
	"risk_assessment": "risk",
	"contract_review": "contract",
	"compliance":      "compliance",
}

// FocusFor maps an analysis type onto its focus area, defaulting to general.
func FocusFor(analysisType string) string {
	if focus, ok := analysisFocus[analysisType]; ok {
		return focus
	}
	return "general"
}

// BuildRequest turns a task payload into the Request handed to the
// advisor. It applies the kind-specific prompt shaping: additional
// context is appended to legal queries, client intakes are rendered into
// a composite advice request, and document analyses carry their focus.
func BuildRequest(payload domain.Payload) (Request, error) {
	switch p := payload.(type) {
	case *domain.LegalQueryPayload:
		return buildLegalQueryRequest(p), nil
	case *domain.DocumentAnalysisPayload:
		return buildDocumentAnalysisRequest(p), nil
	case *domain.ClientIntakePayload:
		return buildClientIntakeRequest(p), nil
	default:
		return Request{}, fmt.Errorf("%w: unsupported payload type %T", domain.ErrInvalidTaskKind, payload)
	}
}

func buildLegalQueryRequest(p *domain.LegalQueryPayload) Request {
	prompt := p.Query
	if p.AdditionalContext != "" {
		prompt = fmt.Sprintf("%s\n\nAdditional Context: %s", p.Query, p.AdditionalContext)
	}

	return Request{
		Kind:         domain.TaskKindLegalQuery,
		Prompt:       prompt,
		Agent:        AgentLegalAdvisor,
		ClientType:   ClientTypeFor(orDefault(p.CaseType, defaultCaseType)),
		Jurisdiction: orDefault(p.Jurisdiction, defaultJurisdiction),
	}
}

func buildDocumentAnalysisRequest(p *domain.DocumentAnalysisPayload) Request {
	var prompt strings.Builder
	prompt.WriteString("Analyze the following legal document")
	if len(p.SpecificSections) > 0 {
		fmt.Fprintf(&prompt, ", paying particular attention to: %s",
			strings.Join(p.SpecificSections, ", "))
	}
	prompt.WriteString(".\n\n")
	prompt.WriteString(p.DocumentText)

	return Request{
		Kind:       domain.TaskKindDocumentAnalysis,
		Prompt:     prompt.String(),
		Agent:      AgentDocumentAnalyst,
		ClientType: "citizen",
		Focus:      FocusFor(orDefault(p.AnalysisType, "comprehensive")),
	}
}

func buildClientIntakeRequest(p *domain.ClientIntakePayload) Request {
	prompt := fmt.Sprintf(`Client Name: %s
Case Type: %s

Case Description:
%s

Jurisdiction: %s
Preferred Outcome: %s
Budget Range: %s
Timeline: %s

Please provide comprehensive legal advice and next steps for this client.`,
		p.ClientName,
		p.CaseType,
		p.CaseDescription,
		orDefault(p.Jurisdiction, "Not specified"),
		orDefault(p.PreferredOutcome, "Not specified"),
		orDefault(p.BudgetRange, "Not specified"),
		orDefault(p.Timeline, "Not specified"))

	return Request{
		Kind:         domain.TaskKindClientIntake,
		Prompt:       prompt,
		Agent:        AgentClientIntake,
		ClientType:   ClientTypeFor(p.CaseType),
		Jurisdiction: orDefault(p.Jurisdiction, defaultJurisdiction),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is the kind-specific input carried by a task. Payloads are
// immutable after the task is created.
type Payload interface {
	// Kind returns the task kind this payload belongs to.
	Kind() TaskKind

	// Validate checks the required fields for the kind.
	// Returns a *ValidationError naming the offending fields.
	Validate() error
}

// LegalQueryPayload is the input for a legal_query task.
type LegalQueryPayload struct {
	Query             string `json:"query"`
	CaseType          string `json:"case_type,omitempty"`
	Jurisdiction      string `json:"jurisdiction,omitempty"`
	Urgency           string `json:"urgency,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

func (p *LegalQueryPayload) Kind() TaskKind {
	return TaskKindLegalQuery
}

func (p *LegalQueryPayload) Validate() error {
	if strings.TrimSpace(p.Query) == "" {
		return NewValidationError(FieldError{Field: "query", Reason: "must not be empty"})
	}
	return nil
}

// DocumentAnalysisPayload is the input for a document_analysis task.
// Exactly one of DocumentText or Filename must be set: inline text for
// direct submissions, a filename reference for uploads whose content has
// already been read into DocumentText by the upload handler.
type DocumentAnalysisPayload struct {
	DocumentText     string   `json:"document_text"`
	AnalysisType     string   `json:"analysis_type,omitempty"`
	SpecificSections []string `json:"specific_sections,omitempty"`
	Filename         string   `json:"filename,omitempty"`
}

func (p *DocumentAnalysisPayload) Kind() TaskKind {
	return TaskKindDocumentAnalysis
}

func (p *DocumentAnalysisPayload) Validate() error {
	if strings.TrimSpace(p.DocumentText) == "" {
		return NewValidationError(FieldError{Field: "document_text", Reason: "must not be empty"})
	}
	return nil
}

// ClientIntakePayload is the input for a client_intake task.
type ClientIntakePayload struct {
	ClientName       string `json:"client_name"`
	CaseDescription  string `json:"case_description"`
	CaseType         string `json:"case_type"`
	Jurisdiction     string `json:"jurisdiction,omitempty"`
	PreferredOutcome string `json:"preferred_outcome,omitempty"`
	BudgetRange      string `json:"budget_range,omitempty"`
	Timeline         string `json:"timeline,omitempty"`
}

func (p *ClientIntakePayload) Kind() TaskKind {
	return TaskKindClientIntake
}

func (p *ClientIntakePayload) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(p.ClientName) == "" {
		fields = append(fields, FieldError{Field: "client_name", Reason: "must not be empty"})
	}
	if strings.TrimSpace(p.CaseDescription) == "" {
		fields = append(fields, FieldError{Field: "case_description", Reason: "must not be empty"})
	}
	if strings.TrimSpace(p.CaseType) == "" {
		fields = append(fields, FieldError{Field: "case_type", Reason: "must not be empty"})
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

// DecodePayload deserializes a raw task payload back into its typed form.
func DecodePayload(kind TaskKind, raw json.RawMessage) (Payload, error) {
	var payload Payload
	switch kind {
	case TaskKindLegalQuery:
		payload = &LegalQueryPayload{}
	case TaskKindDocumentAnalysis:
		payload = &DocumentAnalysisPayload{}
	case TaskKindClientIntake:
		payload = &ClientIntakePayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskKind, kind)
	}

	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return payload, nil
}

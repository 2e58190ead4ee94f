package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jurisai/jurisai-api/internal/api/shared"
	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/service"
)

// maxUploadBytes caps the size of an uploaded document.
const maxUploadBytes = 10 << 20

// LegalQueryRequest is the body for POST /api/legal-query.
type LegalQueryRequest struct {
	Query             string `json:"query"              validate:"required,min=1"`
	CaseType          string `json:"case_type"          validate:"omitempty,min=1"`
	Jurisdiction      string `json:"jurisdiction"       validate:"omitempty,min=1"`
	Urgency           string `json:"urgency"            validate:"omitempty,oneof=low normal high urgent"`
	AdditionalContext string `json:"additional_context"`
}

// DocumentAnalysisRequest is the body for POST /api/analyze-document.
type DocumentAnalysisRequest struct {
	DocumentText     string   `json:"document_text"     validate:"required,min=1"`
	AnalysisType     string   `json:"analysis_type"     validate:"omitempty,min=1"`
	SpecificSections []string `json:"specific_sections"`
}

// ClientIntakeRequest is the body for POST /api/client-intake.
type ClientIntakeRequest struct {
	ClientName       string `json:"client_name"       validate:"required,min=1"`
	CaseDescription  string `json:"case_description"  validate:"required,min=1"`
	CaseType         string `json:"case_type"         validate:"required,min=1"`
	Jurisdiction     string `json:"jurisdiction"`
	PreferredOutcome string `json:"preferred_outcome"`
	BudgetRange      string `json:"budget_range"`
	Timeline         string `json:"timeline"`
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is the body for GET /api/task-status/{id}.
type StatusResponse struct {
	TaskID      string             `json:"task_id"`
	Kind        string             `json:"kind"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Result      *domain.Result     `json:"result,omitempty"`
	Error       *domain.TaskError  `json:"error,omitempty"`
}

// ListResponse is the body for GET /api/tasks.
type ListResponse struct {
	Tasks []StatusResponse `json:"tasks"`
	Total int              `json:"total"`
}

// TaskHandler handles task submission and status endpoints.
type TaskHandler struct {
	submission *service.SubmissionService
	status     *service.StatusService
}

// NewTaskHandler creates a TaskHandler over the given services.
func NewTaskHandler(submission *service.SubmissionService, status *service.StatusService) *TaskHandler {
	return &TaskHandler{
		submission: submission,
		status:     status,
	}
}

// LegalQuery handles POST /api/legal-query.
func (h *TaskHandler) LegalQuery(w http.ResponseWriter, r *http.Request) {
	var req LegalQueryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationError(w, r, "Validation failed", shared.ValidationFieldNames(err))
		return
	}

	h.submit(w, r, &domain.LegalQueryPayload{
		Query:             req.Query,
		CaseType:          defaultString(req.CaseType, "general"),
		Jurisdiction:      defaultString(req.Jurisdiction, "federal"),
		Urgency:           defaultString(req.Urgency, "normal"),
		AdditionalContext: req.AdditionalContext,
	}, "Legal query submitted for analysis")
}

// AnalyzeDocument handles POST /api/analyze-document.
func (h *TaskHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentAnalysisRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationError(w, r, "Validation failed", shared.ValidationFieldNames(err))
		return
	}

	h.submit(w, r, &domain.DocumentAnalysisPayload{
		DocumentText:     req.DocumentText,
		AnalysisType:     defaultString(req.AnalysisType, "comprehensive"),
		SpecificSections: req.SpecificSections,
	}, "Document submitted for analysis")
}

// UploadDocument handles POST /api/upload-document. The document arrives
// as a multipart file; its content is read here so the task payload is
// self-contained.
func (h *TaskHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithValidationError(w, r, "Validation failed", []string{"file"})
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to read uploaded file", err)
		return
	}
	if len(content) > maxUploadBytes {
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}

	h.submit(w, r, &domain.DocumentAnalysisPayload{
		DocumentText: string(content),
		AnalysisType: defaultString(r.FormValue("analysis_type"), "comprehensive"),
		Filename:     header.Filename,
	}, "Uploaded document submitted for analysis")
}

// ClientIntake handles POST /api/client-intake.
func (h *TaskHandler) ClientIntake(w http.ResponseWriter, r *http.Request) {
	var req ClientIntakeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationError(w, r, "Validation failed", shared.ValidationFieldNames(err))
		return
	}

	h.submit(w, r, &domain.ClientIntakePayload{
		ClientName:       req.ClientName,
		CaseDescription:  req.CaseDescription,
		CaseType:         req.CaseType,
		Jurisdiction:     req.Jurisdiction,
		PreferredOutcome: req.PreferredOutcome,
		BudgetRange:      req.BudgetRange,
		Timeline:         req.Timeline,
	}, "Client intake submitted for review")
}

// Status handles GET /api/task-status/{id}.
func (h *TaskHandler) Status(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")

	record, err := h.status.Lookup(r.Context(), rawID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToStatusResponse(record))
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.status.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tasks := make([]StatusResponse, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, taskToStatusResponse(record))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{Tasks: tasks, Total: len(tasks)})
}

// submit runs the shared submission path: hand the payload to the
// gateway and acknowledge with 202 Accepted.
func (h *TaskHandler) submit(w http.ResponseWriter, r *http.Request, payload domain.Payload, message string) {
	record, err := h.submission.Submit(r.Context(), payload)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		TaskID:  record.ID.String(),
		Status:  string(record.Status),
		Message: message,
	})
}

func (h *TaskHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		shared.RespondWithValidationError(w, r, "Validation failed", vErr.FieldNames())
		return
	}

	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}

func taskToStatusResponse(record *domain.Task) StatusResponse {
	return StatusResponse{
		TaskID:      record.ID.String(),
		Kind:        string(record.Kind),
		Status:      string(record.Status),
		CreatedAt:   record.CreatedAt,
		CompletedAt: record.CompletedAt,
		Result:      record.Result,
		Error:       record.Error,
	}
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

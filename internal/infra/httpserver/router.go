package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appai "github.com/bryanwahyu/auditflow/internal/application/ai"
	appaudits "github.com/bryanwahyu/auditflow/internal/application/audits"
	appcatalog "github.com/bryanwahyu/auditflow/internal/application/catalog"
	appreports "github.com/bryanwahyu/auditflow/internal/application/reports"
	domai "github.com/bryanwahyu/auditflow/internal/domain/ai"
	"github.com/bryanwahyu/auditflow/internal/domain/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/faults"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
	"github.com/bryanwahyu/auditflow/internal/middleware"
)

const maxEvidenceSize = 32 << 20 // 32 MiB

type Router struct {
	auditsSvc  *appaudits.Service
	catalogSvc *appcatalog.Service
	aiSvc      *appai.Service
	reportsSvc *appreports.Service
	evidence   responses.EvidenceStore
}

func NewRouter(auditsSvc *appaudits.Service, catalogSvc *appcatalog.Service, aiSvc *appai.Service, reportsSvc *appreports.Service, evidence responses.EvidenceStore) http.Handler {
	r := &Router{
		auditsSvc:  auditsSvc,
		catalogSvc: catalogSvc,
		aiSvc:      aiSvc,
		reportsSvc: reportsSvc,
		evidence:   evidence,
	}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.RequireValidTenant)

		rt.Get("/frameworks", r.wrap(r.handleListFrameworks))

		rt.Post("/audits", r.wrap(r.handleCreateAudit))
		rt.Get("/audits", r.wrap(r.handleListAudits))
		rt.Get("/audits/{id}", r.wrap(r.handleGetAudit))
		rt.Delete("/audits/{id}", r.wrap(r.handleDeleteAudit))
		rt.Get("/audits/{id}/controls", r.wrap(r.handleListControls))

		rt.Get("/audits/{id}/responses/{controlID}", r.wrap(r.handleGetResponse))
		rt.Patch("/audits/{id}/responses/{controlID}", r.wrap(r.handleSubmitResponse))
		rt.Post("/audits/{id}/responses/{controlID}/evidence", r.wrap(r.handleUploadEvidence))
		rt.Post("/audits/{id}/responses/{controlID}/recommendation", r.wrap(r.handleRecommend))

		rt.Get("/audits/{id}/report/pdf", r.wrap(r.handleReportPDF))
		rt.Get("/audits/{id}/report/xlsx", r.wrap(r.handleReportExcel))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, faults.ErrValidation):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, faults.ErrNotFound), errors.Is(err, sql.ErrNoRows):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, domai.ErrUnavailable):
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// GET /v1/{tenant}/frameworks?type=Cloud
func (r *Router) handleListFrameworks(w http.ResponseWriter, req *http.Request) error {
	domainType := req.URL.Query().Get("type")
	var (
		list any
		err  error
	)
	if domainType != "" {
		list, err = r.catalogSvc.ListFrameworksByType(req.Context(), domainType)
	} else {
		list, err = r.catalogSvc.ListFrameworks(req.Context())
	}
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// POST /v1/{tenant}/audits
func (r *Router) handleCreateAudit(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var body struct {
		Name        string `json:"name"`
		ClientName  string `json:"client_name"`
		AuditorName string `json:"auditor_name"`
		DomainType  string `json:"domain_type"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return faults.Invalidf("decoding body: %v", err)
	}

	a, err := r.auditsSvc.Create(req.Context(), appaudits.CreateAuditCommand{
		TenantID:    tenant,
		Name:        body.Name,
		ClientName:  body.ClientName,
		AuditorName: body.AuditorName,
		DomainType:  body.DomainType,
	})
	if err != nil {
		return err
	}
	middleware.IncrementAuditsCreated()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/audits?page=&page_size=
func (r *Router) handleListAudits(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.auditsSvc.List(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/audits/{id}
func (r *Router) handleGetAudit(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	a, err := r.auditsSvc.Get(req.Context(), tenant, audits.AuditID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}

// DELETE /v1/{tenant}/audits/{id}
func (r *Router) handleDeleteAudit(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	if err := r.auditsSvc.Delete(req.Context(), tenant, audits.AuditID(id)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/{tenant}/audits/{id}/controls
func (r *Router) handleListControls(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	list, err := r.auditsSvc.ControlsWithResponses(req.Context(), tenant, audits.AuditID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/audits/{id}/responses/{controlID}
func (r *Router) handleGetResponse(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	controlID := chi.URLParam(req, "controlID")

	resp, err := r.auditsSvc.GetResponse(req.Context(), tenant, audits.AuditID(id), catalog.ControlID(controlID))
	if err != nil {
		return err
	}
	return writeJSON(w, resp)
}

// PATCH /v1/{tenant}/audits/{id}/responses/{controlID}
func (r *Router) handleSubmitResponse(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	controlID := chi.URLParam(req, "controlID")

	patch, err := decodePatch(req.Body)
	if err != nil {
		return err
	}
	resp, err := r.auditsSvc.SubmitResponse(req.Context(), tenant, audits.AuditID(id), catalog.ControlID(controlID), patch)
	if err != nil {
		return err
	}
	middleware.IncrementResponsesSubmitted()
	return writeJSON(w, resp)
}

// POST /v1/{tenant}/audits/{id}/responses/{controlID}/evidence (multipart)
func (r *Router) handleUploadEvidence(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	controlID := chi.URLParam(req, "controlID")

	if err := req.ParseMultipartForm(maxEvidenceSize); err != nil {
		return faults.Invalidf("parsing multipart form: %v", err)
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return faults.Invalidf("file field is required")
	}
	defer file.Close()

	if err := middleware.ValidateEvidenceFilename(header.Filename); err != nil {
		return faults.Invalidf("%v", err)
	}

	key := fmt.Sprintf("%s/%s/%s/%s", tenant, id, controlID, header.Filename)
	contentType := header.Header.Get("Content-Type")
	url, err := r.evidence.Upload(req.Context(), file, header.Size, key, contentType)
	if err != nil {
		return err
	}

	filename := header.Filename
	resp, err := r.auditsSvc.SubmitResponse(req.Context(), tenant, audits.AuditID(id), catalog.ControlID(controlID), responses.Patch{
		EvidencePath:        &url,
		EvidencePathSet:     true,
		EvidenceFilename:    &filename,
		EvidenceFilenameSet: true,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, resp)
}

// POST /v1/{tenant}/audits/{id}/responses/{controlID}/recommendation
func (r *Router) handleRecommend(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	controlID := chi.URLParam(req, "controlID")

	text, err := r.aiSvc.Recommend(req.Context(), tenant, audits.AuditID(id), catalog.ControlID(controlID))
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]string{"ai_recommendation": text})
}

// GET /v1/{tenant}/audits/{id}/report/pdf
func (r *Router) handleReportPDF(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	data, err := r.reportsSvc.ExportPDF(req.Context(), tenant, audits.AuditID(id))
	if err != nil {
		return err
	}
	middleware.IncrementReportsGenerated()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="audit-%s.pdf"`, id))
	_, err = w.Write(data)
	return err
}

// GET /v1/{tenant}/audits/{id}/report/xlsx
func (r *Router) handleReportExcel(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	data, err := r.reportsSvc.ExportExcel(req.Context(), tenant, audits.AuditID(id))
	if err != nil {
		return err
	}
	middleware.IncrementReportsGenerated()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="audit-%s.xlsx"`, id))
	_, err = w.Write(data)
	return err
}

// decodePatch decodes a partial response update, distinguishing fields absent
// from the body (untouched) from fields explicitly sent as null (cleared).
func decodePatch(body io.Reader) (responses.Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return responses.Patch{}, faults.Invalidf("decoding body: %v", err)
	}

	var p responses.Patch
	for key, val := range raw {
		switch key {
		case "question_responses":
			var qrs []responses.QuestionResponse
			if err := json.Unmarshal(val, &qrs); err != nil {
				return p, faults.Invalidf("question_responses: %v", err)
			}
			p.QuestionResponses = qrs
			p.QuestionResponsesSet = true
		case "compliance_status":
			var st *responses.ComplianceStatus
			if err := json.Unmarshal(val, &st); err != nil {
				return p, faults.Invalidf("compliance_status: %v", err)
			}
			if st == nil {
				// explicit null resets to the placeholder state
				reset := responses.StatusNotAnswered
				st = &reset
			}
			p.ComplianceStatus = st
		case "justification_text":
			s, err := decodeNullableString(val, key)
			if err != nil {
				return p, err
			}
			p.Justification = s
			p.JustificationSet = true
		case "maturity_level_selected":
			s, err := decodeNullableString(val, key)
			if err != nil {
				return p, err
			}
			p.MaturityLevel = s
			p.MaturityLevelSet = true
		case "evidence_path":
			s, err := decodeNullableString(val, key)
			if err != nil {
				return p, err
			}
			p.EvidencePath = s
			p.EvidencePathSet = true
		case "evidence_filename":
			s, err := decodeNullableString(val, key)
			if err != nil {
				return p, err
			}
			p.EvidenceFilename = s
			p.EvidenceFilenameSet = true
		case "ai_recommendation":
			s, err := decodeNullableString(val, key)
			if err != nil {
				return p, err
			}
			p.AIRecommendation = s
			p.AIRecommendationSet = true
		}
	}
	return p, nil
}

func decodeNullableString(val json.RawMessage, field string) (*string, error) {
	var s *string
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, faults.Invalidf("%s: %v", field, err)
	}
	return s, nil
}

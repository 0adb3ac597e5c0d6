package ai

import (
	"context"
	"strings"

	appaudits "github.com/bryanwahyu/auditflow/internal/application/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/ai"
	"github.com/bryanwahyu/auditflow/internal/domain/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/faults"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

// Service fetches AI remediation guidance for one control response and stores
// it on the response document. A nil client means the provider is not
// configured; callers get ai.ErrUnavailable, distinct from generic failures.
type Service struct {
	Client    ai.Client
	Audits    audits.Repository
	Responses responses.Repository
	Catalog   appaudits.Catalog
}

// Recommend builds the prompt from the control objective, its questionnaire,
// the recorded verdict and justification, calls the provider, and persists
// the returned text as the response's ai_recommendation.
func (s *Service) Recommend(ctx context.Context, tenant string, auditID audits.AuditID, controlID catalog.ControlID) (string, error) {
	if s.Client == nil {
		return "", ai.ErrUnavailable
	}

	a, err := s.Audits.Get(ctx, tenant, auditID)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", faults.NotFoundf("audit %s", auditID)
	}
	c, err := s.Catalog.GetControl(ctx, controlID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", faults.NotFoundf("control %s", controlID)
	}
	r, err := s.Responses.Get(ctx, tenant, string(auditID), controlID)
	if err != nil {
		return "", err
	}
	if r == nil {
		r = responses.Placeholder(string(auditID), c)
	}

	text, err := s.Client.Recommend(ctx, ai.RecommendationRequest{
		ControlObjective: c.Objective,
		AuditQuestion:    joinQuestions(c.Questions),
		ComplianceStatus: string(r.ComplianceStatus),
		Justification:    r.Justification,
	})
	if err != nil {
		return "", err
	}

	if _, err := s.Responses.Upsert(ctx, tenant, string(auditID), controlID, responses.Patch{
		AIRecommendation:    &text,
		AIRecommendationSet: true,
	}); err != nil {
		return "", err
	}
	return text, nil
}

func joinQuestions(qs []catalog.Question) string {
	texts := make([]string, 0, len(qs))
	for _, q := range qs {
		texts = append(texts, q.Text)
	}
	return strings.Join(texts, " | ")
}

package ai

import "context"

// RecommendationRequest carries the control context the prompt is built from.
type RecommendationRequest struct {
	ControlObjective string
	AuditQuestion    string
	ComplianceStatus string
	Justification    string
}

// Client port for the generative-text collaborator
type Client interface {
	Recommend(ctx context.Context, req RecommendationRequest) (string, error)
}

package web

import "github.com/formationhq/formation/pkg/models"

// CreateFormationRequest represents the request body for starting a new
// formation. The nested formation payload is excluded from request-time
// validation on purpose: a malformed payload still creates a workflow, and
// the validation step records the rejection on the workflow's audit trail.
type CreateFormationRequest struct {
	ClientID  string                  `json:"client_id" validate:"required"`
	PlanID    string                  `json:"plan_id"   validate:"required"`
	Formation models.FormationRequest `json:"formation" validate:"-"`
}

// CreateFormationResponse is returned from the creation endpoint. The
// workflow runs asynchronously; callers poll the query endpoint for progress.
type CreateFormationResponse struct {
	ID                    string                `json:"id"`
	Status                models.WorkflowStatus `json:"status"`
	TotalEstimatedMinutes int                   `json:"total_estimated_minutes"`
}

// Package web provides HTTP handlers and REST API endpoints for formation workflows.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/formationhq/formation/pkg/persistence"
	"github.com/formationhq/formation/pkg/services"
)

type APIHandlers struct {
	formationService *services.Formation
	validator        *validator.Validate
}

func NewAPIHandlers(formationService *services.Formation, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		formationService: formationService,
		validator:        validator,
	}
}

func (h *APIHandlers) CreateFormation(c fiber.Ctx) error {
	var req CreateFormationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.formationService.Create(c.Context(), services.CreateFormationInput{
		ClientID: req.ClientID,
		PlanID:   req.PlanID,
		Request:  req.Formation,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(CreateFormationResponse{
		ID:                    created.ID,
		Status:                created.Status,
		TotalEstimatedMinutes: created.TotalEstimatedMinutes,
	})
}

func (h *APIHandlers) GetFormation(c fiber.Ctx) error {
	id := c.Params("id")

	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.formationService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) GetClientFormations(c fiber.Ctx) error {
	clientID := c.Params("clientId")

	if clientID == "" {
		return badRequest(c, "Client ID is required")
	}

	workflows, err := h.formationService.ListByClient(c.Context(), clientID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"formations":  workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.formationService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Formation API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Formation API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

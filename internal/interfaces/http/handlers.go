package http

import (
	"errors"
	"fmt"
	stdhttp "net/http"
	"strings"

	"aid-portal/internal/adapters/http/middleware"
	"aid-portal/internal/application"
	"aid-portal/internal/domain"
	"aid-portal/internal/ports"

	"github.com/labstack/echo/v4"
)

var errNoRole = fmt.Errorf("caller has no role: %w", domain.ErrPermissionDeny)

func handleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDeny):
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrConflict):
		return c.JSON(stdhttp.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

type ApplicationsHandler struct {
	service *application.WorkflowService
	logger  ports.Logger
}

func NewApplicationsHandler(service *application.WorkflowService, logger ports.Logger) *ApplicationsHandler {
	return &ApplicationsHandler{service: service, logger: logger}
}

func (h *ApplicationsHandler) Submit(c echo.Context) error {
	var req domain.Submission
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	id, err := h.service.SubmitApplication(c.Request().Context(), req)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidInput) {
			h.logger.Error(c.Request().Context(), "submit application failed", "error", err)
		}
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusCreated, map[string]string{"tracker_id": id})
}

func (h *ApplicationsHandler) Get(c echo.Context) error {
	app, err := h.service.GetApplication(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, app)
}

// Act applies a workflow action as the authenticated actor. Identity comes
// only from the auth middleware; callers without a role are refused.
func (h *ApplicationsHandler) Act(c echo.Context) error {
	var req struct {
		Action  string `json:"action"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		return handleError(c, err)
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok || actor.Role == "" {
		return handleError(c, errNoRole)
	}
	app, err := h.service.Advance(c.Request().Context(), c.Param("id"), action, actor, req.Comment)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, app)
}

type ReviewsHandler struct {
	service *application.WorkflowService
}

func NewReviewsHandler(service *application.WorkflowService) *ReviewsHandler {
	return &ReviewsHandler{service: service}
}

// List returns the caller's queue. The role and email query parameters may
// only restate the authenticated actor.
func (h *ReviewsHandler) List(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok || actor.Role == "" {
		return handleError(c, errNoRole)
	}
	if raw := c.QueryParam("role"); raw != "" {
		parsed, err := domain.ParseRole(raw)
		if err != nil {
			return handleError(c, err)
		}
		if parsed != actor.Role {
			return handleError(c, domain.ErrPermissionDeny)
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("email")); raw != "" && !strings.EqualFold(raw, strings.TrimSpace(actor.Email)) {
		return handleError(c, domain.ErrPermissionDeny)
	}
	apps, err := h.service.GetApplicationsForRole(c.Request().Context(), actor.Role, actor.Email)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, apps)
}

func Health(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
}

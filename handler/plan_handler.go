package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
)

type planHandler struct {
	planRepo repository.PlanRepository
	validate *validator.Validate
}

func NewPlanHandler(planRepo repository.PlanRepository) *planHandler {
	return &planHandler{
		planRepo: planRepo,
		validate: validator.New(),
	}
}

// ListPlans serves the public pricing page: active plans for one role.
func (h *planHandler) ListPlans(c echo.Context) error {
	logger := logrus.WithField("endpoint", "list_plans")

	role := model.UserRole(c.QueryParam("role"))
	if role != model.RoleWorker && role != model.RoleEstablishment {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "role must be WORKER or ESTABLISHMENT",
		})
	}

	plans, err := h.planRepo.ListActive(c.Request().Context(), role)
	if err != nil {
		logger.Errorf("Error listing plans: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve plans",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    plans,
	})
}

// UpsertPlan is the admin plan editor write path. Registry invariants are
// enforced inside the repository transaction; a rejected write changes
// nothing and reports the specific reason. On success the entitlement cache
// for the plan code is already invalidated by the time we respond.
func (h *planHandler) UpsertPlan(c echo.Context) error {
	logger := logrus.WithField("endpoint", "upsert_plan")

	var req model.UpsertPlanRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.Errorf("Validation error: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: err.Error(),
		})
	}

	plan := req.ToPlan()
	if err := h.planRepo.Upsert(c.Request().Context(), &plan); err != nil {
		if errors.Is(err, repository.ErrBasicPlanRequired) || errors.Is(err, repository.ErrDuplicateActivePlan) {
			return c.JSON(http.StatusConflict, response{
				Success: false,
				Message: err.Error(),
			})
		}
		logger.Errorf("Error saving plan: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to save plan",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    plan,
	})
}

// DeletePlan removes a retired plan. BASIC is protected: it is the fallback
// every resolution can land on.
func (h *planHandler) DeletePlan(c echo.Context) error {
	logger := logrus.WithField("endpoint", "delete_plan")

	role := model.UserRole(c.Param("role"))
	code := model.PlanCode(c.Param("code"))

	if err := h.planRepo.Delete(c.Request().Context(), role, code); err != nil {
		if errors.Is(err, repository.ErrBasicPlanProtected) || errors.Is(err, repository.ErrBasicPlanRequired) {
			return c.JSON(http.StatusConflict, response{
				Success: false,
				Message: err.Error(),
			})
		}
		logger.Errorf("Error deleting plan: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to delete plan",
		})
	}

	return c.JSON(http.StatusOK, response{Success: true})
}

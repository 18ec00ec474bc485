package handler

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
)

type workerHandler struct {
	workerRepo repository.WorkerRepository
	callers    *callerResolver
	validate   *validator.Validate
}

func NewWorkerHandler(workerRepo repository.WorkerRepository, callers *callerResolver) *workerHandler {
	return &workerHandler{
		workerRepo: workerRepo,
		callers:    callers,
		validate:   validator.New(),
	}
}

// SearchWorkers is the establishment-facing worker search. The search gate
// runs first; past it, the same redaction engine that serves the mission
// feed tags each card, and the caller's full-profiles flag is echoed back so
// the client can render the upsell banner without re-deriving anything.
func (h *workerHandler) SearchWorkers(c echo.Context) error {
	logger := logrus.WithField("endpoint", "search_workers")

	userClaims, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	ent, _, err := h.callers.resolve(c.Request().Context(), userClaims)
	if err != nil {
		logger.Errorf("Error resolving entitlement: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to resolve access",
		})
	}

	if decision := entitlement.CheckWorkerSearch(ent); !decision.Allowed {
		return c.JSON(http.StatusForbidden, response{
			Success: false,
			Message: string(decision.Reason),
		})
	}

	filter := repository.WorkerFilter{
		City:       c.QueryParam("city"),
		Speciality: c.QueryParam("speciality"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	workers, total, err := h.workerRepo.Search(c.Request().Context(), filter)
	if err != nil {
		logger.Errorf("Error searching workers: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to search workers",
		})
	}

	visibilities := entitlement.RedactWorkers(len(workers), ent)

	result := model.WorkerSearchResponse{
		Workers: make([]model.WorkerCardResponse, len(workers)),
		Total:   total,
	}
	result.Subscription.CanViewFullProfiles = ent.CanViewFullProfiles
	for i, w := range workers {
		result.Workers[i] = w.ToWorkerCardResponse(visibilities[i])
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    result,
	})
}

// GetProfile returns the authenticated worker's own profile.
func (h *workerHandler) GetProfile(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_worker_profile")

	userClaims, err := authSession(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	profile, err := h.workerRepo.FindByUserID(c.Request().Context(), userClaims.ID)
	if err != nil {
		logger.Errorf("Error finding profile: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve profile",
		})
	}

	if profile == nil {
		return c.JSON(http.StatusOK, response{
			Success: true,
			Data:    model.WorkerCardResponse{},
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    profile.ToWorkerCardResponse(entitlement.Full()),
	})
}

// UpdateProfile creates or updates the worker's profile.
func (h *workerHandler) UpdateProfile(c echo.Context) error {
	logger := logrus.WithField("endpoint", "update_worker_profile")

	userClaims, err := authSession(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	var req model.UpdateWorkerProfileRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	profile, err := h.workerRepo.FindByUserID(c.Request().Context(), userClaims.ID)
	if err != nil {
		logger.Errorf("Error finding profile: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve profile",
		})
	}

	if profile == nil {
		profile = &model.WorkerProfile{UserID: userClaims.ID}
	}

	if req.Title != nil {
		profile.Title = *req.Title
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.City != nil {
		profile.City = *req.City
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Specialities != nil {
		profile.Specialities = *req.Specialities
	}

	if err := h.workerRepo.Upsert(c.Request().Context(), profile); err != nil {
		logger.Errorf("Error saving profile: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to save profile",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    profile.ToWorkerCardResponse(entitlement.Full()),
	})
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
)

type missionHandler struct {
	missionRepo       repository.MissionRepository
	applicationRepo   repository.ApplicationRepository
	establishmentRepo repository.EstablishmentRepository
	callers           *callerResolver
	validate          *validator.Validate
}

func NewMissionHandler(
	missionRepo repository.MissionRepository,
	applicationRepo repository.ApplicationRepository,
	establishmentRepo repository.EstablishmentRepository,
	callers *callerResolver,
) *missionHandler {
	return &missionHandler{
		missionRepo:       missionRepo,
		applicationRepo:   applicationRepo,
		establishmentRepo: establishmentRepo,
		callers:           callers,
		validate:          validator.New(),
	}
}

// GetMissions serves the mission feed. The query and the total are identical
// for every caller; only the per-item visibility tags differ, so a BASIC and
// a PREMIUM user paging the same filter always see the same counts.
func (h *missionHandler) GetMissions(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_missions")

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

	filter := repository.MissionFilter{
		City:       c.QueryParam("city"),
		Speciality: c.QueryParam("speciality"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	missions, total, err := h.missionRepo.List(c.Request().Context(), filter)
	if err != nil {
		logger.Errorf("Error listing missions: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve missions",
		})
	}

	items := make([]entitlement.MissionItem, len(missions))
	for i, m := range missions {
		items[i] = m
	}
	visibilities := entitlement.RedactMissions(items, ent, time.Now())

	responses := make([]model.MissionResponse, len(missions))
	for i, m := range missions {
		responses[i] = m.ToMissionResponse(visibilities[i])
	}

	feed := model.MissionFeedResponse{
		Missions: responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if feed.Page < 1 {
		feed.Page = 1
	}
	if feed.PageSize < 1 {
		feed.PageSize = 20
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    feed,
	})
}

// CreateMission posts a mission for the caller's establishment, enforcing
// the active-mission quota and the urgent gate against a freshly resolved
// entitlement. The urgent fee percent is snapshotted onto the row so a later
// plan edit cannot change the fee of an already posted mission.
func (h *missionHandler) CreateMission(c echo.Context) error {
	logger := logrus.WithField("endpoint", "create_mission")

	userClaims, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	var req model.CreateMissionRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: err.Error(),
		})
	}

	ent, user, err := h.callers.resolve(c.Request().Context(), userClaims)
	if err != nil {
		logger.Errorf("Error resolving entitlement: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to resolve access",
		})
	}

	if user == nil || user.Role != model.RoleEstablishment {
		return c.JSON(http.StatusForbidden, response{
			Success: false,
			Message: "only establishments can post missions",
		})
	}

	establishment, err := h.establishmentRepo.FindByUserID(c.Request().Context(), user.ID)
	if err != nil {
		logger.Errorf("Error finding establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve establishment",
		})
	}
	if establishment == nil {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "establishment profile required before posting missions",
		})
	}

	activeCount, err := h.missionRepo.CountActiveByEstablishment(c.Request().Context(), establishment.ID)
	if err != nil {
		logger.Errorf("Error counting active missions: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to check mission quota",
		})
	}

	if decision := entitlement.CheckMissionQuota(ent, activeCount); !decision.Allowed {
		return c.JSON(http.StatusForbidden, response{
			Success: false,
			Message: string(decision.Reason),
		})
	}

	mission := &model.Mission{
		EstablishmentID: establishment.ID,
		Title:           req.Title,
		Description:     req.Description,
		City:            req.City,
		Speciality:      req.Speciality,
		SalaryMin:       int(req.SalaryMin * 100),
		SalaryMax:       int(req.SalaryMax * 100),
		Status:          model.MissionOpen,
	}

	if req.IsUrgent {
		if decision := entitlement.CheckUrgentPost(ent); !decision.Allowed {
			return c.JSON(http.StatusForbidden, response{
				Success: false,
				Message: string(decision.Reason),
			})
		}
		mission.IsUrgent = true
		mission.UrgentFeePercent = ent.UrgentMissionFeePercent
	}

	if req.StartsAt != nil && *req.StartsAt != "" {
		startsAt, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response{
				Success: false,
				Message: "starts_at must be RFC3339",
			})
		}
		mission.StartsAt = &startsAt
	}

	if err := h.missionRepo.Create(c.Request().Context(), mission); err != nil {
		logger.Errorf("Error creating mission: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to create mission",
		})
	}
	mission.Establishment = *establishment

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Data:    mission.ToMissionResponse(entitlement.Full()),
	})
}

// Apply submits a worker application, enforcing the active-application quota
// at the moment of the request.
func (h *missionHandler) Apply(c echo.Context) error {
	logger := logrus.WithField("endpoint", "apply_mission")

	userClaims, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	missionID, err := parseUintID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid mission id",
		})
	}

	var req model.ApplyRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	ent, user, err := h.callers.resolve(c.Request().Context(), userClaims)
	if err != nil {
		logger.Errorf("Error resolving entitlement: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to resolve access",
		})
	}

	if user == nil || user.Role != model.RoleWorker {
		return c.JSON(http.StatusForbidden, response{
			Success: false,
			Message: "only workers can apply to missions",
		})
	}

	if ent.AccessLevel == entitlement.AccessNotValidated {
		return c.JSON(http.StatusForbidden, response{
			Success: false,
			Message: "account not validated",
		})
	}

	mission, err := h.missionRepo.FindByID(c.Request().Context(), missionID)
	if err != nil {
		logger.Errorf("Error finding mission: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve mission",
		})
	}
	if mission == nil || mission.Status != model.MissionOpen {
		return c.JSON(http.StatusNotFound, response{
			Success: false,
			Message: "mission not found",
		})
	}

	activeCount, err := h.applicationRepo.CountActiveByWorker(c.Request().Context(), user.ID)
	if err != nil {
		logger.Errorf("Error counting applications: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to check application quota",
		})
	}

	if decision := entitlement.CheckApplicationQuota(ent, activeCount); !decision.Allowed {
		return c.JSON(http.StatusForbidden, response{
			Success: false,
			Message: string(decision.Reason),
		})
	}

	application := &model.Application{
		MissionID: mission.ID,
		WorkerID:  user.ID,
		Status:    model.ApplicationPending,
		Message:   req.Message,
	}

	if err := h.applicationRepo.Create(c.Request().Context(), application); err != nil {
		if err == repository.ErrAlreadyApplied {
			return c.JSON(http.StatusConflict, response{
				Success: false,
				Message: "already applied to this mission",
			})
		}
		logger.Errorf("Error creating application: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to submit application",
		})
	}

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Data:    application,
	})
}

// Withdraw releases a pending application, freeing a quota slot.
func (h *missionHandler) Withdraw(c echo.Context) error {
	logger := logrus.WithField("endpoint", "withdraw_application")

	userClaims, err := authSession(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	missionID, err := parseUintID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid mission id",
		})
	}

	if err := h.applicationRepo.Withdraw(c.Request().Context(), userClaims.ID, missionID); err != nil {
		logger.Errorf("Error withdrawing application: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to withdraw application",
		})
	}

	return c.JSON(http.StatusOK, response{Success: true})
}

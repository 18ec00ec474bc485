package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
)

type subscriptionHandler struct {
	subRepo  repository.SubscriptionRepository
	planRepo repository.PlanRepository
	userRepo repository.UserRepository
	validate *validator.Validate
}

func NewSubscriptionHandler(
	subRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
) *subscriptionHandler {
	return &subscriptionHandler{
		subRepo:  subRepo,
		planRepo: planRepo,
		userRepo: userRepo,
		validate: validator.New(),
	}
}

// GetSubscription returns the caller's current subscription, if any.
func (h *subscriptionHandler) GetSubscription(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_subscription")

	userClaims, err := authSession(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	sub, err := h.subRepo.FindActiveByUserID(c.Request().Context(), userClaims.ID)
	if err != nil {
		logger.Errorf("Error finding subscription: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve subscription",
		})
	}

	if sub == nil {
		return c.JSON(http.StatusOK, response{
			Success: true,
			Data: model.SubscriptionResponse{
				PlanCode: model.PlanBasic,
				Status:   model.SubscriptionExpired,
			},
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    sub.ToSubscriptionResponse(),
	})
}

// Subscribe starts a subscription on an active plan for the caller's role.
// Payment capture happens out of band; the webhook below is what a real
// provider would hit, this endpoint exists for trials and manual flows.
func (h *subscriptionHandler) Subscribe(c echo.Context) error {
	logger := logrus.WithField("endpoint", "subscribe")

	userClaims, err := authSession(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	var req model.SubscribeRequest
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

	user, err := h.userRepo.FindByID(c.Request().Context(), userClaims.ID)
	if err != nil || user == nil {
		logger.Errorf("Error finding user: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve user",
		})
	}

	// Inactive plans are not subscribable; grandfathered subscribers keep
	// resolving theirs, but new sign-ups only see the active set.
	plan, err := h.planRepo.GetPlan(c.Request().Context(), user.Role, req.PlanCode)
	if err != nil {
		logger.Errorf("Error finding plan: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve plan",
		})
	}
	if plan == nil || !plan.IsActive {
		return c.JSON(http.StatusNotFound, response{
			Success: false,
			Message: "plan not available",
		})
	}

	now := time.Now()
	end := now.AddDate(0, 1, 0)
	if plan.TrialDays > 0 {
		end = end.AddDate(0, 0, plan.TrialDays)
	}

	sub := &model.Subscription{
		UserID:    user.ID,
		PlanCode:  plan.Code,
		StartDate: now,
		EndDate:   end,
	}

	if err := h.subRepo.Subscribe(c.Request().Context(), sub); err != nil {
		logger.Errorf("Error creating subscription: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to create subscription",
		})
	}

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Data:    sub.ToSubscriptionResponse(),
	})
}

// Cancel ends the caller's active subscription. Their effective plan reverts
// to BASIC on the very next request; history is kept.
func (h *subscriptionHandler) Cancel(c echo.Context) error {
	logger := logrus.WithField("endpoint", "cancel_subscription")

	userClaims, err := authSession(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	if err := h.subRepo.Cancel(c.Request().Context(), userClaims.ID); err != nil {
		logger.Errorf("Error cancelling subscription: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to cancel subscription",
		})
	}

	return c.JSON(http.StatusOK, response{Success: true})
}

// PaymentWebhook applies a provider-agnostic payment event. Whatever service
// talks to the actual payment provider translates its callbacks into these
// and relays them with the shared secret in X-Webhook-Secret. Each event
// transitions the user's subscription and invalidates their cached
// entitlement before returning.
func (h *subscriptionHandler) PaymentWebhook(c echo.Context) error {
	logger := logrus.WithField("endpoint", "payment_webhook")

	// An unset WEBHOOK_SECRET rejects every event rather than accepting
	// unauthenticated ones.
	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" || c.Request().Header.Get("X-Webhook-Secret") != secret {
		logger.Warn("Payment webhook rejected: missing or invalid secret")
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	var req model.PaymentEventRequest
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

	ctx := c.Request().Context()

	switch req.Event {
	case "payment_succeeded":
		user, err := h.userRepo.FindByID(ctx, req.UserID)
		if err != nil || user == nil {
			logger.Errorf("Unknown user %d in payment event: %v", req.UserID, err)
			return c.JSON(http.StatusNotFound, response{
				Success: false,
				Message: "user not found",
			})
		}

		months := req.Months
		if months < 1 {
			months = 1
		}

		now := time.Now()
		sub := &model.Subscription{
			UserID:    user.ID,
			PlanCode:  req.PlanCode,
			StartDate: now,
			EndDate:   now.AddDate(0, months, 0),
		}
		if err := h.subRepo.Subscribe(ctx, sub); err != nil {
			logger.Errorf("Error activating subscription: %v", err)
			return c.JSON(http.StatusInternalServerError, response{
				Success: false,
				Message: "failed to activate subscription",
			})
		}

	case "payment_failed", "subscription_expired":
		if err := h.subRepo.Expire(ctx, req.UserID); err != nil {
			logger.Errorf("Error expiring subscription: %v", err)
			return c.JSON(http.StatusInternalServerError, response{
				Success: false,
				Message: "failed to expire subscription",
			})
		}
	}

	return c.JSON(http.StatusOK, response{Success: true})
}

package handler

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
)

type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type authHandler struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

func NewAuthHandler(userRepo repository.UserRepository) *authHandler {
	return &authHandler{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

func (h *authHandler) Register(c echo.Context) error {
	logger := logrus.WithField("endpoint", "register")

	var req model.RegisterRequest
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

	// Check if user already exists
	existingUser, err := h.userRepo.FindByEmail(c.Request().Context(), req.Email)
	if err == nil && existingUser != nil {
		logger.Warnf("User with email %s already exists", req.Email)
		return c.JSON(http.StatusConflict, response{
			Success: false,
			Message: "user with this email already exists",
		})
	}

	// New accounts start unvalidated; identity verification flips the status
	// and until then the entitlement resolver keeps everything hidden.
	user := &model.User{
		Email:            req.Email,
		Name:             req.Name,
		Password:         req.Password,
		Role:             req.Role,
		ValidationStatus: model.ValidationPending,
	}

	if err := h.userRepo.Create(c.Request().Context(), user); err != nil {
		logger.Errorf("Error creating user: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to create user",
		})
	}

	token, err := signJWTToken(user.ID, user.Email, user.Role)
	if err != nil {
		logger.Errorf("Error generating token: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to generate token",
		})
	}

	// Remove password from response
	user.Password = ""

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Data: model.AuthResponse{
			Token: token,
			Type:  "Bearer",
			User:  *user,
		},
	})
}

func (h *authHandler) Login(c echo.Context) error {
	logger := logrus.WithField("endpoint", "login")

	var req model.LoginRequest
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

	user, err := h.userRepo.FindByEmail(c.Request().Context(), req.Email)
	if err != nil || user == nil {
		logger.Warnf("User not found: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "invalid email or password",
		})
	}

	if !repository.VerifyPassword(user.Password, req.Password) {
		logger.Warnf("Invalid password for user: %s", req.Email)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "invalid email or password",
		})
	}

	token, err := signJWTToken(user.ID, user.Email, user.Role)
	if err != nil {
		logger.Errorf("Error generating token: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to generate token",
		})
	}

	// Remove password from response
	user.Password = ""

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data: model.AuthResponse{
			Token: token,
			Type:  "Bearer",
			User:  *user,
		},
	})
}

// ValidateUser is the admin action standing in for the identity verification
// collaborator: it flips a user's validation status, which is what the
// entitlement resolver keys the NOT_VALIDATED short-circuit on.
func (h *authHandler) ValidateUser(c echo.Context) error {
	logger := logrus.WithField("endpoint", "validate_user")

	id, err := parseUintID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid user id",
		})
	}

	var req model.ValidateUserRequest
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

	if err := h.userRepo.UpdateValidation(c.Request().Context(), id, req.Status); err != nil {
		logger.Errorf("Error updating validation status: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to update validation status",
		})
	}

	return c.JSON(http.StatusOK, response{Success: true})
}

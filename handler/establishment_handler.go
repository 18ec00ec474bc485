package handler

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
	"github.com/missionly/missionly-core/utils"
)

type establishmentHandler struct {
	establishmentRepo repository.EstablishmentRepository
	validate          *validator.Validate
	cloudinaryService *utils.CloudinaryService
}

func NewEstablishmentHandler(establishmentRepo repository.EstablishmentRepository, cloudinaryService *utils.CloudinaryService) *establishmentHandler {
	return &establishmentHandler{
		establishmentRepo: establishmentRepo,
		validate:          validator.New(),
		cloudinaryService: cloudinaryService,
	}
}

// GetEstablishment retrieves the establishment profile for the authenticated user
func (h *establishmentHandler) GetEstablishment(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_establishment")

	userClaims, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	establishment, err := h.establishmentRepo.FindByUserID(c.Request().Context(), userClaims.ID)
	if err != nil {
		logger.Errorf("Error finding establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve establishment",
		})
	}

	if establishment == nil {
		return c.JSON(http.StatusOK, response{
			Success: true,
			Data:    model.EstablishmentResponse{},
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    establishment.ToEstablishmentResponse(),
	})
}

// UpdateEstablishment updates the establishment profile
func (h *establishmentHandler) UpdateEstablishment(c echo.Context) error {
	logger := logrus.WithField("endpoint", "update_establishment")

	userClaims, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	var req model.UpdateEstablishmentRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	establishment, err := h.establishmentRepo.FindByUserID(c.Request().Context(), userClaims.ID)
	if err != nil {
		logger.Errorf("Error finding establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve establishment",
		})
	}

	if establishment == nil {
		establishment = &model.Establishment{UserID: userClaims.ID}
	}

	if req.Name != nil {
		establishment.Name = *req.Name
	}
	if req.Address != nil {
		establishment.Address = *req.Address
	}
	if req.City != nil {
		establishment.City = *req.City
	}
	if req.Phone != nil {
		establishment.Phone = *req.Phone
	}
	if req.Website != nil {
		establishment.Website = *req.Website
	}

	if establishment.ID == 0 {
		err = h.establishmentRepo.Create(c.Request().Context(), establishment)
	} else {
		err = h.establishmentRepo.Update(c.Request().Context(), establishment)
	}

	if err != nil {
		logger.Errorf("Error saving establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to save establishment",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    establishment.ToEstablishmentResponse(),
	})
}

// UploadLogo uploads an establishment logo to Cloudinary
func (h *establishmentHandler) UploadLogo(c echo.Context) error {
	logger := logrus.WithField("endpoint", "upload_logo")

	userClaims, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	file, err := c.FormFile("logo")
	if err != nil {
		logger.Errorf("Error getting file: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "logo file is required",
		})
	}

	if file.Size > 5*1024*1024 {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "file size must be less than 5MB",
		})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/gif" && contentType != "image/webp" {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "file must be an image (jpeg, png, gif, or webp)",
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.Errorf("Error opening file: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to read file",
		})
	}
	defer src.Close()

	establishment, err := h.establishmentRepo.FindByUserID(c.Request().Context(), userClaims.ID)
	if err != nil {
		logger.Errorf("Error finding establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve establishment",
		})
	}

	if establishment == nil {
		establishment = &model.Establishment{UserID: userClaims.ID}
	}

	if h.cloudinaryService == nil {
		return c.JSON(http.StatusServiceUnavailable, response{
			Success: false,
			Message: "image upload service is not configured",
		})
	}

	publicID := fmt.Sprintf("establishment-logo-%d", userClaims.ID)
	logoURL, err := h.cloudinaryService.UploadImage(c.Request().Context(), src, publicID)
	if err != nil {
		logger.Errorf("Error uploading to Cloudinary: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to upload logo",
		})
	}

	establishment.Logo = logoURL
	if establishment.ID == 0 {
		err = h.establishmentRepo.Create(c.Request().Context(), establishment)
	} else {
		err = h.establishmentRepo.Update(c.Request().Context(), establishment)
	}

	if err != nil {
		logger.Errorf("Error saving establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to save establishment",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    establishment.ToEstablishmentResponse(),
	})
}

// RemoveLogo removes the establishment logo
func (h *establishmentHandler) RemoveLogo(c echo.Context) error {
	logger := logrus.WithField("endpoint", "remove_logo")

	userClaims, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}

	establishment, err := h.establishmentRepo.FindByUserID(c.Request().Context(), userClaims.ID)
	if err != nil {
		logger.Errorf("Error finding establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve establishment",
		})
	}

	if establishment == nil || establishment.Logo == "" {
		return c.JSON(http.StatusOK, response{Success: true})
	}

	if h.cloudinaryService != nil {
		publicID := utils.GetPublicIDFromURL(establishment.Logo)
		if publicID != "" {
			if err := h.cloudinaryService.DeleteImage(c.Request().Context(), publicID); err != nil {
				logger.Warnf("Error deleting logo from Cloudinary: %v", err)
			}
		}
	}

	establishment.Logo = ""
	if err := h.establishmentRepo.Update(c.Request().Context(), establishment); err != nil {
		logger.Errorf("Error saving establishment: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to save establishment",
		})
	}

	return c.JSON(http.StatusOK, response{Success: true})
}

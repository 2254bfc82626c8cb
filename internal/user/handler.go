package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jdoshi/famledger/pkg/middleware"
	"github.com/jdoshi/famledger/pkg/response"
)

// Handler handles HTTP requests for user operations
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)

	r.Post("/devices", h.RegisterDevice)
	r.Get("/devices", h.ListDevices)
	r.Delete("/devices/{token}", h.RemoveDevice)

	return r
}

// GetProfile handles GET /users/profile
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /users/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get profile")
		return
	}

	response.JSON(w, http.StatusOK, u.ToResponse())
}

// UpdateProfile handles PUT /users/profile
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile update request"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /users/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Name != nil && (len(*req.Name) == 0 || len(*req.Name) > 100) {
		response.BadRequest(w, "Name must be between 1 and 100 characters")
		return
	}
	if req.CurrencyPreference != nil && (len(*req.CurrencyPreference) == 0 || len(*req.CurrencyPreference) > 5) {
		response.BadRequest(w, "Currency preference must be between 1 and 5 characters")
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update profile")
		return
	}

	response.JSON(w, http.StatusOK, u.ToResponse())
}

// RegisterDevice handles POST /users/devices
// @Summary      Register a push device token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterDeviceRequest true "Device registration request"
// @Success      201 {object} response.APIResponse{data=DeviceResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /users/devices [post]
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.FCMToken == "" {
		response.BadRequest(w, "fcm_token is required")
		return
	}

	d, err := h.service.RegisterDevice(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to register device")
		return
	}

	response.JSON(w, http.StatusCreated, d.ToResponse())
}

// ListDevices handles GET /users/devices
// @Summary      List registered devices
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]DeviceResponse}
// @Router       /users/devices [get]
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	devices, err := h.service.ListDevices(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list devices")
		return
	}

	resp := make([]*DeviceResponse, len(devices))
	for i, d := range devices {
		resp[i] = d.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// RemoveDevice handles DELETE /users/devices/{token}
// @Summary      Remove a device registration
// @Tags         users
// @Produce      json
// @Param        token path string true "FCM token"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /users/devices/{token} [delete]
func (h *Handler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	token := chi.URLParam(r, "token")
	if err := h.service.RemoveDevice(r.Context(), userID, token); err != nil {
		response.NotFound(w, "Device not found")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Device removed"})
}

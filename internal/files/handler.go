package files

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jdoshi/famledger/pkg/middleware"
	"github.com/jdoshi/famledger/pkg/response"
)

// maxUploadBytes bounds profile picture uploads
const maxUploadBytes = 5 << 20

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// Handler handles profile picture upload and serving
type Handler struct {
	storage Storage
}

// NewHandler creates a new files handler
func NewHandler(storage Storage) *Handler {
	return &Handler{storage: storage}
}

// Routes returns the router for file endpoints. Serving is public,
// uploading requires the auth middleware.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(auth).Put("/profile-pics", h.Upload)
	r.Get("/profile-pics/{fileName}", h.Serve)

	return r
}

// Upload handles PUT /files/profile-pics
// @Summary      Upload the caller's profile picture
// @Description  PNG or JPEG, at most 5 MiB. The file is stored under the user's id.
// @Tags         files
// @Accept       png,jpeg
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /files/profile-pics [put]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	contentType := r.Header.Get("Content-Type")
	ext, ok := allowedTypes[contentType]
	if !ok {
		response.BadRequest(w, "Only image/png and image/jpeg uploads are accepted")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	defer body.Close()

	name := userID + ext
	if err := h.storage.Save(name, body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.BadRequest(w, fmt.Sprintf("Upload exceeds the %d byte limit", maxUploadBytes))
			return
		}
		response.InternalError(w, "Failed to store file")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"file_name": name})
}

// Serve handles GET /files/profile-pics/{fileName}
// @Summary      Serve a stored profile picture
// @Tags         files
// @Produce      png,jpeg
// @Param        fileName path string true "File name"
// @Success      200
// @Failure      404 {object} response.APIResponse
// @Router       /files/profile-pics/{fileName} [get]
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")

	f, err := h.storage.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrFileNotFound):
			response.NotFound(w, "File not found")
		default:
			response.InternalError(w, "Failed to open file")
		}
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType(name))
	if _, err := io.Copy(w, f); err != nil {
		// response already committed
		return
	}
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}

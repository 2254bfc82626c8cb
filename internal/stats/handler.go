package stats

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jdoshi/famledger/internal/user"
	"github.com/jdoshi/famledger/pkg/middleware"
	"github.com/jdoshi/famledger/pkg/response"
)

// Handler handles HTTP requests for statistics
type Handler struct {
	service *Service
}

// NewHandler creates a new statistics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for statistics endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/personal/{userId}", h.Personal)
	r.Get("/personal/{userId}/monthly-trend", h.PersonalMonthlyTrend)
	r.Get("/family/{familyId}", h.Family)
	r.Get("/family/{familyId}/monthly-trend", h.FamilyMonthlyTrend)

	return r
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidWindow):
		response.BadRequest(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, "Internal server error")
	}
}

// window reads the optional start_date/end_date query bounds in epoch
// milliseconds
func window(r *http.Request) (int64, int64) {
	start, _ := strconv.ParseInt(r.URL.Query().Get("start_date"), 10, 64)
	end, _ := strconv.ParseInt(r.URL.Query().Get("end_date"), 10, 64)
	return start, end
}

// Personal handles GET /stats/personal/{userId}
// @Summary      Personal expense statistics
// @Description  Self only. Defaults to the current calendar month when no window is given.
// @Tags         stats
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        start_date query int false "Window start, epoch milliseconds"
// @Param        end_date query int false "Window end, epoch milliseconds"
// @Success      200 {object} response.APIResponse{data=Summary}
// @Failure      403 {object} response.APIResponse
// @Router       /stats/personal/{userId} [get]
func (h *Handler) Personal(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	start, end := window(r)
	summary, err := h.service.Personal(r.Context(), actorID, chi.URLParam(r, "userId"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// Family handles GET /stats/family/{familyId}
// @Summary      Family expense statistics with per-member breakdown
// @Description  Current family members only
// @Tags         stats
// @Produce      json
// @Param        familyId path string true "Family ID"
// @Param        start_date query int false "Window start, epoch milliseconds"
// @Param        end_date query int false "Window end, epoch milliseconds"
// @Success      200 {object} response.APIResponse{data=FamilySummary}
// @Failure      403 {object} response.APIResponse
// @Router       /stats/family/{familyId} [get]
func (h *Handler) Family(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	start, end := window(r)
	summary, err := h.service.Family(r.Context(), actorID, chi.URLParam(r, "familyId"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// PersonalMonthlyTrend handles GET /stats/personal/{userId}/monthly-trend
// @Summary      Month-by-month personal expense series
// @Tags         stats
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        start_date query int false "Window start, epoch milliseconds"
// @Param        end_date query int false "Window end, epoch milliseconds"
// @Success      200 {object} response.APIResponse{data=[]TrendPoint}
// @Failure      403 {object} response.APIResponse
// @Router       /stats/personal/{userId}/monthly-trend [get]
func (h *Handler) PersonalMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	start, end := window(r)
	points, err := h.service.PersonalMonthlyTrend(r.Context(), actorID, chi.URLParam(r, "userId"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, points)
}

// FamilyMonthlyTrend handles GET /stats/family/{familyId}/monthly-trend
// @Summary      Month-by-month family expense series
// @Tags         stats
// @Produce      json
// @Param        familyId path string true "Family ID"
// @Param        start_date query int false "Window start, epoch milliseconds"
// @Param        end_date query int false "Window end, epoch milliseconds"
// @Success      200 {object} response.APIResponse{data=[]TrendPoint}
// @Failure      403 {object} response.APIResponse
// @Router       /stats/family/{familyId}/monthly-trend [get]
func (h *Handler) FamilyMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	start, end := window(r)
	points, err := h.service.FamilyMonthlyTrend(r.Context(), actorID, chi.URLParam(r, "familyId"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, points)
}

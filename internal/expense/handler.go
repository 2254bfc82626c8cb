package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jdoshi/famledger/internal/user"
	"github.com/jdoshi/famledger/pkg/middleware"
	"github.com/jdoshi/famledger/pkg/pagination"
	"github.com/jdoshi/famledger/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.Mine)
	r.Get("/family", h.Family)
	r.Get("/category/{category}", h.ByCategory)
	r.Get("/between-dates", h.BetweenDates)
	r.Get("/since", h.Since)
	r.Get("/since-date", h.SinceDate)
	r.Get("/monthly-sum", h.MonthlySum)
	r.Get("/family-monthly-sum", h.FamilyMonthlySum)

	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/notify", h.Notify)

	return r
}

// listSort is the sort allow-list for the standard retrieval modes
var listSort = map[string]bool{
	"date":             true,
	"amount":           true,
	"category":         true,
	"created_on":       true,
	"last_modified_on": true,
}

// sinceSort keeps delta-sync ordering on modification time
var sinceSort = map[string]bool{
	"last_modified_on": true,
	"date":             true,
}

// writeError maps service errors to HTTP responses
func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, "Expense validation failed", verr.Violations)
	case errors.Is(err, ErrExpenseNotFound), errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrNotOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNoFamily), errors.Is(err, ErrNotFamilyMember):
		response.PreconditionFailed(w, err.Error())
	default:
		response.InternalError(w, "Internal server error")
	}
}

func meta(p pagination.Params, res *ListResult) *response.Meta {
	lastID := ""
	if len(res.Items) > 0 {
		lastID = res.Items[len(res.Items)-1].ID
	}
	pg := pagination.NewPage(p, res.Total, len(res.Items), lastID)
	return &response.Meta{
		Page:          pg.Number,
		Size:          pg.Size,
		TotalElements: pg.TotalElements,
		TotalPages:    pg.TotalPages,
		First:         pg.First(),
		Last:          pg.Last(),
		HasNext:       pg.HasNext(),
		HasPrevious:   pg.HasPrevious(),
		LastID:        pg.LastID,
	}
}

func (h *Handler) writePage(w http.ResponseWriter, p pagination.Params, res *ListResult) {
	items := make([]*ExpenseResponse, len(res.Items))
	for i, e := range res.Items {
		items[i] = e.ToResponse()
	}
	response.JSONWithMeta(w, http.StatusOK, items, meta(p, res))
}

// Create handles POST /expenses
// @Summary      Create an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      412 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	e, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// Get handles GET /expenses/{id}
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	e, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Update handles PUT /expenses/{id}
// @Summary      Update an expense
// @Description  Owner only
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Expense update request"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	e, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Allowed for the owner or a current member of the owner's family
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}

// Mine handles GET /expenses
// @Summary      List own expenses
// @Tags         expenses
// @Produce      json
// @Param        page query int false "Page number"
// @Param        size query int false "Page size"
// @Param        sort_by query string false "Sort field"
// @Param        last_id query string false "Cursor continuation id"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	p := pagination.FromRequest(r, listSort, "date", pagination.Descending)
	res, err := h.service.Mine(r.Context(), userID, p)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writePage(w, p, res)
}

// Family handles GET /expenses/family
// @Summary      List the current family's shared expenses
// @Tags         expenses
// @Produce      json
// @Param        page query int false "Page number"
// @Param        size query int false "Page size"
// @Param        sort_by query string false "Sort field"
// @Param        last_id query string false "Cursor continuation id"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      412 {object} response.APIResponse
// @Router       /expenses/family [get]
func (h *Handler) Family(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	p := pagination.FromRequest(r, listSort, "date", pagination.Descending)
	res, err := h.service.Family(r.Context(), userID, p)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writePage(w, p, res)
}

// ByCategory handles GET /expenses/category/{category}
// @Summary      List own expenses in one category
// @Tags         expenses
// @Produce      json
// @Param        category path string true "Category"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses/category/{category} [get]
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	p := pagination.FromRequest(r, listSort, "date", pagination.Descending)
	res, err := h.service.ByCategory(r.Context(), userID, chi.URLParam(r, "category"), p)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writePage(w, p, res)
}

// BetweenDates handles GET /expenses/between-dates
// @Summary      List own expenses inside an inclusive date range
// @Tags         expenses
// @Produce      json
// @Param        start query int true "Range start, epoch milliseconds"
// @Param        end query int true "Range end, epoch milliseconds"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses/between-dates [get]
func (h *Handler) BetweenDates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	start, _ := strconv.ParseInt(r.URL.Query().Get("start"), 10, 64)
	end, _ := strconv.ParseInt(r.URL.Query().Get("end"), 10, 64)

	p := pagination.FromRequest(r, listSort, "date", pagination.Ascending)
	res, err := h.service.BetweenDates(r.Context(), userID, start, end, p)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writePage(w, p, res)
}

// Since handles GET /expenses/since
// @Summary      List own expenses modified at or after a timestamp
// @Description  Delta-sync endpoint, ascending by modification time by default
// @Tags         expenses
// @Produce      json
// @Param        last_modified query int true "Cut-off, epoch milliseconds"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses/since [get]
func (h *Handler) Since(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	since, _ := strconv.ParseInt(r.URL.Query().Get("last_modified"), 10, 64)

	p := pagination.FromRequest(r, sinceSort, "last_modified_on", pagination.Ascending)
	res, err := h.service.Since(r.Context(), userID, since, p)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writePage(w, p, res)
}

// SinceDate handles GET /expenses/since-date
// @Summary      List own expenses with event dates at or after a cut-off
// @Tags         expenses
// @Produce      json
// @Param        date query int true "Cut-off, epoch milliseconds"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses/since-date [get]
func (h *Handler) SinceDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	since, _ := strconv.ParseInt(r.URL.Query().Get("date"), 10, 64)

	p := pagination.FromRequest(r, sinceSort, "date", pagination.Ascending)
	res, err := h.service.SinceDate(r.Context(), userID, since, p)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writePage(w, p, res)
}

// MonthlySum handles GET /expenses/monthly-sum
// @Summary      Sum own personal expenses for one month
// @Description  Family-shared expenses are excluded
// @Tags         expenses
// @Produce      json
// @Param        month query int true "Month (1-12)"
// @Param        year query int true "Year"
// @Success      200 {object} response.APIResponse{data=MonthlySumResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses/monthly-sum [get]
func (h *Handler) MonthlySum(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	sum, err := h.service.MonthlySum(r.Context(), userID, month, year)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, sum.ToResponse())
}

// FamilyMonthlySum handles GET /expenses/family-monthly-sum
// @Summary      Sum the current family's shared expenses for one month
// @Tags         expenses
// @Produce      json
// @Param        month query int true "Month (1-12)"
// @Param        year query int true "Year"
// @Success      200 {object} response.APIResponse{data=MonthlySumResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      412 {object} response.APIResponse
// @Router       /expenses/family-monthly-sum [get]
func (h *Handler) FamilyMonthlySum(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	sum, err := h.service.FamilyMonthlySum(r.Context(), userID, month, year)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, sum.ToResponse())
}

// Notify handles POST /expenses/{id}/notify
// @Summary      Push an expense event to the expense's family members
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      412 {object} response.APIResponse
// @Router       /expenses/{id}/notify [post]
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Notify(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Family notified"})
}

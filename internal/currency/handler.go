package currency

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jdoshi/famledger/pkg/response"
)

// Handler serves the currency reference data
type Handler struct{}

// NewHandler creates a new currency handler
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns the router for currency endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{code}", h.Get)

	return r
}

// List handles GET /currencies
// @Summary      List supported currencies
// @Tags         currencies
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Currency}
// @Router       /currencies [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, All())
}

// Get handles GET /currencies/{code}
// @Summary      Get one currency by ISO code
// @Tags         currencies
// @Produce      json
// @Param        code path string true "ISO 4217 code"
// @Success      200 {object} response.APIResponse{data=Currency}
// @Failure      404 {object} response.APIResponse
// @Router       /currencies/{code} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := ByCode(chi.URLParam(r, "code"))
	if !ok {
		response.NotFound(w, "Unknown currency code")
		return
	}
	response.JSON(w, http.StatusOK, c)
}

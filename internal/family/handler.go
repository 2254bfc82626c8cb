package family

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jdoshi/famledger/pkg/middleware"
	"github.com/jdoshi/famledger/pkg/response"
)

// Handler handles HTTP requests for family operations
type Handler struct {
	service *Service
}

// NewHandler creates a new family handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for family endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/create", h.Create)
	r.Post("/join", h.Join)
	r.Post("/leave", h.Leave)
	r.Get("/details", h.Details)
	r.Put("/update-name", h.UpdateName)

	r.Post("/invite", h.Invite)
	r.Post("/accept-invitation", h.AcceptInvitation)
	r.Post("/reject-invitation", h.RejectInvitation)
	r.Post("/cancel-invitation", h.CancelInvitation)
	r.Post("/resend-invitation", h.ResendInvitation)
	r.Post("/remove-member", h.RemoveMember)

	r.Post("/request-join", h.RequestToJoin)
	r.Post("/accept-join-request", h.AcceptJoinRequest)
	r.Post("/reject-join-request", h.RejectJoinRequest)

	return r
}

// JoinRequestRoutes returns the router for the requester-side join request
// endpoints
func (h *Handler) JoinRequestRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/mine", h.MyJoinRequests)
	r.Get("/", h.ListJoinRequests)
	r.Delete("/{id}", h.CancelJoinRequest)

	return r
}

// writeError maps service errors to HTTP responses
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrFamilyNotFound),
		errors.Is(err, ErrNoFamily),
		errors.Is(err, ErrInviteNotFound),
		errors.Is(err, ErrInviteeNotFound),
		errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrNotMember):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyInFamily),
		errors.Is(err, ErrFamilyFull),
		errors.Is(err, ErrNameTaken),
		errors.Is(err, ErrAlreadyInvited),
		errors.Is(err, ErrRequestPending):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrNotHead),
		errors.Is(err, ErrCannotRemoveSelf):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrAliasSpaceExhausted):
		response.Error(w, http.StatusServiceUnavailable, "ALIAS_SPACE_EXHAUSTED", err.Error())
	default:
		response.InternalError(w, "Internal server error")
	}
}

// Create handles POST /families/create
// @Summary      Create a family
// @Description  Creates a family with the caller as head and sole member
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body CreateFamilyRequest true "Family creation request"
// @Success      201 {object} response.APIResponse{data=FamilyResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /families/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateName(req.Name); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	f, err := h.service.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, f.ToResponse())
}

// Join handles POST /families/join
// @Summary      Join a family by its join code
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body JoinFamilyRequest true "Join request"
// @Success      200 {object} response.APIResponse{data=FamilyResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /families/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req JoinFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateAlias(req.AliasName); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	f, err := h.service.Join(r.Context(), userID, req.AliasName)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, f.ToResponse())
}

// Leave handles POST /families/leave
// @Summary      Leave the current family
// @Tags         families
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /families/leave [post]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Leave(r.Context(), userID); err != nil {
		// leaving without a family is a malformed request, not a lookup miss
		if errors.Is(err, ErrNoFamily) {
			response.BadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Left family"})
}

// Details handles GET /families/details
// @Summary      Get the current family with members
// @Description  The family head also sees pending invitations and join requests
// @Tags         families
// @Produce      json
// @Success      200 {object} response.APIResponse{data=DetailsResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /families/details [get]
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	d, err := h.service.Details(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, d.ToResponse())
}

// UpdateName handles PUT /families/update-name
// @Summary      Rename the family
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body UpdateNameRequest true "Rename request"
// @Success      200 {object} response.APIResponse{data=FamilyResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /families/update-name [put]
func (h *Handler) UpdateName(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req UpdateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateName(req.Name); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	f, err := h.service.UpdateName(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, f.ToResponse())
}

// Invite handles POST /families/invite
// @Summary      Invite a user by email
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body InviteRequest true "Invitation request"
// @Success      201 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /families/invite [post]
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.service.Invite(r.Context(), userID, req.Email); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"message": "Invitation sent"})
}

// AcceptInvitation handles POST /families/accept-invitation
// @Summary      Accept an invitation to the family with the given join code
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body JoinFamilyRequest true "Acceptance request"
// @Success      200 {object} response.APIResponse{data=FamilyResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /families/accept-invitation [post]
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req JoinFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateAlias(req.AliasName); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	f, err := h.service.AcceptInvitation(r.Context(), userID, req.AliasName)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, f.ToResponse())
}

// RejectInvitation handles POST /families/reject-invitation
// @Summary      Decline an invitation to the family with the given join code
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body JoinFamilyRequest true "Rejection request"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /families/reject-invitation [post]
func (h *Handler) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req JoinFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateAlias(req.AliasName); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.service.RejectInvitation(r.Context(), userID, req.AliasName); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Invitation declined"})
}

// CancelInvitation handles POST /families/cancel-invitation
// @Summary      Withdraw a pending invitation
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body MemberEmailRequest true "Cancellation request"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /families/cancel-invitation [post]
func (h *Handler) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req MemberEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.CancelInvitation(r.Context(), userID, req.Email); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Invitation cancelled"})
}

// ResendInvitation handles POST /families/resend-invitation
// @Summary      Re-send a pending invitation
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body MemberEmailRequest true "Resend request"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /families/resend-invitation [post]
func (h *Handler) ResendInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req MemberEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.ResendInvitation(r.Context(), userID, req.Email); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Invitation resent"})
}

// RemoveMember handles POST /families/remove-member
// @Summary      Remove a member from the family
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body MemberEmailRequest true "Removal request"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /families/remove-member [post]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req MemberEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.RemoveMember(r.Context(), userID, req.Email); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member removed"})
}

// RequestToJoin handles POST /families/request-join
// @Summary      Request to join the family with the given join code
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body JoinFamilyRequest true "Join request"
// @Success      201 {object} response.APIResponse{data=JoinRequestResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /families/request-join [post]
func (h *Handler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req JoinFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateAlias(req.AliasName); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	jr, err := h.service.RequestToJoin(r.Context(), userID, req.AliasName)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, jr.ToResponse())
}

// AcceptJoinRequest handles POST /families/accept-join-request
// @Summary      Accept a pending join request
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body RequesterRequest true "Acceptance request"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /families/accept-join-request [post]
func (h *Handler) AcceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req RequesterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.RequesterID == "" {
		response.BadRequest(w, "requester_id is required")
		return
	}

	if err := h.service.AcceptJoinRequest(r.Context(), userID, req.RequesterID); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Join request accepted"})
}

// RejectJoinRequest handles POST /families/reject-join-request
// @Summary      Decline a pending join request
// @Tags         families
// @Accept       json
// @Produce      json
// @Param        request body RequesterRequest true "Rejection request"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /families/reject-join-request [post]
func (h *Handler) RejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req RequesterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.RequesterID == "" {
		response.BadRequest(w, "requester_id is required")
		return
	}

	if err := h.service.RejectJoinRequest(r.Context(), userID, req.RequesterID); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Join request declined"})
}

// ListJoinRequests handles GET /join-requests
// @Summary      List the family's join requests
// @Description  Head only. The status query parameter filters by lifecycle state.
// @Tags         join-requests
// @Produce      json
// @Param        status query string false "Status filter" Enums(PENDING, ACCEPTED, REJECTED, CANCELLED)
// @Success      200 {object} response.APIResponse{data=[]JoinRequestResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /join-requests [get]
func (h *Handler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	status := JoinRequestStatus(r.URL.Query().Get("status"))
	switch status {
	case "", JoinRequestPending, JoinRequestAccepted, JoinRequestRejected, JoinRequestCancelled:
	default:
		response.BadRequest(w, "Invalid status filter")
		return
	}

	requests, err := h.service.ListJoinRequests(r.Context(), userID, status)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*JoinRequestResponse, len(requests))
	for i, jr := range requests {
		resp[i] = jr.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// MyJoinRequests handles GET /join-requests/mine
// @Summary      List the caller's own join requests
// @Tags         join-requests
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]JoinRequestResponse}
// @Router       /join-requests/mine [get]
func (h *Handler) MyJoinRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	requests, err := h.service.MyJoinRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*JoinRequestResponse, len(requests))
	for i, jr := range requests {
		resp[i] = jr.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// CancelJoinRequest handles DELETE /join-requests/{id}
// @Summary      Withdraw an own pending join request
// @Tags         join-requests
// @Produce      json
// @Param        id path string true "Join request ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /join-requests/{id} [delete]
func (h *Handler) CancelJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.CancelJoinRequest(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Join request cancelled"})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kvnlft/team-service/internal/api/middleware"
	"github.com/kvnlft/team-service/internal/api/response"
	"github.com/kvnlft/team-service/internal/api/validation"
	"github.com/kvnlft/team-service/internal/roster"
	"github.com/kvnlft/team-service/internal/team"
	"github.com/kvnlft/team-service/internal/user"
)

// TeamService is the command surface the HTTP layer drives.
type TeamService interface {
	Create(ctx context.Context, caller *user.User, input team.CreateInput) (*team.Summary, error)
	List(ctx context.Context, callerID uuid.UUID) ([]team.Summary, error)
	Get(ctx context.Context, callerID uuid.UUID, teamID int) (*team.Summary, error)
	Remove(ctx context.Context, teamID int) error
	AddMember(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error)
	AddManager(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error)
	RemoveMember(ctx context.Context, teamID int, memberID uuid.UUID) error
	RemoveManager(ctx context.Context, callerID uuid.UUID, teamID int, managerID uuid.UUID) error
}

type managerRef struct {
	ManagerID   string `json:"managerId"`
	ManagerName string `json:"managerName"`
}

type memberRef struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
}

type leaderRef struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type createTeamRequest struct {
	TeamName string       `json:"teamName"`
	Managers []managerRef `json:"managers"`
	Members  []memberRef  `json:"members"`
}

type teamSummaryResponse struct {
	TeamID     int          `json:"teamId"`
	TeamName   string       `json:"teamName"`
	TeamLeader *leaderRef   `json:"teamLeader"`
	Managers   []managerRef `json:"managers"`
	Members    []memberRef  `json:"members"`
}

func toSummaryResponse(s *team.Summary) teamSummaryResponse {
	out := teamSummaryResponse{
		TeamID:   s.TeamID,
		TeamName: s.TeamName,
		Managers: make([]managerRef, 0, len(s.Managers)),
		Members:  make([]memberRef, 0, len(s.Members)),
	}
	if s.Leader != nil {
		out.TeamLeader = &leaderRef{UserID: s.Leader.ID.String(), Username: s.Leader.Name}
	}
	for _, m := range s.Managers {
		out.Managers = append(out.Managers, managerRef{ManagerID: m.ID.String(), ManagerName: m.Name})
	}
	for _, m := range s.Members {
		out.Members = append(out.Members, memberRef{MemberID: m.ID.String(), MemberName: m.Name})
	}
	return out
}

// TeamHandler handles the team and roster endpoints.
type TeamHandler struct {
	svc TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(svc TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateTeamRequest(toValidationRequest(req))
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	input := team.CreateInput{TeamName: strings.TrimSpace(req.TeamName)}
	for _, m := range req.Managers {
		input.Managers = append(input.Managers, team.MemberRef{ID: uuid.MustParse(m.ManagerID), Name: m.ManagerName})
	}
	for _, m := range req.Members {
		input.Members = append(input.Members, team.MemberRef{ID: uuid.MustParse(m.MemberID), Name: m.MemberName})
	}

	summary, err := h.svc.Create(r.Context(), caller, input)
	if err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusCreated, toSummaryResponse(summary), requestID)
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller := middleware.GetIdentity(r.Context())

	summaries, err := h.svc.List(r.Context(), caller.ID)
	if err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	items := make([]teamSummaryResponse, 0, len(summaries))
	for i := range summaries {
		items = append(items, toSummaryResponse(&summaries[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Get handles GET /teams/{teamId}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller := middleware.GetIdentity(r.Context())

	teamID, ok := h.teamIDParam(w, r, requestID)
	if !ok {
		return
	}

	summary, err := h.svc.Get(r.Context(), caller.ID, teamID)
	if err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toSummaryResponse(summary), requestID)
}

// Delete handles DELETE /teams/{teamId}. Leadership is checked by the
// authorization middleware; a non-leader gets an explicit 403 rather than a
// silent no-op.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := h.teamIDParam(w, r, requestID)
	if !ok {
		return
	}

	if err := h.svc.Remove(r.Context(), teamID); err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	response.NoContent(w)
}

// AddMember handles POST /teams/{teamId}/members.
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := h.teamIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req memberRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateRosterRequest("memberId", "memberName", req.MemberID, req.MemberName)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	added, err := h.svc.AddMember(r.Context(), teamID, team.MemberRef{ID: uuid.MustParse(req.MemberID), Name: req.MemberName})
	if err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusCreated, map[string]any{
		"teamId":     teamID,
		"memberId":   added.ID.String(),
		"memberName": added.Name,
	}, requestID)
}

// AddManager handles POST /teams/{teamId}/managers.
func (h *TeamHandler) AddManager(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := h.teamIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req managerRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateRosterRequest("managerId", "managerName", req.ManagerID, req.ManagerName)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	added, err := h.svc.AddManager(r.Context(), teamID, team.MemberRef{ID: uuid.MustParse(req.ManagerID), Name: req.ManagerName})
	if err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusCreated, map[string]any{
		"teamId":      teamID,
		"managerId":   added.ID.String(),
		"managerName": added.Name,
	}, requestID)
}

// RemoveMember handles DELETE /teams/{teamId}/members/{memberId}.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := h.teamIDParam(w, r, requestID)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "memberId"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "memberId must be a valid UUID", requestID)
		return
	}

	if err := h.svc.RemoveMember(r.Context(), teamID, memberID); err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	response.NoContent(w)
}

// RemoveManager handles DELETE /teams/{teamId}/managers/{managerId}.
func (h *TeamHandler) RemoveManager(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller := middleware.GetIdentity(r.Context())

	teamID, ok := h.teamIDParam(w, r, requestID)
	if !ok {
		return
	}

	managerID, err := uuid.Parse(chi.URLParam(r, "managerId"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "managerId must be a valid UUID", requestID)
		return
	}

	if err := h.svc.RemoveManager(r.Context(), caller.ID, teamID, managerID); err != nil {
		h.respondServiceError(w, err, requestID)
		return
	}

	response.NoContent(w)
}

func (h *TeamHandler) teamIDParam(w http.ResponseWriter, r *http.Request, requestID string) (int, bool) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "teamId"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamId must be an integer", requestID)
		return 0, false
	}
	return teamID, true
}

// respondServiceError maps domain errors to HTTP responses. Not-found and
// forbidden are kept distinct on purpose.
func (h *TeamHandler) respondServiceError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, team.ErrDuplicateTeamName):
		response.Err(w, http.StatusConflict, "DUPLICATE_NAME", "This team already exists", requestID)
	case errors.Is(err, roster.ErrAlreadyOnRoster):
		response.Err(w, http.StatusConflict, "ALREADY_ON_ROSTER", "This user already joined the team", requestID)
	case errors.Is(err, team.ErrNoTeams):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Teams are not found", requestID)
	case errors.Is(err, team.ErrTeamNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team is not found", requestID)
	case errors.Is(err, user.ErrUserNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "User is not found", requestID)
	case errors.Is(err, roster.ErrEntryNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "This user is not on the team's roster", requestID)
	case errors.Is(err, team.ErrNotOnTeam):
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "You are not allowed to view this team", requestID)
	case errors.Is(err, team.ErrRoleMismatch):
		response.Err(w, http.StatusBadRequest, "ROLE_MISMATCH", "This user cannot be added or removed through this route", requestID)
	case errors.Is(err, team.ErrNameMismatch):
		response.Err(w, http.StatusBadRequest, "NAME_MISMATCH", "The supplied name does not match the stored username", requestID)
	case errors.Is(err, team.ErrLeaderSelfRemoval):
		response.Err(w, http.StatusBadRequest, "LEADER_SELF_REMOVE", "Leader can't be removed from a team", requestID)
	default:
		slog.Error("team operation failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed", requestID)
	}
}

func toValidationRequest(req createTeamRequest) validation.CreateTeamRequest {
	out := validation.CreateTeamRequest{TeamName: req.TeamName}
	for _, m := range req.Managers {
		out.Managers = append(out.Managers, validation.RosterRef{ID: m.ManagerID, Name: m.ManagerName})
	}
	for _, m := range req.Members {
		out.Members = append(out.Members, validation.RosterRef{ID: m.MemberID, Name: m.MemberName})
	}
	return out
}

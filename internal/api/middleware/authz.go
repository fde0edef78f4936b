package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kvnlft/team-service/internal/api/response"
	"github.com/kvnlft/team-service/internal/roster"
	"github.com/kvnlft/team-service/internal/team"
	"github.com/kvnlft/team-service/internal/user"
)

// RequireTeamAction returns middleware that evaluates the team authorization
// policy for the given action before the handler runs. For leader-gated
// actions it resolves the caller's roster entry for the {teamId} route param;
// a caller with no entry on that team is rejected outright.
func RequireTeamAction(rosters roster.Repository, action team.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			caller := GetIdentity(r.Context())
			if caller == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized", requestID)
				return
			}

			isLeader := false
			if caller.Role == user.RoleManager && action.RequiresLeadership() {
				teamID, err := strconv.Atoi(chi.URLParam(r, "teamId"))
				if err != nil {
					response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamId must be an integer", requestID)
					return
				}

				entry, err := rosters.Get(r.Context(), teamID, caller.ID)
				if err != nil {
					if errors.Is(err, roster.ErrEntryNotFound) {
						response.Err(w, http.StatusForbidden, "FORBIDDEN", "You are not on this team's roster", requestID)
						return
					}
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization failed", requestID)
					return
				}
				isLeader = entry.IsLeader
			}

			if err := team.Authorize(caller.Role, isLeader, action); err != nil {
				switch {
				case errors.Is(err, team.ErrMemberForbidden):
					response.Err(w, http.StatusForbidden, "FORBIDDEN", "Access to this route is not permitted for a member", requestID)
				case errors.Is(err, team.ErrLeaderRequired):
					response.Err(w, http.StatusForbidden, "FORBIDDEN", "Only the Lead Manager may perform this action", requestID)
				default:
					response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

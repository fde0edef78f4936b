package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kvnlft/team-service/internal/api/handler"
	"github.com/kvnlft/team-service/internal/api/middleware"
	"github.com/kvnlft/team-service/internal/roster"
	"github.com/kvnlft/team-service/internal/team"
	"github.com/kvnlft/team-service/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	TeamService TeamService
	Rosters     roster.Repository
	Users       user.Repository
	DBPinger    handler.DBPinger
	TokenSecret string
	Version     string
}

// TeamService aliases the handler's service interface for wiring.
type TeamService = handler.TeamService

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	teamHandler := handler.NewTeamHandler(deps.TeamService)

	r.Route("/teams", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Users, deps.TokenSecret))

		r.Get("/", teamHandler.List)
		r.Get("/{teamId}", teamHandler.Get)

		r.With(middleware.RequireTeamAction(deps.Rosters, team.ActionCreateTeam)).
			Post("/", teamHandler.Create)
		r.With(middleware.RequireTeamAction(deps.Rosters, team.ActionDeleteTeam)).
			Delete("/{teamId}", teamHandler.Delete)
		r.With(middleware.RequireTeamAction(deps.Rosters, team.ActionAddMember)).
			Post("/{teamId}/members", teamHandler.AddMember)
		r.With(middleware.RequireTeamAction(deps.Rosters, team.ActionRemoveMember)).
			Delete("/{teamId}/members/{memberId}", teamHandler.RemoveMember)
		r.With(middleware.RequireTeamAction(deps.Rosters, team.ActionAddManager)).
			Post("/{teamId}/managers", teamHandler.AddManager)
		r.With(middleware.RequireTeamAction(deps.Rosters, team.ActionRemoveManager)).
			Delete("/{teamId}/managers/{managerId}", teamHandler.RemoveManager)
	})

	return r
}

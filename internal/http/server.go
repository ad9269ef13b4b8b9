package http

import (
	"net/http"

	"github.com/langell/super-league-sub001/internal/league"
	"github.com/langell/super-league-sub001/internal/subrequest"
)

func NewServer(directory league.Directory, subRequests subrequest.Lifecycle, metricsHandler http.Handler) *Server {
	server := &Server{
		Directory:      directory,
		SubRequests:    subRequests,
		MetricsHandler: metricsHandler,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// League routes additionally require the caller's identity.
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /leagues/{leagueID}/members", Chain(s.ListMembersHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("GET /leagues/{leagueID}/sub-requests", Chain(s.ListOpenSubRequestsHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("GET /leagues/{leagueID}/sub-requests/eligible", Chain(s.EligibleSlotsHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /sub-requests", Chain(s.CreateSubRequestHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("GET /sub-requests/{id}", Chain(s.GetSubRequestHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /sub-requests/{id}/accept", Chain(s.AcceptSubRequestHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /sub-requests/{id}/cancel", Chain(s.CancelSubRequestHandler(), paramsMiddleware, identityMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

package http

import (
	"net/http"

	"github.com/langell/super-league-sub001/internal/league"
	"github.com/langell/super-league-sub001/internal/subrequest"
)

type Server struct {
	Directory      league.Directory
	SubRequests    subrequest.Lifecycle
	MetricsHandler http.Handler
	Router         *http.ServeMux
}

type createSubRequestBody struct {
	MatchPlayerID string `json:"match_player_id"`
	Note          string `json:"note"`
}

type errorResponse struct {
	Error string `json:"error"`
}

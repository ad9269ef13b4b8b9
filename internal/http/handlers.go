package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/langell/super-league-sub001/internal/subrequest"
)

const maxBodyBytes = 1 << 16

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := league.Role(r.URL.Query().Get("role"))
		if role != "" && !role.Valid() {
			writeError(w, fmt.Errorf("%w: %q", league.ErrInvalidRole, role))
			return
		}
		members, err := s.Directory.ListMembers(r.Context(), r.PathValue("leagueID"), role)
		if err != nil {
			log.Error("Failed to list members", "league", r.PathValue("leagueID"), "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func (s *Server) ListOpenSubRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		open, err := s.SubRequests.ListOpen(r.Context(), r.PathValue("leagueID"))
		if err != nil {
			log.Error("Failed to list open sub requests", "league", r.PathValue("leagueID"), "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, open)
	}
}

func (s *Server) EligibleSlotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := s.SubRequests.Eligible(r.Context(), userIDFromContext(r), r.PathValue("leagueID"))
		if err != nil {
			log.Error("Failed to resolve eligible slots", "league", r.PathValue("leagueID"), "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

func (s *Server) CreateSubRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createSubRequestBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if body.MatchPlayerID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "match_player_id is required"})
			return
		}

		req, err := s.SubRequests.Create(r.Context(), body.MatchPlayerID, userIDFromContext(r), body.Note)
		if err != nil {
			log.Warn("Sub request rejected", "matchPlayer", body.MatchPlayerID, "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

func (s *Server) GetSubRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.SubRequests.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

func (s *Server) AcceptSubRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.SubRequests.Accept(r.Context(), r.PathValue("id"), userIDFromContext(r))
		if err != nil {
			log.Warn("Accept rejected", "id", r.PathValue("id"), "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

func (s *Server) CancelSubRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.SubRequests.Cancel(r.Context(), r.PathValue("id"), userIDFromContext(r))
		if err != nil {
			log.Warn("Cancel rejected", "id", r.PathValue("id"), "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, subrequest.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, subrequest.ErrDuplicateOpenRequest),
		errors.Is(err, subrequest.ErrInvalidStateTransition),
		errors.Is(err, subrequest.ErrAlreadySeated):
		return http.StatusConflict
	case errors.Is(err, subrequest.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, subrequest.ErrMatchNotUpcoming):
		return http.StatusUnprocessableEntity
	case errors.Is(err, league.ErrInvalidRole):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

package subrequest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/langell/super-league-sub001/internal/league"
)

// Status is the lifecycle state of a sub request.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
)

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrDuplicateOpenRequest   = errors.New("an open sub request already exists for this slot")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrMatchNotUpcoming       = errors.New("match is not upcoming")
	// ErrRequestNotOpen also matches ErrInvalidStateTransition.
	ErrRequestNotOpen = fmt.Errorf("sub request is not open: %w", ErrInvalidStateTransition)
	// ErrNotFound is shared with the league directory so callers need one check.
	ErrNotFound = league.ErrNotFound
	// ErrAlreadySeated rejects an accept by a sub already playing in the match.
	ErrAlreadySeated = league.ErrAlreadySeated
)

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusCancelled
}

// Transition validates moving from s to next. Only open requests move, and
// only into a terminal state.
func (s Status) Transition(next Status) error {
	if s != StatusOpen || !next.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, s, next)
	}
	return nil
}

// store handles all database operations for sub requests.
type store struct {
	db *sql.DB
}

// SubRequest asks for someone to fill a match player's seat.
type SubRequest struct {
	ID            string     `json:"id"`
	MatchPlayerID string     `json:"match_player_id"`
	RequestedBy   string     `json:"requested_by"`
	Note          string     `json:"note"`
	Status        Status     `json:"status"`
	AcceptedBy    *string    `json:"accepted_by"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at"`
}

// Slot is a match player seat together with the league and date it belongs to.
type Slot struct {
	MatchPlayerID    string    `json:"match_player_id"`
	MatchID          string    `json:"match_id"`
	RoundID          string    `json:"round_id"`
	OrganizationID   string    `json:"organization_id"`
	UserID           string    `json:"user_id"`
	TeamID           *string   `json:"team_id,omitempty"`
	StartingHandicap *float64  `json:"starting_handicap,omitempty"`
	MatchDate        time.Time `json:"match_date"`
}

// OpenRequest is an open sub request as listed to the subs of a league.
type OpenRequest struct {
	SubRequest
	OrganizationID string    `json:"organization_id"`
	MatchDate      time.Time `json:"match_date"`
	RequesterName  string    `json:"requester_name"`
}

// Accepted is the outcome of a successful accept.
type Accepted struct {
	Request *SubRequest
	Slot    *Slot
}

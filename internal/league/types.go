package league

import (
	"database/sql"
	"errors"
	"time"
)

// Role is a member's role within one league.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
	RoleSub    Role = "sub"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlayer, RoleSub:
		return true
	}
	return false
}

// NotificationPreference is the channel a user wants to be reached on.
type NotificationPreference string

const (
	PreferEmail NotificationPreference = "email"
	PreferSMS   NotificationPreference = "sms"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidRole = errors.New("invalid role")

	// ErrAlreadySeated is returned when a user would hold two seats in one match.
	ErrAlreadySeated = errors.New("user already holds a seat in this match")
)

// store handles all database operations for leagues.
type store struct {
	db *sql.DB
}

// User is a person that can be reached by the notification dispatcher.
type User struct {
	ID                     string                 `json:"id" yaml:"id"`
	Name                   string                 `json:"name" yaml:"name"`
	Email                  string                 `json:"email,omitempty" yaml:"email"`
	Phone                  string                 `json:"phone,omitempty" yaml:"phone"`
	NotificationPreference NotificationPreference `json:"notification_preference" yaml:"notification_preference"`
}

type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member links a user to an organization with a role.
type Member struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	UserID         string   `json:"user_id"`
	UserName       string   `json:"user_name"`
	Role           Role     `json:"role"`
	Handicap       *float64 `json:"handicap,omitempty"`
}

type Season struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
}

type Round struct {
	ID       string    `json:"id"`
	SeasonID string    `json:"season_id"`
	Date     time.Time `json:"date"`
}

type Team struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
}

// NewMatch describes a match and its participants to be created in one step.
type NewMatch struct {
	RoundID string
	TeamA   string
	TeamB   string
	Players []NewMatchPlayer
}

type NewMatchPlayer struct {
	UserID string
	TeamID string
}

type Match struct {
	ID      string        `json:"id"`
	RoundID string        `json:"round_id"`
	TeamA   *string       `json:"team_a_id,omitempty"`
	TeamB   *string       `json:"team_b_id,omitempty"`
	Players []MatchPlayer `json:"players"`
}

// MatchPlayer is one participant's seat in a match. StartingHandicap is
// captured when the seat is filled and not recomputed afterwards.
type MatchPlayer struct {
	ID               string   `json:"id"`
	MatchID          string   `json:"match_id"`
	UserID           string   `json:"user_id"`
	TeamID           *string  `json:"team_id,omitempty"`
	StartingHandicap *float64 `json:"starting_handicap,omitempty"`
}

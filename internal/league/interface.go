package league

import (
	"context"
	"time"
)

// Directory is the read side of league membership consumed by the
// notification dispatcher and the sub request lifecycle.
type Directory interface {
	ListMembers(ctx context.Context, organizationID string, role Role) ([]Member, error)
	GetMembership(ctx context.Context, organizationID, userID string) (*Member, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}

// LeagueStore defines the interface for interacting with league data.
type LeagueStore interface {
	Directory
	CreateOrganization(ctx context.Context, name string) (*Organization, error)
	UpsertUser(ctx context.Context, user User) (*User, error)
	AddMember(ctx context.Context, organizationID, userID string, role Role, handicap *float64) (*Member, error)
	CreateSeason(ctx context.Context, organizationID, name string) (*Season, error)
	CreateRound(ctx context.Context, seasonID string, date time.Time) (*Round, error)
	CreateTeam(ctx context.Context, organizationID, name string) (*Team, error)
	CreateMatch(ctx context.Context, m NewMatch) (*Match, error)
	GetMatch(ctx context.Context, matchID string) (*Match, error)
}

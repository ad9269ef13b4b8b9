package subrequest_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/langell/super-league-sub001/internal/database"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

// fixture is a league with one player holding a seat in an upcoming and a
// past match, plus two subs.
type fixture struct {
	db       *sql.DB
	leagues  league.LeagueStore
	org      *league.Organization
	player   *league.User
	other    *league.User
	subs     []*league.User
	upcoming *league.Match
	later    *league.Match
	past     *league.Match
}

func handicap(v float64) *float64 { return &v }

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, teardown, err := database.InitDB(filepath.Join(t.TempDir(), "subs.db"), "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	leagues := league.New(db)
	f := &fixture{db: db, leagues: leagues}

	f.org, err = leagues.CreateOrganization(ctx, "Thursday Scramble")
	require.NoError(t, err)

	addUser := func(name string, role league.Role, hcp float64) *league.User {
		u, err := leagues.UpsertUser(ctx, league.User{Name: name, Email: name + "@example.com"})
		require.NoError(t, err)
		_, err = leagues.AddMember(ctx, f.org.ID, u.ID, role, handicap(hcp))
		require.NoError(t, err)
		return u
	}
	f.player = addUser("Alice", league.RolePlayer, 14)
	f.other = addUser("Pat", league.RolePlayer, 20)
	f.subs = []*league.User{addUser("Bob", league.RoleSub, 9.5), addUser("Cara", league.RoleSub, 11)}

	season, err := leagues.CreateSeason(ctx, f.org.ID, "2026")
	require.NoError(t, err)

	newMatch := func(date time.Time) *league.Match {
		round, err := leagues.CreateRound(ctx, season.ID, date)
		require.NoError(t, err)
		m, err := leagues.CreateMatch(ctx, league.NewMatch{
			RoundID: round.ID,
			Players: []league.NewMatchPlayer{{UserID: f.player.ID}, {UserID: f.other.ID}},
		})
		require.NoError(t, err)
		return m
	}
	f.later = newMatch(now.Add(14 * 24 * time.Hour))
	f.upcoming = newMatch(now.Add(7 * 24 * time.Hour))
	f.past = newMatch(now.Add(-7 * 24 * time.Hour))
	return f
}

// seat returns the match player id held by user in m.
func seat(t *testing.T, m *league.Match, user *league.User) string {
	t.Helper()
	for _, p := range m.Players {
		if p.UserID == user.ID {
			return p.ID
		}
	}
	t.Fatalf("user %s has no seat in match %s", user.ID, m.ID)
	return ""
}

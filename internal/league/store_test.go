package league_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/langell/super-league-sub001/internal/database"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) league.LeagueStore {
	t.Helper()

	db, teardown, err := database.InitDB(filepath.Join(t.TempDir(), "league.db"), "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return league.New(db)
}

func handicap(v float64) *float64 { return &v }

func TestMembersByRole(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	org, err := store.CreateOrganization(ctx, "Tuesday Night League")
	require.NoError(t, err)

	for _, u := range []struct {
		name string
		role league.Role
	}{
		{"Carol", league.RoleSub},
		{"Alice", league.RolePlayer},
		{"Bob", league.RoleSub},
		{"Dana", league.RoleAdmin},
	} {
		user, err := store.UpsertUser(ctx, league.User{Name: u.name, Email: u.name + "@example.com"})
		require.NoError(t, err)
		_, err = store.AddMember(ctx, org.ID, user.ID, u.role, handicap(10))
		require.NoError(t, err)
	}

	subs, err := store.ListMembers(ctx, org.ID, league.RoleSub)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Bob", subs[0].UserName)
	assert.Equal(t, "Carol", subs[1].UserName)

	all, err := store.ListMembers(ctx, org.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := store.ListMembers(ctx, "unknown-org", league.RoleSub)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddMemberRejectsInvalidRole(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	org, err := store.CreateOrganization(ctx, "League")
	require.NoError(t, err)
	user, err := store.UpsertUser(ctx, league.User{Name: "Alice"})
	require.NoError(t, err)

	_, err = store.AddMember(ctx, org.ID, user.ID, "captain", nil)
	assert.ErrorIs(t, err, league.ErrInvalidRole)
}

func TestGetUserAndMembershipNotFound(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, league.ErrNotFound)

	_, err = store.GetMembership(ctx, "org", "missing")
	assert.ErrorIs(t, err, league.ErrNotFound)
}

func TestUpsertUserUpdatesContact(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	user, err := store.UpsertUser(ctx, league.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, league.PreferEmail, user.NotificationPreference)

	user.Phone = "+15555550100"
	user.NotificationPreference = league.PreferSMS
	_, err = store.UpsertUser(ctx, *user)
	require.NoError(t, err)

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "+15555550100", got.Phone)
	assert.Equal(t, league.PreferSMS, got.NotificationPreference)
}

func TestCreateMatchSnapshotsHandicap(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	org, err := store.CreateOrganization(ctx, "League")
	require.NoError(t, err)
	season, err := store.CreateSeason(ctx, org.ID, "2026")
	require.NoError(t, err)
	round, err := store.CreateRound(ctx, season.ID, time.Now().Add(72*time.Hour))
	require.NoError(t, err)
	team, err := store.CreateTeam(ctx, org.ID, "Eagles")
	require.NoError(t, err)
	alice, err := store.UpsertUser(ctx, league.User{Name: "Alice"})
	require.NoError(t, err)
	_, err = store.AddMember(ctx, org.ID, alice.ID, league.RolePlayer, handicap(12.4))
	require.NoError(t, err)

	match, err := store.CreateMatch(ctx, league.NewMatch{
		RoundID: round.ID,
		TeamA:   team.ID,
		Players: []league.NewMatchPlayer{{UserID: alice.ID, TeamID: team.ID}},
	})
	require.NoError(t, err)
	require.Len(t, match.Players, 1)
	require.NotNil(t, match.Players[0].StartingHandicap)
	assert.Equal(t, 12.4, *match.Players[0].StartingHandicap)

	// A later handicap change does not touch the snapshot.
	_, err = store.AddMember(ctx, org.ID, alice.ID, league.RolePlayer, handicap(8))
	require.NoError(t, err)

	got, err := store.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, got.Players, 1)
	assert.Equal(t, 12.4, *got.Players[0].StartingHandicap)
	require.NotNil(t, got.TeamA)
	assert.Equal(t, team.ID, *got.TeamA)
	assert.Nil(t, got.TeamB)
}

func TestCreateMatchRequiresMembership(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	org, err := store.CreateOrganization(ctx, "League")
	require.NoError(t, err)
	season, err := store.CreateSeason(ctx, org.ID, "2026")
	require.NoError(t, err)
	round, err := store.CreateRound(ctx, season.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	outsider, err := store.UpsertUser(ctx, league.User{Name: "Outsider"})
	require.NoError(t, err)

	_, err = store.CreateMatch(ctx, league.NewMatch{
		RoundID: round.ID,
		Players: []league.NewMatchPlayer{{UserID: outsider.ID}},
	})
	assert.ErrorIs(t, err, league.ErrNotFound)

	_, err = store.CreateMatch(ctx, league.NewMatch{RoundID: "missing"})
	assert.ErrorIs(t, err, league.ErrNotFound)
}

func TestCreateMatchRejectsDoubleSeat(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	org, err := store.CreateOrganization(ctx, "League")
	require.NoError(t, err)
	season, err := store.CreateSeason(ctx, org.ID, "2026")
	require.NoError(t, err)
	round, err := store.CreateRound(ctx, season.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	alice, err := store.UpsertUser(ctx, league.User{Name: "Alice"})
	require.NoError(t, err)
	_, err = store.AddMember(ctx, org.ID, alice.ID, league.RolePlayer, nil)
	require.NoError(t, err)

	_, err = store.CreateMatch(ctx, league.NewMatch{
		RoundID: round.ID,
		Players: []league.NewMatchPlayer{{UserID: alice.ID}, {UserID: alice.ID}},
	})
	assert.ErrorIs(t, err, league.ErrAlreadySeated)
}

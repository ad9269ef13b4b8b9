package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

func (s *store) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	org := &Organization{ID: uuid.New().String(), Name: name}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO organizations (id, name) VALUES (?, ?)`, org.ID, org.Name); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	log.Info("Created organization", "id", org.ID, "name", name)
	return org, nil
}

// UpsertUser inserts a user or updates the contact fields of an existing one.
// An empty ID gets a generated one.
func (s *store) UpsertUser(ctx context.Context, user User) (*User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.NotificationPreference == "" {
		user.NotificationPreference = PreferEmail
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, notification_preference)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			notification_preference = excluded.notification_preference
	`, user.ID, user.Name, nullString(user.Email), nullString(user.Phone), string(user.NotificationPreference))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

func (s *store) GetUser(ctx context.Context, userID string) (*User, error) {
	var (
		user         User
		email, phone sql.NullString
		preference   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, notification_preference FROM users WHERE id = ?
	`, userID).Scan(&user.ID, &user.Name, &email, &phone, &preference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Email = email.String
	user.Phone = phone.String
	user.NotificationPreference = NotificationPreference(preference)
	return &user, nil
}

func (s *store) AddMember(ctx context.Context, organizationID, userID string, role Role, handicap *float64) (*Member, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	member := &Member{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
		Handicap:       handicap,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO league_members (id, organization_id, user_id, role, handicap)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(organization_id, user_id) DO UPDATE SET
			role = excluded.role,
			handicap = excluded.handicap
	`, member.ID, organizationID, userID, string(role), handicap)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return s.GetMembership(ctx, organizationID, userID)
}

// ListMembers returns the members of an organization ordered by name. An
// empty role returns every member.
func (s *store) ListMembers(ctx context.Context, organizationID string, role Role) ([]Member, error) {
	query := `
		SELECT lm.id, lm.organization_id, lm.user_id, u.name, lm.role, lm.handicap
		FROM league_members lm
		JOIN users u ON u.id = lm.user_id
		WHERE lm.organization_id = ?`
	args := []any{organizationID}
	if role != "" {
		query += ` AND lm.role = ?`
		args = append(args, string(role))
	}
	query += ` ORDER BY u.name, lm.user_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (s *store) GetMembership(ctx context.Context, organizationID, userID string) (*Member, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT lm.id, lm.organization_id, lm.user_id, u.name, lm.role, lm.handicap
		FROM league_members lm
		JOIN users u ON u.id = lm.user_id
		WHERE lm.organization_id = ? AND lm.user_id = ?
	`, organizationID, userID)
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: membership of %s in %s", ErrNotFound, userID, organizationID)
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return member, nil
}

func scanMember(scanner interface{ Scan(...any) error }) (*Member, error) {
	var (
		member   Member
		role     string
		handicap sql.NullFloat64
	)
	if err := scanner.Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.UserName, &role, &handicap); err != nil {
		return nil, err
	}
	member.Role = Role(role)
	if handicap.Valid {
		member.Handicap = &handicap.Float64
	}
	return &member, nil
}

func (s *store) CreateSeason(ctx context.Context, organizationID, name string) (*Season, error) {
	season := &Season{ID: uuid.New().String(), OrganizationID: organizationID, Name: name}
	_, err := s.db.ExecContext(ctx, `INSERT INTO seasons (id, organization_id, name) VALUES (?, ?, ?)`, season.ID, organizationID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return season, nil
}

func (s *store) CreateRound(ctx context.Context, seasonID string, date time.Time) (*Round, error) {
	round := &Round{ID: uuid.New().String(), SeasonID: seasonID, Date: date}
	_, err := s.db.ExecContext(ctx, `INSERT INTO rounds (id, season_id, round_date) VALUES (?, ?, ?)`, round.ID, seasonID, date.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	return round, nil
}

func (s *store) CreateTeam(ctx context.Context, organizationID, name string) (*Team, error) {
	team := &Team{ID: uuid.New().String(), OrganizationID: organizationID, Name: name}
	_, err := s.db.ExecContext(ctx, `INSERT INTO teams (id, organization_id, name) VALUES (?, ?, ?)`, team.ID, organizationID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// CreateMatch inserts a match and all of its players in one transaction.
// Every player must be a member of the league owning the round; their
// current league handicap becomes the seat's starting handicap.
func (s *store) CreateMatch(ctx context.Context, m NewMatch) (*Match, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var organizationID string
	err = tx.QueryRowContext(ctx, `
		SELECT s.organization_id FROM rounds r JOIN seasons s ON s.id = r.season_id WHERE r.id = ?
	`, m.RoundID).Scan(&organizationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: round %s", ErrNotFound, m.RoundID)
		}
		return nil, fmt.Errorf("failed to look up round: %w", err)
	}

	match := &Match{
		ID:      uuid.New().String(),
		RoundID: m.RoundID,
		TeamA:   optional(m.TeamA),
		TeamB:   optional(m.TeamB),
		Players: []MatchPlayer{},
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO matches (id, round_id, team_a_id, team_b_id) VALUES (?, ?, ?, ?)`,
		match.ID, match.RoundID, match.TeamA, match.TeamB)
	if err != nil {
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}

	seated := make(map[string]bool, len(m.Players))
	for _, p := range m.Players {
		if seated[p.UserID] {
			return nil, fmt.Errorf("%w: user %s", ErrAlreadySeated, p.UserID)
		}
		seated[p.UserID] = true

		var handicap sql.NullFloat64
		err := tx.QueryRowContext(ctx, `
			SELECT handicap FROM league_members WHERE organization_id = ? AND user_id = ?
		`, organizationID, p.UserID).Scan(&handicap)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: user %s is not a member of %s", ErrNotFound, p.UserID, organizationID)
			}
			return nil, fmt.Errorf("failed to look up handicap: %w", err)
		}

		player := MatchPlayer{
			ID:      uuid.New().String(),
			MatchID: match.ID,
			UserID:  p.UserID,
			TeamID:  optional(p.TeamID),
		}
		if handicap.Valid {
			player.StartingHandicap = &handicap.Float64
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO match_players (id, match_id, user_id, team_id, starting_handicap) VALUES (?, ?, ?, ?, ?)
		`, player.ID, player.MatchID, player.UserID, player.TeamID, player.StartingHandicap)
		if err != nil {
			return nil, fmt.Errorf("failed to insert match player: %w", err)
		}
		match.Players = append(match.Players, player)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match: %w", err)
	}
	log.Info("Created match", "id", match.ID, "round", match.RoundID, "players", len(match.Players))
	return match, nil
}

func (s *store) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	var (
		match        Match
		teamA, teamB sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, round_id, team_a_id, team_b_id FROM matches WHERE id = ?`, matchID).
		Scan(&match.ID, &match.RoundID, &teamA, &teamB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	match.TeamA = optional(teamA.String)
	match.TeamB = optional(teamB.String)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, match_id, user_id, team_id, starting_handicap FROM match_players WHERE match_id = ? ORDER BY id
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match players: %w", err)
	}
	defer rows.Close()

	match.Players = []MatchPlayer{}
	for rows.Next() {
		var (
			player   MatchPlayer
			teamID   sql.NullString
			handicap sql.NullFloat64
		)
		if err := rows.Scan(&player.ID, &player.MatchID, &player.UserID, &teamID, &handicap); err != nil {
			return nil, fmt.Errorf("failed to scan match player: %w", err)
		}
		player.TeamID = optional(teamID.String)
		if handicap.Valid {
			player.StartingHandicap = &handicap.Float64
		}
		match.Players = append(match.Players, player)
	}
	return &match, rows.Err()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

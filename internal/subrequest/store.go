package subrequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/mattn/go-sqlite3"
)

// New creates a new sub request Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const slotSelect = `
	SELECT mp.id, mp.match_id, m.round_id, s.organization_id, mp.user_id, mp.team_id, mp.starting_handicap, r.round_date
	FROM match_players mp
	JOIN matches m ON m.id = mp.match_id
	JOIN rounds r ON r.id = m.round_id
	JOIN seasons s ON s.id = r.season_id`

const requestColumns = `sr.id, sr.match_player_id, sr.requested_by, sr.note, sr.status, sr.accepted_by, sr.created_at, sr.resolved_at`

func scanSlot(scanner interface{ Scan(...any) error }) (*Slot, error) {
	var (
		slot     Slot
		teamID   sql.NullString
		handicap sql.NullFloat64
		date     int64
	)
	if err := scanner.Scan(&slot.MatchPlayerID, &slot.MatchID, &slot.RoundID, &slot.OrganizationID,
		&slot.UserID, &teamID, &handicap, &date); err != nil {
		return nil, err
	}
	if teamID.Valid {
		slot.TeamID = &teamID.String
	}
	if handicap.Valid {
		slot.StartingHandicap = &handicap.Float64
	}
	slot.MatchDate = time.Unix(date, 0).UTC()
	return &slot, nil
}

func scanRequest(scanner interface{ Scan(...any) error }, extra ...any) (*SubRequest, error) {
	var (
		req        SubRequest
		status     string
		acceptedBy sql.NullString
		createdAt  int64
		resolvedAt sql.NullInt64
	)
	dest := append([]any{&req.ID, &req.MatchPlayerID, &req.RequestedBy, &req.Note, &status,
		&acceptedBy, &createdAt, &resolvedAt}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	req.Status = Status(status)
	if acceptedBy.Valid {
		req.AcceptedBy = &acceptedBy.String
	}
	req.CreatedAt = time.Unix(createdAt, 0).UTC()
	if resolvedAt.Valid {
		t := time.Unix(resolvedAt.Int64, 0).UTC()
		req.ResolvedAt = &t
	}
	return &req, nil
}

// Eligible lists the user's upcoming slots in a league, earliest first,
// leaving out slots that already have an open request.
func (s *store) Eligible(ctx context.Context, userID, organizationID string, now time.Time) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx, slotSelect+`
		WHERE mp.user_id = ? AND s.organization_id = ? AND r.round_date > ?
		AND NOT EXISTS (
			SELECT 1 FROM sub_requests sr WHERE sr.match_player_id = mp.id AND sr.status = 'open'
		)
		ORDER BY r.round_date, mp.id
	`, userID, organizationID, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible slots: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, *slot)
	}
	return slots, rows.Err()
}

func (s *store) GetSlot(ctx context.Context, matchPlayerID string) (*Slot, error) {
	return getSlot(ctx, s.db, matchPlayerID)
}

func getSlot(ctx context.Context, q queryer, matchPlayerID string) (*Slot, error) {
	slot, err := scanSlot(q.QueryRowContext(ctx, slotSelect+` WHERE mp.id = ?`, matchPlayerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match player %s", ErrNotFound, matchPlayerID)
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

// Create opens a request for a slot. Ownership, the match date and the open
// request check are evaluated in the same transaction as the insert; the
// partial unique index on open requests rejects anything that slips past.
func (s *store) Create(ctx context.Context, matchPlayerID, requestedBy, note string, now time.Time) (*SubRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slot, err := getSlot(ctx, tx, matchPlayerID)
	if err != nil {
		return nil, err
	}
	if slot.UserID != requestedBy {
		return nil, fmt.Errorf("%w: %s does not hold match player %s", ErrUnauthorized, requestedBy, matchPlayerID)
	}
	if !slot.MatchDate.After(now) {
		return nil, fmt.Errorf("%w: match on %s", ErrMatchNotUpcoming, slot.MatchDate.Format(time.RFC3339))
	}

	var open int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sub_requests WHERE match_player_id = ? AND status = 'open'
	`, matchPlayerID).Scan(&open)
	if err != nil {
		return nil, fmt.Errorf("failed to check open requests: %w", err)
	}
	if open > 0 {
		return nil, fmt.Errorf("%w: match player %s", ErrDuplicateOpenRequest, matchPlayerID)
	}

	req := &SubRequest{
		ID:            uuid.New().String(),
		MatchPlayerID: matchPlayerID,
		RequestedBy:   requestedBy,
		Note:          note,
		Status:        StatusOpen,
		CreatedAt:     time.Unix(now.Unix(), 0).UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sub_requests (id, match_player_id, requested_by, note, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, req.ID, req.MatchPlayerID, req.RequestedBy, req.Note, string(req.Status), now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: match player %s", ErrDuplicateOpenRequest, matchPlayerID)
		}
		return nil, fmt.Errorf("failed to insert sub request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: match player %s", ErrDuplicateOpenRequest, matchPlayerID)
		}
		return nil, fmt.Errorf("failed to commit sub request: %w", err)
	}
	log.Info("Created sub request", "id", req.ID, "matchPlayer", matchPlayerID, "requestedBy", requestedBy)
	return req, nil
}

// Accept resolves an open request and hands the slot to userID, who must be
// a sub of the slot's league without a seat of their own in the match. The
// match must still be upcoming. The status change and the reassignment commit
// together; the conditional update lets only one concurrent accept win.
func (s *store) Accept(ctx context.Context, requestID, userID string, now time.Time) (*Accepted, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := getRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.Status.Transition(StatusAccepted); err != nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrRequestNotOpen, requestID, req.Status)
	}
	if req.RequestedBy == userID {
		return nil, fmt.Errorf("%w: requester cannot accept their own request", ErrUnauthorized)
	}

	slot, err := getSlot(ctx, tx, req.MatchPlayerID)
	if err != nil {
		return nil, err
	}
	if !slot.MatchDate.After(now) {
		return nil, fmt.Errorf("%w: match on %s", ErrMatchNotUpcoming, slot.MatchDate.Format(time.RFC3339))
	}

	var (
		role     string
		handicap sql.NullFloat64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT role, handicap FROM league_members WHERE organization_id = ? AND user_id = ?
	`, slot.OrganizationID, userID).Scan(&role, &handicap)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) || role != string(league.RoleSub) {
		return nil, fmt.Errorf("%w: %s is not a sub of %s", ErrUnauthorized, userID, slot.OrganizationID)
	}

	var seated int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM match_players WHERE match_id = ? AND user_id = ?
	`, slot.MatchID, userID).Scan(&seated)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing seat: %w", err)
	}
	if seated > 0 {
		return nil, fmt.Errorf("%w: %s already plays in match %s", ErrAlreadySeated, userID, slot.MatchID)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE sub_requests SET status = ?, accepted_by = ?, resolved_at = ?
		WHERE id = ? AND status = 'open'
	`, string(StatusAccepted), userID, now.Unix(), requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept sub request: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read accept result: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotOpen, requestID)
	}

	var snapshot *float64
	if handicap.Valid {
		snapshot = &handicap.Float64
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE match_players SET user_id = ?, starting_handicap = ? WHERE id = ?
	`, userID, snapshot, req.MatchPlayerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s already plays in match %s", ErrAlreadySeated, userID, slot.MatchID)
		}
		return nil, fmt.Errorf("failed to reassign match player: %w", err)
	}

	accepted, err := getRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	slot, err = getSlot(ctx, tx, req.MatchPlayerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit accept: %w", err)
	}
	log.Info("Accepted sub request", "id", requestID, "acceptedBy", userID, "matchPlayer", req.MatchPlayerID)
	return &Accepted{Request: accepted, Slot: slot}, nil
}

// Cancel withdraws an open request. Only the requester may cancel.
func (s *store) Cancel(ctx context.Context, requestID, userID string, now time.Time) (*SubRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := getRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequestedBy != userID {
		return nil, fmt.Errorf("%w: only the requester can cancel %s", ErrUnauthorized, requestID)
	}
	if err := req.Status.Transition(StatusCancelled); err != nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrRequestNotOpen, requestID, req.Status)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE sub_requests SET status = ?, resolved_at = ? WHERE id = ? AND status = 'open'
	`, string(StatusCancelled), now.Unix(), requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel sub request: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read cancel result: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotOpen, requestID)
	}

	cancelled, err := getRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancel: %w", err)
	}
	log.Info("Cancelled sub request", "id", requestID)
	return cancelled, nil
}

func (s *store) Get(ctx context.Context, requestID string) (*SubRequest, error) {
	return getRequest(ctx, s.db, requestID)
}

func getRequest(ctx context.Context, q queryer, requestID string) (*SubRequest, error) {
	req, err := scanRequest(q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM sub_requests sr WHERE sr.id = ?`, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: sub request %s", ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to get sub request: %w", err)
	}
	return req, nil
}

// ListOpen returns the open requests of a league for matches after now,
// soonest match first.
func (s *store) ListOpen(ctx context.Context, organizationID string, now time.Time) ([]OpenRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requestColumns+`, s.organization_id, r.round_date, u.name
		FROM sub_requests sr
		JOIN match_players mp ON mp.id = sr.match_player_id
		JOIN matches m ON m.id = mp.match_id
		JOIN rounds r ON r.id = m.round_id
		JOIN seasons s ON s.id = r.season_id
		JOIN users u ON u.id = sr.requested_by
		WHERE s.organization_id = ? AND sr.status = 'open' AND r.round_date > ?
		ORDER BY r.round_date, sr.created_at
	`, organizationID, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query open sub requests: %w", err)
	}
	defer rows.Close()

	open := []OpenRequest{}
	for rows.Next() {
		var (
			item OpenRequest
			date int64
		)
		req, err := scanRequest(rows, &item.OrganizationID, &date, &item.RequesterName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open sub request: %w", err)
		}
		item.SubRequest = *req
		item.MatchDate = time.Unix(date, 0).UTC()
		open = append(open, item)
	}
	return open, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	// libSQL surfaces constraint errors as plain messages.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

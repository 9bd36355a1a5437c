package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/brandonr49/board-game-engine/internal/model"
)

// MatchRepo handles matches, match_players and match_events.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

const matchColumns = `id, creator_id, status, seed, winner, win_kind, created_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*model.Match, error) {
	var m model.Match
	var winner, kind sql.NullString
	if err := row.Scan(&m.ID, &m.CreatorID, &m.Status, &m.Seed, &winner, &kind, &m.CreatedAt, &m.FinishedAt); err != nil {
		return nil, err
	}
	m.Winner = winner.String
	m.WinKind = kind.String
	return &m, nil
}

// Create inserts the match row with its initial state snapshot and both
// seats in a single transaction.
func (r *MatchRepo) Create(ctx context.Context, m *model.Match, state json.RawMessage) (*model.Match, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create match: %w", err)
	}
	defer tx.Rollback()

	created, err := scanMatch(tx.QueryRowContext(ctx,
		`INSERT INTO matches (creator_id, status, seed, state)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+matchColumns,
		m.CreatorID, model.MatchActive, m.Seed, []byte(state),
	))
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	for _, p := range m.Players {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_id, user_id, display_name, seat, is_bot, bot_difficulty)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			created.ID, p.UserID, p.DisplayName, p.Seat, p.IsBot, p.BotDifficulty,
		)
		if err != nil {
			return nil, fmt.Errorf("create match player: %w", err)
		}
		p.MatchID = created.ID
		created.Players = append(created.Players, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create match: %w", err)
	}
	return created, nil
}

// FindByID returns a match with its players, or nil when absent.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}

	players, err := r.listPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Players = players
	return m, nil
}

func (r *MatchRepo) listPlayers(ctx context.Context, matchID string) ([]model.MatchPlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, user_id, display_name, seat, is_bot, bot_difficulty
		 FROM match_players WHERE match_id = $1 ORDER BY seat`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match players: %w", err)
	}
	defer rows.Close()

	var players []model.MatchPlayer
	for rows.Next() {
		var p model.MatchPlayer
		if err := rows.Scan(&p.MatchID, &p.UserID, &p.DisplayName, &p.Seat, &p.IsBot, &p.BotDifficulty); err != nil {
			return nil, fmt.Errorf("scan match player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *MatchRepo) listMatches(ctx context.Context, query string, args ...any) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// ListActive returns every match still in progress, oldest first.
func (r *MatchRepo) ListActive(ctx context.Context) ([]model.Match, error) {
	return r.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE status = $1 ORDER BY created_at`,
		model.MatchActive)
}

// ListByUser returns the matches a user is seated in, most recent first.
func (r *MatchRepo) ListByUser(ctx context.Context, userID string) ([]model.Match, error) {
	return r.listMatches(ctx,
		`SELECT m.id, m.creator_id, m.status, m.seed, m.winner, m.win_kind, m.created_at, m.finished_at
		 FROM matches m JOIN match_players mp ON mp.match_id = m.id
		 WHERE mp.user_id = $1
		 ORDER BY m.created_at DESC LIMIT 50`, userID)
}

// Commit writes the snapshot, the event and the optional finished status
// in one transaction.
func (r *MatchRepo) Commit(ctx context.Context, matchID string, state json.RawMessage, e *model.MatchEvent, outcome *model.MatchOutcome) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE matches SET state = $1 WHERE id = $2`, []byte(state), matchID)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save snapshot: match %s not found", matchID)
	}

	e.MatchID = matchID
	if err := appendEvent(ctx, tx, e); err != nil {
		return err
	}

	if outcome != nil {
		_, err := tx.ExecContext(ctx,
			`UPDATE matches SET status = $1, winner = $2, win_kind = $3, finished_at = now()
			 WHERE id = $4`,
			model.MatchFinished, outcome.Winner, outcome.Kind, matchID,
		)
		if err != nil {
			return fmt.Errorf("set match finished: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit action: %w", err)
	}
	return nil
}

// LatestSnapshot returns the stored state for a match, or nil when absent.
func (r *MatchRepo) LatestSnapshot(ctx context.Context, matchID string) (json.RawMessage, error) {
	var state []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM matches WHERE id = $1`, matchID).Scan(&state)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return json.RawMessage(state), nil
}

// appendEvent inserts an event with the next sequence number and writes
// the ID, seq and timestamp back into e.
func appendEvent(ctx context.Context, tx *sql.Tx, e *model.MatchEvent) error {
	action := []byte(e.Action)
	if len(action) == 0 {
		action = []byte("{}")
	}
	err := tx.QueryRowContext(ctx,
		`INSERT INTO match_events (match_id, seq, user_id, kind, action, log)
		 SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4, $5
		 FROM match_events WHERE match_id = $1
		 RETURNING id, seq, created_at`,
		e.MatchID, e.UserID, e.Kind, action, pq.Array(e.Log),
	).Scan(&e.ID, &e.Seq, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append match event: %w", err)
	}
	return nil
}

// ListEvents returns all events of a match in sequence order.
func (r *MatchRepo) ListEvents(ctx context.Context, matchID string) ([]model.MatchEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, seq, user_id, kind, action, log, created_at
		 FROM match_events WHERE match_id = $1 ORDER BY seq`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match events: %w", err)
	}
	defer rows.Close()

	var events []model.MatchEvent
	for rows.Next() {
		var e model.MatchEvent
		var action []byte
		if err := rows.Scan(&e.ID, &e.MatchID, &e.Seq, &e.UserID, &e.Kind, &action, pq.Array(&e.Log), &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match event: %w", err)
		}
		e.Action = json.RawMessage(action)
		events = append(events, e)
	}
	return events, rows.Err()
}

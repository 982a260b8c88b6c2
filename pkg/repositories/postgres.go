package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a new PostgresRepository.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SavePlayerSnapshot(ctx context.Context, timestamp int64, snapshot *gametypes.PlayerSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	q := `
	INSERT INTO players (uuid, match_id, username, is_ai, score, updated_at, snapshot)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (uuid) DO UPDATE SET
		match_id = $2, username = $3, is_ai = $4, score = $5, updated_at = $6, snapshot = $7;
	`
	_, err = r.conn.Exec(ctx, q, snapshot.UUID, snapshot.MatchID, snapshot.Username, snapshot.IsAI, snapshot.Score, timestamp, data)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadPlayerSnapshot(ctx context.Context, matchID string, playerUUID string) (*gametypes.PlayerSnapshot, error) {
	q := `
	SELECT snapshot FROM players WHERE match_id = $1 AND uuid = $2;
	`
	var data []byte
	if err := r.conn.QueryRow(ctx, q, matchID, playerUUID).Scan(&data); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan player: %v", err)
	}

	snapshot := &gametypes.PlayerSnapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}

	return snapshot, nil
}

func (r *PostgresRepository) LoadMatchSnapshots(ctx context.Context, matchID string) ([]*gametypes.PlayerSnapshot, error) {
	rows, err := r.conn.Query(ctx, "SELECT snapshot FROM players WHERE match_id = $1", matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %v", err)
	}
	defer rows.Close()

	var snapshots []*gametypes.PlayerSnapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan player: %v", err)
		}
		snapshot := &gametypes.PlayerSnapshot{}
		if err := json.Unmarshal(data, snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (r *PostgresRepository) ListMatchPlayers(ctx context.Context, matchID string) ([]models.Player, error) {
	q := `
	SELECT uuid, match_id, username, is_ai, score, updated_at FROM players WHERE match_id = $1;
	`
	rows, err := r.conn.Query(ctx, q, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %v", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var player models.Player
		if err := rows.Scan(&player.UUID, &player.MatchID, &player.Username, &player.IsAI, &player.Score, &player.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %v", err)
		}
		players = append(players, player)
	}

	return players, nil
}

func (r *PostgresRepository) DeleteMatch(ctx context.Context, matchID string) error {
	if _, err := r.conn.Exec(ctx, "DELETE FROM players WHERE match_id = $1", matchID); err != nil {
		return fmt.Errorf("failed to delete match players: %v", err)
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SavePlayerSnapshot(ctx context.Context, timestamp int64, snapshot *gametypes.PlayerSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	q := `
	INSERT OR REPLACE INTO players (uuid, match_id, username, is_ai, score, updated_at, snapshot)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err = r.db.ExecContext(ctx, q, snapshot.UUID, snapshot.MatchID, snapshot.Username, snapshot.IsAI, snapshot.Score, timestamp, string(data))
	if err != nil {
		return fmt.Errorf("failed to insert player: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadPlayerSnapshot(ctx context.Context, matchID string, playerUUID string) (*gametypes.PlayerSnapshot, error) {
	q := `
	SELECT snapshot FROM players WHERE match_id = ? AND uuid = ?;
	`
	var data string
	if err := r.db.QueryRowContext(ctx, q, matchID, playerUUID).Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan player: %v", err)
	}

	snapshot := &gametypes.PlayerSnapshot{}
	if err := json.Unmarshal([]byte(data), snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}

	return snapshot, nil
}

func (r *SQLiteRepository) LoadMatchSnapshots(ctx context.Context, matchID string) ([]*gametypes.PlayerSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT snapshot FROM players WHERE match_id = ?", matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %v", err)
	}
	defer rows.Close()

	var snapshots []*gametypes.PlayerSnapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan player: %v", err)
		}
		snapshot := &gametypes.PlayerSnapshot{}
		if err := json.Unmarshal([]byte(data), snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (r *SQLiteRepository) ListMatchPlayers(ctx context.Context, matchID string) ([]models.Player, error) {
	q := `
	SELECT uuid, match_id, username, is_ai, score, updated_at FROM players WHERE match_id = ?;
	`
	rows, err := r.db.QueryContext(ctx, q, matchID)
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

func (r *SQLiteRepository) DeleteMatch(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM players WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("failed to delete match players: %v", err)
	}
	return nil
}

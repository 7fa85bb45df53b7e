package repository

import (
	"context"
	"fmt"

	"tftcrawler/ingestion/internal/metrics"
	"tftcrawler/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or fully overwrites a player by puuid, so league data
// stays current across runs.
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (
			puuid, summoner_name, league, rank, lp, wins, losses, platform, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (puuid) DO UPDATE SET
			summoner_name = EXCLUDED.summoner_name,
			league        = EXCLUDED.league,
			rank          = EXCLUDED.rank,
			lp            = EXCLUDED.lp,
			wins          = EXCLUDED.wins,
			losses        = EXCLUDED.losses,
			platform      = EXCLUDED.platform,
			updated_at    = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		player.PUUID, player.SummonerName, player.League, player.Rank,
		player.LeaguePoints, player.Wins, player.Losses, player.Platform,
	).Scan(&player.UpdatedAt)

	if err != nil {
		metrics.RecordDBQuery("upsert", "players", "error")
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	metrics.RecordDBQuery("upsert", "players", "success")
	return nil
}

// GetByPUUID retrieves a player by puuid
func (r *PlayerRepository) GetByPUUID(ctx context.Context, puuid string) (*models.Player, error) {
	query := `
		SELECT puuid, summoner_name, league, rank, lp, wins, losses, platform, updated_at
		FROM players
		WHERE puuid = $1
	`

	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, puuid).Scan(
		&player.PUUID, &player.SummonerName, &player.League, &player.Rank,
		&player.LeaguePoints, &player.Wins, &player.Losses, &player.Platform,
		&player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("player not found: puuid=%s", puuid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &player, nil
}

// List retrieves all tracked players
func (r *PlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT puuid, summoner_name, league, rank, lp, wins, losses, platform, updated_at
		FROM players
		ORDER BY league, lp DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		err := rows.Scan(
			&player.PUUID, &player.SummonerName, &player.League, &player.Rank,
			&player.LeaguePoints, &player.Wins, &player.Losses, &player.Platform,
			&player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}

// Count returns the total number of tracked players
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}

	log.Debug().Int("count", count).Msg("Counted players")
	return count, nil
}

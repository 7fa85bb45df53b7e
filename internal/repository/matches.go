package repository

import (
	"context"
	"fmt"

	"tftcrawler/ingestion/internal/metrics"
	"tftcrawler/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

// GetKnownIDs returns the set of all match ids currently stored.
func (r *MatchRepository) GetKnownIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT match_id FROM matches`)
	if err != nil {
		return nil, fmt.Errorf("failed to query known match ids: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		known[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match ids: %w", err)
	}

	return known, nil
}

// GetDatetimes returns game_datetime (Unix ms) by match id for every stored
// match. Only consulted when a time-window cutoff is active.
func (r *MatchRepository) GetDatetimes(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT match_id, game_datetime FROM matches`)
	if err != nil {
		return nil, fmt.Errorf("failed to query match datetimes: %w", err)
	}
	defer rows.Close()

	datetimes := make(map[string]int64)
	for rows.Next() {
		var id string
		var dt *int64
		if err := rows.Scan(&id, &dt); err != nil {
			return nil, fmt.Errorf("failed to scan match datetime: %w", err)
		}
		if dt != nil {
			datetimes[id] = *dt
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match datetimes: %w", err)
	}

	return datetimes, nil
}

// Exists reports whether a match id is already stored.
func (r *MatchRepository) Exists(ctx context.Context, matchID string) (bool, error) {
	var one int
	err := r.db.Pool.QueryRow(
		ctx, `SELECT 1 FROM matches WHERE match_id = $1`, matchID,
	).Scan(&one)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check match existence: %w", err)
	}
	return true, nil
}

// Store parses a full match API response and commits the match together
// with its participants, traits and units as one transaction. Re-storing
// an already-present match id is a no-op.
func (r *MatchRepository) Store(ctx context.Context, match *models.MatchResponse, platform string) error {
	matchID := match.Metadata.MatchID
	if matchID == "" {
		return fmt.Errorf("match data missing match_id")
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	info := match.Info
	tag, err := tx.Exec(ctx, `
		INSERT INTO matches (
			match_id, game_datetime, game_length, game_version,
			queue_id, tft_set_number, tft_set_core_name, platform
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id) DO NOTHING
	`,
		matchID, info.GameDatetime, info.GameLength, info.GameVersion,
		info.QueueID, info.TFTSetNumber, info.TFTSetCoreName, platform,
	)
	if err != nil {
		metrics.RecordDBQuery("insert", "matches", "error")
		return fmt.Errorf("failed to insert match %s: %w", matchID, err)
	}

	if tag.RowsAffected() == 0 {
		// Match already stored with its full participant batch.
		log.Debug().Str("match_id", matchID).Msg("Match already stored, skipping")
		return tx.Commit(ctx)
	}

	for _, p := range info.Participants {
		var participantID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO participants (
				match_id, puuid, placement, level, gold_left, last_round,
				players_eliminated, time_eliminated, total_damage_to_players, augments
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (match_id, puuid) DO NOTHING
			RETURNING id
		`,
			matchID, p.PUUID, p.Placement, p.Level, p.GoldLeft, p.LastRound,
			p.PlayersEliminated, p.TimeEliminated, p.TotalDamageToPlayers,
			augmentsOrEmpty(p.Augments),
		).Scan(&participantID)

		if err == pgx.ErrNoRows {
			// Duplicate (match, puuid) pair; its children are already there.
			continue
		}
		if err != nil {
			metrics.RecordDBQuery("insert", "participants", "error")
			return fmt.Errorf("failed to insert participant %s/%s: %w", matchID, p.PUUID, err)
		}

		for _, trait := range p.Traits {
			_, err := tx.Exec(ctx, `
				INSERT INTO participant_traits (
					participant_id, name, num_units, style, tier_current, tier_total
				) VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (participant_id, name) DO NOTHING
			`,
				participantID, trait.Name, trait.NumUnits, trait.Style,
				trait.TierCurrent, trait.TierTotal,
			)
			if err != nil {
				metrics.RecordDBQuery("insert", "participant_traits", "error")
				return fmt.Errorf("failed to insert trait %s for %s: %w", trait.Name, matchID, err)
			}
		}

		for _, unit := range p.Units {
			_, err := tx.Exec(ctx, `
				INSERT INTO participant_units (
					participant_id, character_id, name, rarity, tier, items
				) VALUES ($1, $2, $3, $4, $5, $6)
			`,
				participantID, unit.CharacterID, unit.DisplayName(),
				unit.Rarity, unit.Tier, unit.UnitItems(),
			)
			if err != nil {
				metrics.RecordDBQuery("insert", "participant_units", "error")
				return fmt.Errorf("failed to insert unit %s for %s: %w", unit.CharacterID, matchID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.RecordDBQuery("insert", "matches", "error")
		return fmt.Errorf("failed to commit match %s: %w", matchID, err)
	}

	metrics.RecordDBQuery("insert", "matches", "success")
	log.Debug().Str("match_id", matchID).Msg("Stored match")
	return nil
}

// Count returns the total number of stored matches
func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// augmentsOrEmpty keeps the stored JSON array non-null.
func augmentsOrEmpty(augments []string) []string {
	if augments == nil {
		return []string{}
	}
	return augments
}

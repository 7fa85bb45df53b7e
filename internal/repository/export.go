package repository

import (
	"context"
	"fmt"
	"time"

	"tftcrawler/ingestion/internal/models"
)

// ExportMatches returns every stored match as a nested document tree for
// JSON export. When activeTraitsOnly is set, inactive traits (style=0) are
// left out.
func (r *MatchRepository) ExportMatches(ctx context.Context, activeTraitsOnly bool) ([]*models.ExportMatch, error) {
	matches, participantRows, err := r.exportMatchesAndParticipants(ctx)
	if err != nil {
		return nil, err
	}

	traitsByPID, err := r.exportTraits(ctx, activeTraitsOnly)
	if err != nil {
		return nil, err
	}

	unitsByPID, err := r.exportUnits(ctx)
	if err != nil {
		return nil, err
	}

	participantsByMatch := make(map[string][]models.ExportParticipant)
	for _, row := range participantRows {
		p := row.participant
		p.Traits = traitsByPID[row.id]
		if p.Traits == nil {
			p.Traits = []models.ExportTrait{}
		}
		p.Units = unitsByPID[row.id]
		if p.Units == nil {
			p.Units = []models.ExportUnit{}
		}
		participantsByMatch[row.matchID] = append(participantsByMatch[row.matchID], p)
	}

	for _, m := range matches {
		m.Participants = participantsByMatch[m.MatchID]
		if m.Participants == nil {
			m.Participants = []models.ExportParticipant{}
		}
	}

	return matches, nil
}

type participantRow struct {
	id          int64
	matchID     string
	participant models.ExportParticipant
}

func (r *MatchRepository) exportMatchesAndParticipants(ctx context.Context) ([]*models.ExportMatch, []participantRow, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT match_id, game_datetime, game_length, game_version,
		       queue_id, tft_set_number, tft_set_core_name, platform, fetched_at
		FROM matches
		ORDER BY game_datetime
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query matches for export: %w", err)
	}
	defer rows.Close()

	var matches []*models.ExportMatch
	for rows.Next() {
		var m models.ExportMatch
		var fetchedAt time.Time
		err := rows.Scan(
			&m.MatchID, &m.GameDatetime, &m.GameLength, &m.GameVersion,
			&m.QueueID, &m.TFTSetNumber, &m.TFTSetCoreName, &m.Platform,
			&fetchedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan match for export: %w", err)
		}
		m.FetchedAt = fetchedAt.UTC().Format(time.RFC3339)
		if m.GameVersion != nil {
			m.Patch = models.GamePatch(*m.GameVersion)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating matches for export: %w", err)
	}

	prows, err := r.db.Pool.Query(ctx, `
		SELECT id, match_id, puuid, placement, level, gold_left, last_round,
		       players_eliminated, time_eliminated, total_damage_to_players, augments
		FROM participants
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query participants for export: %w", err)
	}
	defer prows.Close()

	var participants []participantRow
	for prows.Next() {
		var row participantRow
		err := prows.Scan(
			&row.id, &row.matchID, &row.participant.PUUID,
			&row.participant.Placement, &row.participant.Level,
			&row.participant.GoldLeft, &row.participant.LastRound,
			&row.participant.PlayersEliminated, &row.participant.TimeEliminated,
			&row.participant.TotalDamageToPlayers, &row.participant.Augments,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan participant for export: %w", err)
		}
		if row.participant.Augments == nil {
			row.participant.Augments = []string{}
		}
		participants = append(participants, row)
	}
	if err := prows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating participants for export: %w", err)
	}

	return matches, participants, nil
}

func (r *MatchRepository) exportTraits(ctx context.Context, activeOnly bool) (map[int64][]models.ExportTrait, error) {
	query := `
		SELECT participant_id, name, num_units, style, tier_current, tier_total
		FROM participant_traits
	`
	if activeOnly {
		query += ` WHERE style > 0`
	}

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query traits for export: %w", err)
	}
	defer rows.Close()

	traits := make(map[int64][]models.ExportTrait)
	for rows.Next() {
		var pid int64
		var t models.ExportTrait
		if err := rows.Scan(&pid, &t.Name, &t.NumUnits, &t.Style, &t.TierCurrent, &t.TierTotal); err != nil {
			return nil, fmt.Errorf("failed to scan trait for export: %w", err)
		}
		traits[pid] = append(traits[pid], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating traits for export: %w", err)
	}

	return traits, nil
}

func (r *MatchRepository) exportUnits(ctx context.Context) (map[int64][]models.ExportUnit, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT participant_id, character_id, name, rarity, tier, items
		FROM participant_units
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query units for export: %w", err)
	}
	defer rows.Close()

	units := make(map[int64][]models.ExportUnit)
	for rows.Next() {
		var pid int64
		var u models.ExportUnit
		if err := rows.Scan(&pid, &u.CharacterID, &u.Name, &u.Rarity, &u.Tier, &u.Items); err != nil {
			return nil, fmt.Errorf("failed to scan unit for export: %w", err)
		}
		if u.Items == nil {
			u.Items = []string{}
		}
		units[pid] = append(units[pid], u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating units for export: %w", err)
	}

	return units, nil
}

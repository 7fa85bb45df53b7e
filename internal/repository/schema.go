package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema is the crawler's table layout:
//
//	players             — one row per tracked player (keyed by puuid)
//	matches             — one row per fetched match
//	participants        — one row per player-in-match (8 per match)
//	participant_traits  — traits active for a participant
//	participant_units   — units fielded by a participant
const schema = `
CREATE TABLE IF NOT EXISTS players (
    puuid           TEXT PRIMARY KEY,
    summoner_name   TEXT NOT NULL DEFAULT '',
    league          TEXT NOT NULL DEFAULT '',
    rank            TEXT NOT NULL DEFAULT '',
    lp              INTEGER NOT NULL DEFAULT 0,
    wins            INTEGER NOT NULL DEFAULT 0,
    losses          INTEGER NOT NULL DEFAULT 0,
    platform        TEXT NOT NULL DEFAULT '',
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS matches (
    match_id            TEXT PRIMARY KEY,
    game_datetime       BIGINT,             -- Unix ms
    game_length         DOUBLE PRECISION,   -- seconds
    game_version        TEXT,
    queue_id            INTEGER,
    tft_set_number      INTEGER,
    tft_set_core_name   TEXT,
    platform            TEXT,
    fetched_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS participants (
    id                      BIGSERIAL PRIMARY KEY,
    match_id                TEXT NOT NULL REFERENCES matches(match_id),
    puuid                   TEXT NOT NULL,
    placement               INTEGER,
    level                   INTEGER,
    gold_left               INTEGER,
    last_round              INTEGER,
    players_eliminated      INTEGER,
    time_eliminated         DOUBLE PRECISION,
    total_damage_to_players INTEGER,
    augments                JSONB NOT NULL DEFAULT '[]',
    UNIQUE (match_id, puuid)
);

CREATE TABLE IF NOT EXISTS participant_traits (
    id              BIGSERIAL PRIMARY KEY,
    participant_id  BIGINT NOT NULL REFERENCES participants(id),
    name            TEXT NOT NULL,
    num_units       INTEGER,
    style           INTEGER,   -- 0=inactive, 1=bronze, 2=silver, 3=gold, 4=chromatic
    tier_current    INTEGER,
    tier_total      INTEGER,
    UNIQUE (participant_id, name)
);

CREATE TABLE IF NOT EXISTS participant_units (
    id              BIGSERIAL PRIMARY KEY,
    participant_id  BIGINT NOT NULL REFERENCES participants(id),
    character_id    TEXT,
    name            TEXT,
    rarity          INTEGER,
    tier            INTEGER,   -- star level
    items           JSONB NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_participants_puuid ON participants(puuid);
CREATE INDEX IF NOT EXISTS idx_participants_match ON participants(match_id);
CREATE INDEX IF NOT EXISTS idx_traits_name        ON participant_traits(name);
CREATE INDEX IF NOT EXISTS idx_units_participant  ON participant_units(participant_id);
CREATE INDEX IF NOT EXISTS idx_units_character    ON participant_units(character_id);
CREATE INDEX IF NOT EXISTS idx_matches_datetime   ON matches(game_datetime);
CREATE INDEX IF NOT EXISTS idx_matches_version    ON matches(game_version);
`

// InitSchema creates the tables and indexes if they do not exist yet.
func (db *Database) InitSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	log.Debug().Msg("Database schema initialised")
	return nil
}

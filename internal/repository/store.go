package repository

import (
	"context"

	"tftcrawler/ingestion/internal/models"
)

// Pipeline-facing persistence operations. These delegate to the
// per-aggregate repositories so the collector can depend on one small
// contract.

func (db *Database) UpsertPlayer(ctx context.Context, player *models.Player) error {
	return db.Players.Upsert(ctx, player)
}

func (db *Database) GetKnownMatchIDs(ctx context.Context) (map[string]struct{}, error) {
	return db.Matches.GetKnownIDs(ctx)
}

func (db *Database) GetMatchDatetimes(ctx context.Context) (map[string]int64, error) {
	return db.Matches.GetDatetimes(ctx)
}

func (db *Database) MatchExists(ctx context.Context, matchID string) (bool, error) {
	return db.Matches.Exists(ctx, matchID)
}

func (db *Database) StoreMatch(ctx context.Context, match *models.MatchResponse, platform string) error {
	return db.Matches.Store(ctx, match, platform)
}

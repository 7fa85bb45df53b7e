//go:build integration

package repository

import (
	"testing"

	"tftcrawler/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	truncateAll(t, db, ctx)

	player := &models.Player{
		PUUID:        "test-puuid-1",
		SummonerName: "TestPlayer",
		League:       "CHALLENGER",
		Rank:         "I",
		LeaguePoints: 1200,
		Wins:         300,
		Losses:       198,
		Platform:     "na1",
	}

	// Insert new player
	err := db.Players.Upsert(ctx, player)
	require.NoError(t, err, "Should successfully insert player")
	assert.False(t, player.UpdatedAt.IsZero(), "Upsert should populate updated_at")

	// Verify player was created
	retrieved, err := db.Players.GetByPUUID(ctx, player.PUUID)
	require.NoError(t, err, "Should retrieve inserted player")
	assert.Equal(t, "CHALLENGER", retrieved.League)
	assert.Equal(t, 1200, retrieved.LeaguePoints)

	// A later run reports updated standings for the same puuid
	player.LeaguePoints = 1450
	player.Wins = 310
	err = db.Players.Upsert(ctx, player)
	require.NoError(t, err, "Should successfully update player")

	// Verify the row was overwritten, not duplicated
	updated, err := db.Players.GetByPUUID(ctx, player.PUUID)
	require.NoError(t, err, "Should retrieve updated player")
	assert.Equal(t, 1450, updated.LeaguePoints, "League points should be updated")
	assert.Equal(t, 310, updated.Wins, "Wins should be updated")

	count, err := db.Players.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "Upsert should not create a second row")
}

func TestPlayerRepository_List(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	truncateAll(t, db, ctx)

	players := []*models.Player{
		{PUUID: "list-p1", League: "CHALLENGER", LeaguePoints: 1400, Platform: "na1"},
		{PUUID: "list-p2", League: "CHALLENGER", LeaguePoints: 1500, Platform: "na1"},
		{PUUID: "list-p3", League: "GRANDMASTER", LeaguePoints: 900, Platform: "na1"},
	}
	for _, p := range players {
		err := db.Players.Upsert(ctx, p)
		require.NoError(t, err, "Should insert player")
	}

	all, err := db.Players.List(ctx)
	require.NoError(t, err, "Should list players")
	require.Len(t, all, 3)

	// Ordered by league, then lp descending within it.
	assert.Equal(t, "list-p2", all[0].PUUID)
	assert.Equal(t, "list-p1", all[1].PUUID)
	assert.Equal(t, "list-p3", all[2].PUUID)
}

func TestPlayerRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Players.GetByPUUID(ctx, "no-such-puuid")
	assert.Error(t, err, "Should return error for non-existent player")
}

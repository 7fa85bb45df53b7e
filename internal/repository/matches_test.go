//go:build integration

package repository

import (
	"context"
	"testing"

	"tftcrawler/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatch(matchID string, datetime int64) *models.MatchResponse {
	return &models.MatchResponse{
		Metadata: models.MatchMetadata{
			MatchID:      matchID,
			DataVersion:  "6",
			Participants: []string{"store-p1", "store-p2"},
		},
		Info: models.MatchInfo{
			GameDatetime:   datetime,
			GameLength:     2105.7,
			GameVersion:    "Version 15.2.684.9340",
			QueueID:        1100,
			TFTSetNumber:   13,
			TFTSetCoreName: "TFTSet13",
			Participants: []models.MatchParticipant{
				{
					PUUID:                "store-p1",
					Placement:            1,
					Level:                9,
					GoldLeft:             12,
					LastRound:            35,
					PlayersEliminated:    3,
					TimeEliminated:       2100.1,
					TotalDamageToPlayers: 160,
					Augments:             []string{"TFT13_Augment_A", "TFT13_Augment_B"},
					Traits: []models.ParticipantTrait{
						{Name: "Rebel", NumUnits: 7, Style: 3, TierCurrent: 3, TierTotal: 4},
						{Name: "Sniper", NumUnits: 1, Style: 0, TierCurrent: 0, TierTotal: 3},
					},
					Units: []models.ParticipantUnit{
						{CharacterID: "TFT13_Jinx", Name: "Jinx", Rarity: 4, Tier: 2,
							ItemNames: []string{"TFT_Item_GuinsoosRageblade"}},
						{CharacterID: "TFT13_Vi", Rarity: 2, Tier: 3},
					},
				},
				{
					PUUID:                "store-p2",
					Placement:            8,
					Level:                6,
					GoldLeft:             0,
					LastRound:            20,
					TimeEliminated:       1100.5,
					TotalDamageToPlayers: 20,
					Traits: []models.ParticipantTrait{
						{Name: "Sorcerer", NumUnits: 4, Style: 1, TierCurrent: 1, TierTotal: 3},
					},
					Units: []models.ParticipantUnit{
						{CharacterID: "TFT13_Lux", Name: "Lux", Rarity: 3, Tier: 1},
					},
				},
			},
		},
	}
}

func TestMatchRepository_Store(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	truncateAll(t, db, ctx)

	err := db.Matches.Store(ctx, testMatch("NA1_5001", 1700000000000), "na1")
	require.NoError(t, err, "Should store match")

	exists, err := db.Matches.Exists(ctx, "NA1_5001")
	require.NoError(t, err)
	assert.True(t, exists, "Stored match should exist")

	count, err := db.Matches.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, 2, countRows(t, db, ctx, "participants"))
	assert.Equal(t, 3, countRows(t, db, ctx, "participant_traits"))
	assert.Equal(t, 3, countRows(t, db, ctx, "participant_units"))
}

func TestMatchRepository_StoreIdempotent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	truncateAll(t, db, ctx)

	match := testMatch("NA1_5002", 1700000000000)

	err := db.Matches.Store(ctx, match, "na1")
	require.NoError(t, err, "First store should succeed")

	// Storing the same match again is a no-op, not an error and not a
	// duplicate.
	err = db.Matches.Store(ctx, match, "na1")
	require.NoError(t, err, "Second store should be a no-op")

	count, err := db.Matches.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "Match should be stored once")

	assert.Equal(t, 2, countRows(t, db, ctx, "participants"), "Participants should not duplicate")
	assert.Equal(t, 3, countRows(t, db, ctx, "participant_traits"), "Traits should not duplicate")
	assert.Equal(t, 3, countRows(t, db, ctx, "participant_units"), "Units should not duplicate")
}

func TestMatchRepository_StoreMissingID(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Matches.Store(ctx, &models.MatchResponse{}, "na1")
	assert.Error(t, err, "Match without an id should be rejected")
}

func TestMatchRepository_GetKnownIDs(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	truncateAll(t, db, ctx)

	require.NoError(t, db.Matches.Store(ctx, testMatch("NA1_5003", 1700000000000), "na1"))
	require.NoError(t, db.Matches.Store(ctx, testMatch("NA1_5004", 1700000100000), "na1"))

	known, err := db.Matches.GetKnownIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, known, 2)
	assert.Contains(t, known, "NA1_5003")
	assert.Contains(t, known, "NA1_5004")
}

func TestMatchRepository_GetDatetimes(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	truncateAll(t, db, ctx)

	require.NoError(t, db.Matches.Store(ctx, testMatch("NA1_5005", 1700000200000), "na1"))

	datetimes, err := db.Matches.GetDatetimes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000200000), datetimes["NA1_5005"])
}

func TestMatchRepository_Export(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	truncateAll(t, db, ctx)

	require.NoError(t, db.Matches.Store(ctx, testMatch("NA1_5006", 1700000000000), "na1"))

	matches, err := db.Matches.ExportMatches(ctx, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "NA1_5006", m.MatchID)
	assert.Equal(t, "25.S1.2", m.Patch, "Patch should be derived from game version")
	require.Len(t, m.Participants, 2)

	var winner *models.ExportParticipant
	for i := range m.Participants {
		if m.Participants[i].PUUID == "store-p1" {
			winner = &m.Participants[i]
		}
	}
	require.NotNil(t, winner)
	assert.Equal(t, []string{"TFT13_Augment_A", "TFT13_Augment_B"}, winner.Augments)
	assert.Len(t, winner.Units, 2)

	// The inactive Sniper trait (style=0) is filtered out.
	require.Len(t, winner.Traits, 1)
	assert.Equal(t, "Rebel", winner.Traits[0].Name)

	// With the filter off, both traits come back.
	all, err := db.Matches.ExportMatches(ctx, false)
	require.NoError(t, err)
	for i := range all[0].Participants {
		if all[0].Participants[i].PUUID == "store-p1" {
			assert.Len(t, all[0].Participants[i].Traits, 2)
		}
	}
}

func countRows(t *testing.T, db *Database, ctx context.Context, table string) int {
	var count int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	require.NoError(t, err, "Should count rows in "+table)
	return count
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamePatch(t *testing.T) {
	assert.Equal(t, "25.S1.2", GamePatch("Version 15.2.684.9340 (Jan 21 2025/14:23:57)"))
	assert.Equal(t, "14.24", GamePatch("Version 14.24.1.123"))
	assert.Equal(t, "25.S1.1", GamePatch("Version 15.1"))
	assert.Equal(t, "", GamePatch("Version 15.10.1.1"), "15.10 must not match the 15.1 prefix")
	assert.Equal(t, "", GamePatch("Version 99.9.1.1"))
	assert.Equal(t, "", GamePatch(""))
}

func TestMatchResponse_Unmarshal(t *testing.T) {
	body := []byte(`{
		"metadata": {
			"data_version": "6",
			"match_id": "NA1_5300123456",
			"participants": ["p1", "p2"]
		},
		"info": {
			"game_datetime": 1737585600000,
			"game_length": 2105.73,
			"game_version": "Version 15.2.684.9340 (Jan 21 2025/14:23:57)",
			"queue_id": 1100,
			"tft_set_number": 13,
			"tft_set_core_name": "TFTSet13",
			"participants": [{
				"puuid": "p1",
				"placement": 1,
				"level": 9,
				"gold_left": 4,
				"last_round": 36,
				"players_eliminated": 2,
				"time_eliminated": 2098.4,
				"total_damage_to_players": 142,
				"augments": ["TFT13_Augment_Ambusher"],
				"traits": [
					{"name": "TFT13_Ambusher", "num_units": 4, "style": 2, "tier_current": 2, "tier_total": 3}
				],
				"units": [
					{"character_id": "TFT13_Jinx", "rarity": 4, "tier": 2,
					 "itemNames": ["TFT_Item_GuinsoosRageblade", "TFT_Item_RunaansHurricane"]}
				]
			}]
		}
	}`)

	var match MatchResponse
	require.NoError(t, json.Unmarshal(body, &match))

	assert.Equal(t, "NA1_5300123456", match.Metadata.MatchID)
	assert.Equal(t, int64(1737585600000), match.Info.GameDatetime)
	assert.Equal(t, 13, match.Info.TFTSetNumber)

	require.Len(t, match.Info.Participants, 1)
	p := match.Info.Participants[0]
	assert.Equal(t, 1, p.Placement)
	assert.Equal(t, []string{"TFT13_Augment_Ambusher"}, p.Augments)
	require.Len(t, p.Units, 1)
	assert.Equal(t, "TFT13_Jinx", p.Units[0].CharacterID)
	assert.Len(t, p.Units[0].ItemNames, 2)
}

func TestParticipantUnit_Helpers(t *testing.T) {
	unit := ParticipantUnit{CharacterID: "TFT13_Vi"}
	assert.Equal(t, "TFT13_Vi", unit.DisplayName(), "Falls back to character id without a name")
	assert.Equal(t, []string{}, unit.UnitItems(), "Nil items come back as an empty list")

	unit.Name = "Vi"
	unit.ItemNames = []string{"TFT_Item_BrambleVest"}
	assert.Equal(t, "Vi", unit.DisplayName())
	assert.Equal(t, []string{"TFT_Item_BrambleVest"}, unit.UnitItems())
}

func TestLeagueEntry_ToPlayer(t *testing.T) {
	entry := LeagueEntry{
		PUUID:        "p1",
		SummonerName: "TopPlayer",
		Rank:         "I",
		LeaguePoints: 1337,
		Wins:         250,
		Losses:       180,
	}

	player := entry.ToPlayer("challenger", "na1")
	assert.Equal(t, "p1", player.PUUID)
	assert.Equal(t, "CHALLENGER", player.League, "League tier is stored uppercased")
	assert.Equal(t, "na1", player.Platform)
	assert.Equal(t, 1337, player.LeaguePoints)
}

package models

// Nested documents produced by the JSON export.

type ExportMatch struct {
	MatchID        string              `json:"match_id"`
	GameDatetime   *int64              `json:"game_datetime"`
	GameLength     *float64            `json:"game_length"`
	GameVersion    *string             `json:"game_version"`
	Patch          string              `json:"patch,omitempty"`
	QueueID        *int                `json:"queue_id"`
	TFTSetNumber   *int                `json:"tft_set_number"`
	TFTSetCoreName *string             `json:"tft_set_core_name"`
	Platform       *string             `json:"platform"`
	FetchedAt      string              `json:"fetched_at"`
	Participants   []ExportParticipant `json:"participants"`
}

type ExportParticipant struct {
	PUUID                string        `json:"puuid"`
	Placement            *int          `json:"placement"`
	Level                *int          `json:"level"`
	GoldLeft             *int          `json:"gold_left"`
	LastRound            *int          `json:"last_round"`
	PlayersEliminated    *int          `json:"players_eliminated"`
	TimeEliminated       *float64      `json:"time_eliminated"`
	TotalDamageToPlayers *int          `json:"total_damage_to_players"`
	Augments             []string      `json:"augments"`
	Traits               []ExportTrait `json:"traits"`
	Units                []ExportUnit  `json:"units"`
}

type ExportTrait struct {
	Name        string `json:"name"`
	NumUnits    *int   `json:"num_units"`
	Style       *int   `json:"style"`
	TierCurrent *int   `json:"tier_current"`
	TierTotal   *int   `json:"tier_total"`
}

type ExportUnit struct {
	CharacterID *string  `json:"character_id"`
	Name        *string  `json:"name"`
	Rarity      *int     `json:"rarity"`
	Tier        *int     `json:"tier"`
	Items       []string `json:"items"`
}

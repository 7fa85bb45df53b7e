package models

// MatchResponse is the tft-match-v1 match body
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata contains match routing metadata
type MatchMetadata struct {
	MatchID      string   `json:"match_id"`
	DataVersion  string   `json:"data_version"`
	Participants []string `json:"participants"` // PUUIDs
}

// MatchInfo contains the match body proper
type MatchInfo struct {
	GameDatetime   int64              `json:"game_datetime"` // Unix ms
	GameLength     float64            `json:"game_length"`   // seconds
	GameVersion    string             `json:"game_version"`
	QueueID        int                `json:"queue_id"`
	TFTSetNumber   int                `json:"tft_set_number"`
	TFTSetCoreName string             `json:"tft_set_core_name"`
	Participants   []MatchParticipant `json:"participants"`
}

// MatchParticipant is one player's result inside a match (8 per match)
type MatchParticipant struct {
	PUUID                string             `json:"puuid"`
	Placement            int                `json:"placement"`
	Level                int                `json:"level"`
	GoldLeft             int                `json:"gold_left"`
	LastRound            int                `json:"last_round"`
	PlayersEliminated    int                `json:"players_eliminated"`
	TimeEliminated       float64            `json:"time_eliminated"`
	TotalDamageToPlayers int                `json:"total_damage_to_players"`
	Augments             []string           `json:"augments"`
	Traits               []ParticipantTrait `json:"traits"`
	Units                []ParticipantUnit  `json:"units"`
}

// ParticipantTrait is a trait active (or inactive) for a participant.
// Style is the activation tier: 0=inactive, 1=bronze, 2=silver, 3=gold,
// 4=chromatic.
type ParticipantTrait struct {
	Name        string `json:"name"`
	NumUnits    int    `json:"num_units"`
	Style       int    `json:"style"`
	TierCurrent int    `json:"tier_current"`
	TierTotal   int    `json:"tier_total"`
}

// ParticipantUnit is a unit fielded by a participant
type ParticipantUnit struct {
	CharacterID string   `json:"character_id"`
	Name        string   `json:"name"`
	Rarity      int      `json:"rarity"`
	Tier        int      `json:"tier"` // star level
	ItemNames   []string `json:"itemNames"`
}

// UnitItems returns the unit's equipped item names, never nil.
func (u *ParticipantUnit) UnitItems() []string {
	if u.ItemNames == nil {
		return []string{}
	}
	return u.ItemNames
}

// DisplayName returns the unit display name, falling back to the character id.
func (u *ParticipantUnit) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.CharacterID
}

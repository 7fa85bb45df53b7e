package models

import (
	"strings"
	"time"
)

// Player represents a tracked ranked player (one row per puuid)
type Player struct {
	PUUID        string    `db:"puuid"`
	SummonerName string    `db:"summoner_name"`
	League       string    `db:"league"`
	Rank         string    `db:"rank"`
	LeaguePoints int       `db:"lp"`
	Wins         int       `db:"wins"`
	Losses       int       `db:"losses"`
	Platform     string    `db:"platform"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// LeagueList is the tft-league-v1 response for an apex league tier
type LeagueList struct {
	Tier    string        `json:"tier"`
	Name    string        `json:"name"`
	Queue   string        `json:"queue"`
	Entries []LeagueEntry `json:"entries"`
}

// LeagueEntry is a single standing inside a league list
type LeagueEntry struct {
	PUUID        string `json:"puuid"`
	SummonerName string `json:"summonerName"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// ToPlayer converts a league entry (from API) to a Player model.
// League and platform come from the request context, not the entry body.
func (e *LeagueEntry) ToPlayer(league, platform string) *Player {
	return &Player{
		PUUID:        e.PUUID,
		SummonerName: e.SummonerName,
		League:       strings.ToUpper(league),
		Rank:         e.Rank,
		LeaguePoints: e.LeaguePoints,
		Wins:         e.Wins,
		Losses:       e.Losses,
		Platform:     platform,
	}
}

// Command export writes every stored match as nested JSON documents,
// one tree per match with its participants, traits and units.
//
// Usage:
//
//	export [-out matches_export.json] [-all-traits]
//
// By default inactive traits (style=0) are excluded; -all-traits keeps them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strconv"

	"tftcrawler/ingestion/internal/config"
	"tftcrawler/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	outPath := flag.String("out", "matches_export.json", "output file path")
	allTraits := flag.Bool("all-traits", false, "include inactive traits (style=0)")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().
		Str("out", *outPath).
		Bool("active_traits_only", !*allTraits).
		Msg("Exporting match data")

	matches, err := db.Matches.ExportMatches(ctx, !*allTraits)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to create output file")
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(matches); err != nil {
		log.Fatal().Err(err).Msg("Failed to write export")
	}

	totalParticipants := 0
	for _, m := range matches {
		totalParticipants += len(m.Participants)
	}
	log.Info().
		Int("matches", len(matches)).
		Int("participants", totalParticipants).
		Str("out", *outPath).
		Msg("Export complete")
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"tftcrawler/ingestion/internal/client"
	"tftcrawler/ingestion/internal/config"
	"tftcrawler/ingestion/internal/metrics"
	"tftcrawler/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// matchIDBatch is the page size used when paginating with a time cutoff
// (the maximum the match-ids endpoint serves per request).
const matchIDBatch = 200

// MatchAPI is what the pipeline needs from the Riot client.
type MatchAPI interface {
	GetLeague(ctx context.Context, league, queue string) (*models.LeagueList, error)
	GetMatchIDs(ctx context.Context, puuid string, opts client.MatchIDOptions) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*models.MatchResponse, error)
}

// Store is the persistence contract the pipeline depends on. Every
// operation is idempotent and safe to call with data already present.
type Store interface {
	UpsertPlayer(ctx context.Context, player *models.Player) error
	GetKnownMatchIDs(ctx context.Context) (map[string]struct{}, error)
	GetMatchDatetimes(ctx context.Context) (map[string]int64, error)
	MatchExists(ctx context.Context, matchID string) (bool, error)
	StoreMatch(ctx context.Context, match *models.MatchResponse, platform string) error
}

// IDCache is an optional fast-path for match-existence checks. A miss
// always falls through to the Store.
type IDCache interface {
	Contains(ctx context.Context, matchID string) bool
	Add(ctx context.Context, matchID string)
}

// Collector drives the three-phase collection pipeline: discover ranked
// players, collect their new match ids, then fetch and store match bodies.
// The pipeline is strictly sequential, one player / one match at a time,
// to respect the upstream rate limit.
type Collector struct {
	cfg    *config.Config
	store  Store
	client MatchAPI
	cache  IDCache // may be nil
}

// New creates a Collector. cache may be nil.
func New(cfg *config.Config, store Store, api MatchAPI, cache IDCache) *Collector {
	return &Collector{
		cfg:    cfg,
		store:  store,
		client: api,
		cache:  cache,
	}
}

// Run executes the full collection pipeline.
func (c *Collector) Run(ctx context.Context) error {
	start := time.Now()

	log.Info().
		Str("platform", c.cfg.Platform).
		Str("region", c.cfg.Region()).
		Strs("leagues", c.cfg.Leagues).
		Int64("start_time", c.cfg.StartTime).
		Int64("end_time", c.cfg.EndTime).
		Msg("Collection run starting")

	// Phase 1: discover ranked players
	players, err := c.fetchLeagueEntries(ctx)
	if err != nil {
		metrics.RecordCollectionRun("error", time.Since(start).Seconds())
		return fmt.Errorf("league discovery failed: %w", err)
	}
	if len(players) == 0 {
		log.Error().Msg("No league entries found, nothing to collect")
		metrics.RecordCollectionRun("empty", time.Since(start).Seconds())
		return nil
	}

	// Phase 2: collect new match ids
	matchIDs, err := c.collectMatchIDs(ctx, players)
	if err != nil {
		metrics.RecordCollectionRun("error", time.Since(start).Seconds())
		return fmt.Errorf("match id collection failed: %w", err)
	}

	// Phase 3: fetch and store match bodies
	if err := c.fetchMatches(ctx, matchIDs); err != nil {
		metrics.RecordCollectionRun("error", time.Since(start).Seconds())
		return fmt.Errorf("match fetch failed: %w", err)
	}

	metrics.RecordCollectionRun("success", time.Since(start).Seconds())
	log.Info().
		Dur("duration", time.Since(start)).
		Msg("Collection run complete")
	return nil
}

// ----------------------------------------------------------------------
// Phase 1: league discovery
// ----------------------------------------------------------------------

// fetchLeagueEntries queries the league endpoint for each configured tier
// and returns the merged unique players, first occurrence winning on
// duplicates. Every discovered player is upserted so league data stays
// current.
func (c *Collector) fetchLeagueEntries(ctx context.Context) ([]*models.Player, error) {
	seen := make(map[string]struct{})
	var players []*models.Player

	for _, league := range c.cfg.Leagues {
		log.Info().
			Str("league", league).
			Str("platform", c.cfg.Platform).
			Msg("Fetching league standings")

		list, err := c.client.GetLeague(ctx, league, c.cfg.Queue)
		if errors.Is(err, client.ErrNotFound) {
			log.Warn().Str("league", league).Msg("No data returned for league")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s league: %w", league, err)
		}
		if len(list.Entries) == 0 {
			log.Warn().Str("league", league).Msg("League returned no entries")
			continue
		}

		log.Info().
			Str("league", league).
			Int("entries", len(list.Entries)).
			Msg("League standings fetched")

		for _, entry := range list.Entries {
			if entry.PUUID == "" {
				continue
			}
			if _, dup := seen[entry.PUUID]; dup {
				continue
			}
			seen[entry.PUUID] = struct{}{}
			players = append(players, entry.ToPlayer(league, c.cfg.Platform))
		}
	}

	log.Info().Int("players", len(players)).Msg("Total unique players discovered")
	metrics.PlayersDiscovered.Set(float64(len(players)))

	for _, player := range players {
		if err := c.store.UpsertPlayer(ctx, player); err != nil {
			log.Error().Err(err).Str("puuid", player.PUUID).Msg("Failed to upsert player")
			metrics.RecordError("collector", "player_upsert")
		}
	}

	return players, nil
}

// ----------------------------------------------------------------------
// Phase 2: match-id collection
// ----------------------------------------------------------------------

// collectMatchIDs fetches recent match ids for each player in input order.
//
// Without a start-time cutoff a single page of MatchesPerPlayer ids is
// requested per player. With a cutoff, pages of 200 are pulled until a
// page's oldest match predates the cutoff or history is exhausted.
func (c *Collector) collectMatchIDs(ctx context.Context, players []*models.Player) (map[string]struct{}, error) {
	knownIDs, err := c.store.GetKnownMatchIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read known match ids: %w", err)
	}

	knownDatetimes := map[string]int64{}
	if c.cfg.StartTime > 0 {
		knownDatetimes, err = c.store.GetMatchDatetimes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read known match datetimes: %w", err)
		}
	}

	log.Info().Int("players", len(players)).Msg("Collecting match ids")

	newIDs := make(map[string]struct{})
	for i, player := range players {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.cfg.StartTime == 0 {
			err = c.collectSinglePage(ctx, player.PUUID, knownIDs, newIDs)
		} else {
			err = c.paginateHistory(ctx, player.PUUID, knownIDs, knownDatetimes, newIDs)
		}
		if err != nil {
			// A request failure aborts this player only; the run
			// continues with the next one.
			log.Error().Err(err).Str("puuid", player.PUUID).Msg("Match id collection failed for player")
			metrics.RecordError("collector", "match_id_collection")
		}

		if (i+1)%50 == 0 || i+1 == len(players) {
			log.Info().
				Int("processed", i+1).
				Int("total", len(players)).
				Int("new_ids", len(newIDs)).
				Msg("Match id collection progress")
		}
	}

	log.Info().
		Int("new_ids", len(newIDs)).
		Int("known_ids", len(knownIDs)).
		Msg("Match id collection complete")
	metrics.MatchIDsCollected.Set(float64(len(newIDs)))

	return newIDs, nil
}

// collectSinglePage issues one request of MatchesPerPlayer ids.
func (c *Collector) collectSinglePage(ctx context.Context, puuid string, knownIDs, newIDs map[string]struct{}) error {
	ids, err := c.client.GetMatchIDs(ctx, puuid, client.MatchIDOptions{
		Count:   c.cfg.MatchesPerPlayer,
		EndTime: c.cfg.EndTime,
	})
	if err != nil {
		return err
	}

	addNew(ids, knownIDs, newIDs)
	return nil
}

// paginateHistory pages through a player's match-id history in batches of
// 200 until a batch's oldest match predates the start-time cutoff or the
// history runs out. The oldest id of each batch is probed for its
// timestamp; since that body was already paid for, it is stored eagerly.
func (c *Collector) paginateHistory(ctx context.Context, puuid string, knownIDs map[string]struct{}, knownDatetimes map[string]int64, newIDs map[string]struct{}) error {
	cutoffMillis := c.cfg.StartTime * 1000

	offset := 0
	for {
		batch, err := c.client.GetMatchIDs(ctx, puuid, client.MatchIDOptions{
			Count:   matchIDBatch,
			Start:   offset,
			EndTime: c.cfg.EndTime,
		})
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil // history exhausted
		}

		addNew(batch, knownIDs, newIDs)
		offset += matchIDBatch

		// The batch is newest-first, so its last id is the oldest.
		// Its timestamp decides whether another page is worth pulling.
		lastID := batch[len(batch)-1]

		if dt, ok := knownDatetimes[lastID]; ok {
			if dt < cutoffMillis {
				log.Debug().Str("puuid", puuid).Msg("Batch reaches cutoff, final batch for player")
				return nil
			}
			continue
		}

		probe, err := c.client.GetMatch(ctx, lastID)
		if errors.Is(err, client.ErrNotFound) {
			log.Warn().Str("match_id", lastID).Msg("Probe match not found, continuing to next page")
			continue
		}
		if err != nil {
			return err
		}

		if probe.Info.GameDatetime < cutoffMillis {
			log.Debug().Str("puuid", puuid).Msg("Batch reaches cutoff, final batch for player")
			return nil
		}

		// Already fetched, so store it now rather than re-fetching in
		// phase 3.
		if err := c.storeMatch(ctx, probe); err != nil {
			log.Error().Err(err).Str("match_id", lastID).Msg("Failed to store probed match")
			metrics.RecordError("collector", "probe_store")
		}
	}
}

// addNew merges ids into newIDs, skipping ids storage already knows.
func addNew(ids []string, knownIDs, newIDs map[string]struct{}) {
	for _, id := range ids {
		if _, known := knownIDs[id]; known {
			continue
		}
		newIDs[id] = struct{}{}
	}
}

// ----------------------------------------------------------------------
// Phase 3: match fetch and store
// ----------------------------------------------------------------------

// fetchMatches fetches full match bodies for each new id, newest first,
// and stores them. Failures are counted and skipped, never retried within
// the run.
func (c *Collector) fetchMatches(ctx context.Context, matchIDs map[string]struct{}) error {
	if len(matchIDs) == 0 {
		log.Info().Msg("No new matches to fetch")
		return nil
	}

	// Descending id order pulls the newest matches first.
	ids := make([]string, 0, len(matchIDs))
	for id := range matchIDs {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	total := len(ids)
	log.Info().Int("total", total).Msg("Fetching matches")

	stored := 0
	failed := 0
	for i, matchID := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Ids stored during phase 2's eager-store path show up here;
		// skip anything storage already has.
		exists, err := c.matchExists(ctx, matchID)
		if err != nil {
			log.Error().Err(err).Str("match_id", matchID).Msg("Failed to check match existence")
			metrics.RecordError("collector", "match_exists")
			failed++
			continue
		}
		if exists {
			continue
		}

		match, err := c.client.GetMatch(ctx, matchID)
		if errors.Is(err, client.ErrNotFound) {
			log.Warn().Str("match_id", matchID).Msg("Match not found, skipping")
			failed++
			metrics.MatchesFailedTotal.Inc()
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("match_id", matchID).Msg("Failed to fetch match")
			metrics.RecordError("collector", "match_fetch")
			failed++
			metrics.MatchesFailedTotal.Inc()
			continue
		}

		if err := c.storeMatch(ctx, match); err != nil {
			log.Error().Err(err).Str("match_id", matchID).Msg("Failed to store match")
			metrics.RecordError("collector", "match_store")
			failed++
			metrics.MatchesFailedTotal.Inc()
			continue
		}
		stored++

		if (i+1)%100 == 0 || i+1 == total {
			log.Info().
				Int("processed", i+1).
				Int("total", total).
				Int("stored", stored).
				Int("failed", failed).
				Msg("Match fetch progress")
		}
	}

	log.Info().
		Int("stored", stored).
		Int("failed", failed).
		Msg("Match fetch complete")
	return nil
}

// matchExists checks the cache fast-path before asking storage.
func (c *Collector) matchExists(ctx context.Context, matchID string) (bool, error) {
	if c.cache != nil && c.cache.Contains(ctx, matchID) {
		return true, nil
	}
	return c.store.MatchExists(ctx, matchID)
}

// storeMatch persists a match body and records it in the cache.
func (c *Collector) storeMatch(ctx context.Context, match *models.MatchResponse) error {
	if err := c.store.StoreMatch(ctx, match, c.cfg.Platform); err != nil {
		return err
	}
	metrics.MatchesStoredTotal.Inc()
	if c.cache != nil {
		c.cache.Add(ctx, match.Metadata.MatchID)
	}
	return nil
}

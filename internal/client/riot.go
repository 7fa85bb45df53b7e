package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"tftcrawler/ingestion/internal/config"
	"tftcrawler/ingestion/internal/metrics"
	"tftcrawler/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNotFound marks a 404 from the API. Not a failure: the resource does
// not exist and callers are expected to skip and continue.
var ErrNotFound = errors.New("resource not found")

const (
	// maxAttempts is the total retry budget across all transient-failure
	// branches (429, 5xx, network errors) combined.
	maxAttempts = 5

	// defaultRetryAfter is used when a 429 carries no Retry-After header.
	defaultRetryAfter = 5 * time.Second

	// matchIDBatchMax is the largest page the match-ids endpoint serves.
	matchIDBatchMax = 200
)

// Client is the Riot TFT API client. Every request pays a fixed
// inter-request delay (a floor rate limit, not adaptive) and transient
// failures are retried with exponential backoff.
type Client struct {
	platformBaseURL string
	regionBaseURL   string
	apiKey          string
	requestDelay    time.Duration
	httpClient      *http.Client

	// sleep is context-aware; replaced in tests to observe backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Riot TFT API client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		platformBaseURL: cfg.PlatformBaseURL(),
		regionBaseURL:   cfg.RegionBaseURL(),
		apiKey:          cfg.RiotAPIKey,
		requestDelay:    cfg.RequestDelay,
		httpClient: &http.Client{
			Timeout: cfg.RiotTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// get performs a GET request with the fixed pre-request delay and retries
// on 429 / server errors / network failures. A 404 returns ErrNotFound.
func (c *Client) get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		// Fixed pacing delay before every attempt, including the first.
		if err := c.sleep(ctx, c.requestDelay); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)
		req.Header.Set("Accept", "application/json")
		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			metrics.RecordAPICall(req.URL.Path, "network_error", time.Since(start).Seconds())
			log.Warn().
				Str("url", url).
				Int("attempt", attempt+1).
				Err(err).
				Msg("Network error, backing off")
			if err := c.sleep(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			metrics.RecordAPICall(req.URL.Path, "network_error", time.Since(start).Seconds())
			if err := c.sleep(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		metrics.RecordAPICall(req.URL.Path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil

		case http.StatusTooManyRequests:
			wait := retryAfter(resp.Header.Get("Retry-After"))
			lastErr = fmt.Errorf("rate limited (429)")
			log.Warn().
				Str("url", url).
				Dur("retry_after", wait).
				Int("attempt", attempt+1).
				Int("max_attempts", maxAttempts).
				Msg("Rate limited, honoring Retry-After")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue

		case http.StatusNotFound:
			log.Debug().Str("url", url).Msg("Resource not found (404)")
			return nil, ErrNotFound

		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := backoff(attempt)
			lastErr = fmt.Errorf("server error %d", resp.StatusCode)
			log.Warn().
				Str("url", url).
				Int("status", resp.StatusCode).
				Dur("backoff", wait).
				Int("attempt", attempt+1).
				Int("max_attempts", maxAttempts).
				Msg("Server error, backing off")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue

		default:
			// Any other non-2xx is a hard failure, no retry.
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", url, maxAttempts, lastErr)
}

// retryAfter decodes the server-supplied wait, defaulting to 5s.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// backoff is the exponential wait for attempt (0-indexed): 1s, 2s, 4s, ...
func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// ----------------------------------------------------------------------
// tft-league-v1 (platform routing)
// ----------------------------------------------------------------------

// GetLeague fetches the standings of an apex league tier. A 404 (tier has
// no data) returns ErrNotFound.
func (c *Client) GetLeague(ctx context.Context, league, queue string) (*models.LeagueList, error) {
	if !config.ValidLeagues[league] {
		return nil, fmt.Errorf("unknown league %q", league)
	}
	url := fmt.Sprintf("%s/tft/league/v1/%s", c.platformBaseURL, league)

	body, err := c.get(ctx, url, map[string]string{"queue": queue})
	if err != nil {
		return nil, err
	}

	var list models.LeagueList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal league list: %w", err)
	}
	return &list, nil
}

// ----------------------------------------------------------------------
// tft-match-v1 (regional routing)
// ----------------------------------------------------------------------

// MatchIDOptions narrows a match-id history page.
type MatchIDOptions struct {
	Count   int
	Start   int
	EndTime int64 // Unix seconds, 0 means unbounded
}

// GetMatchIDs fetches a page of a player's match-id history, newest first.
// A 404 means the player has no history and yields an empty list.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, opts MatchIDOptions) ([]string, error) {
	count := opts.Count
	if count <= 0 {
		count = matchIDBatchMax
	}
	if count > matchIDBatchMax {
		count = matchIDBatchMax
	}

	url := fmt.Sprintf("%s/tft/match/v1/matches/by-puuid/%s/ids", c.regionBaseURL, puuid)
	params := map[string]string{
		"count": strconv.Itoa(count),
		"start": strconv.Itoa(opts.Start),
	}
	if opts.EndTime > 0 {
		params["endTime"] = strconv.FormatInt(opts.EndTime, 10)
	}

	body, err := c.get(ctx, url, params)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match ids: %w", err)
	}
	return ids, nil
}

// GetMatch fetches a full match body. A 404 returns ErrNotFound.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*models.MatchResponse, error) {
	url := fmt.Sprintf("%s/tft/match/v1/matches/%s", c.regionBaseURL, matchID)

	body, err := c.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var match models.MatchResponse
	if err := json.Unmarshal(body, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match %s: %w", matchID, err)
	}
	return &match, nil
}

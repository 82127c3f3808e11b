// Command predict runs a single attendance prediction from flags and prints
// the result as JSON. Data paths and weather settings come from the same
// environment as the service.
//
// Usage:
//
//	go run ./cmd/predict \
//	  -home Genk -away "Club Brugge" \
//	  -matchday 10 -date 2025-10-18 -kickoff 18:00 \
//	  -home-rank 3 -away-rank 6 -scored 9 -conceded 4 -wins 3
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/stadium-attendance-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/stadium-attendance-service/internal/config"
	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
	"github.com/couchcryptid/stadium-attendance-service/internal/model"
	"github.com/couchcryptid/stadium-attendance-service/internal/observability"
	"github.com/couchcryptid/stadium-attendance-service/internal/pipeline"
	"github.com/couchcryptid/stadium-attendance-service/internal/refdata"
	"github.com/couchcryptid/stadium-attendance-service/internal/schema"
)

const defaultKickoff = "15:30"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	home := flag.String("home", "", "home team")
	away := flag.String("away", "", "away team")
	matchday := flag.Int("matchday", 1, "matchday number")
	date := flag.String("date", "", "match date ("+domain.DateLayout+")")
	kickoff := flag.String("kickoff", defaultKickoff, "kickoff time (HH:MM, local to the stadium)")
	homeRank := flag.String("home-rank", "", "home team league position (empty if unknown)")
	awayRank := flag.String("away-rank", "", "away team league position (empty if unknown)")
	scored := flag.Int("scored", 0, "home goals scored in the last five games")
	conceded := flag.Int("conceded", 0, "home goals conceded in the last five games")
	wins := flag.Int("wins", 0, "home wins in the last five games")
	noWeather := flag.Bool("no-weather", false, "skip the weather lookup")
	today := flag.String("today", "", "treat this date ("+domain.DateLayout+") as today")
	flag.Parse()

	if *home == "" || *away == "" || *date == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -home, -away, -date")
	}

	matchDate, err := domain.ParseDate(*date)
	if err != nil {
		return err
	}
	hour, err := parseKickoff(*kickoff)
	if err != nil {
		return err
	}
	if *today != "" {
		fixed, err := domain.ParseDate(*today)
		if err != nil {
			return err
		}
		domain.SetClock(clockwork.NewFakeClockAt(fixed))
		defer domain.SetClock(nil)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	p, err := buildPipeline(cfg, !*noWeather, logger, metrics)
	if err != nil {
		return err
	}

	pred, err := p.Predict(context.Background(), domain.MatchInput{
		HomeTeam:           *home,
		AwayTeam:           *away,
		Matchday:           *matchday,
		Date:               matchDate,
		Hour:               hour,
		HomeRanking:        domain.ParseRank(*homeRank),
		AwayRanking:        domain.ParseRank(*awayRank),
		GoalsScoredLast5:   *scored,
		GoalsConcededLast5: *conceded,
		WinsLast5:          *wins,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pred)
}

func buildPipeline(cfg *config.Config, weather bool, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	ref, err := refdata.Load(cfg.ReferenceDataPath, logger)
	if err != nil {
		return nil, err
	}
	schemas, err := schema.Load(cfg.SchemaDir)
	if err != nil {
		return nil, err
	}
	models, err := model.Load(cfg.ModelDir, schemas)
	if err != nil {
		return nil, err
	}

	var resolver domain.WeatherResolver
	if weather && cfg.WeatherEnabled {
		resolver = openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, cfg.WeatherMaxRetries, metrics, logger)
	}
	return pipeline.New(ref, models, resolver, nil, logger, metrics), nil
}

// parseKickoff returns the hour of an HH:MM kickoff time. Minutes are
// accepted but the forecast is hourly, so they are truncated.
func parseKickoff(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		mm = "0"
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid kickoff %q: hour must be 00-23", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid kickoff %q: minute must be 00-59", s)
	}
	return hour, nil
}

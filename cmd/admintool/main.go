// Command admintool runs organizer tasks outside the HTTP server: hashing the admin password,
// seeding the league's teams, pulling a day's games from the crawler and settling finished games.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"kbo_pickem/server/internal/auth"
	"kbo_pickem/server/internal/cache"
	"kbo_pickem/server/internal/client"
	"kbo_pickem/server/internal/config"
	"kbo_pickem/server/internal/repository"
	"kbo_pickem/server/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage:
  admintool hash <password>
  admintool seed-teams
  admintool crawl [-save] <YYYY-MM-DD>
  admintool settle <YYYY-MM-DD>`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	// hash needs no configuration so it works before the .env exists
	if os.Args[1] == "hash" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", auth.HashPassword(os.Args[2]))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

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

	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// Organizer runs go straight to the database; cached reads are dropped on settle
	var c cache.Cache = cache.Noop{}
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(ctx, cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable - cached leaderboards will expire on their own")
		} else {
			defer rc.Close()
			c = rc
		}
	}

	admin := service.NewAdminService(
		db.Teams, db.Games, db.Predictions, db.Scores,
		client.NewClient(cfg.CrawlerURL, cfg.CrawlerTimeout),
		c, cfg.CacheTTLTeams, cfg.SettlementPoints,
	)

	switch os.Args[1] {
	case "seed-teams":
		err = seedTeams(ctx, admin)
	case "crawl":
		err = crawl(ctx, admin, os.Args[2:])
	case "settle":
		err = settle(ctx, admin, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

func seedTeams(ctx context.Context, admin *service.AdminService) error {
	total, err := admin.SeedTeams(ctx, service.KBOTeams())
	if err != nil {
		return err
	}
	log.Info().Int("teams", total).Msg("Teams table seeded")

	teams, err := admin.Teams(ctx)
	if err != nil {
		return err
	}
	return printJSON(teams)
}

func crawl(ctx context.Context, admin *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	save := fs.Bool("save", false, "store the merged games instead of printing a preview")
	fs.Parse(args)

	date, err := dateArg(fs.Args())
	if err != nil {
		return err
	}

	var result any
	if *save {
		res, err := admin.SyncDate(ctx, date)
		if err != nil {
			return err
		}
		log.Info().
			Str("date", service.FormatDate(date)).
			Int("updated", res.Updated).
			Int("added", res.Added).
			Strs("unmatched_teams", res.UnmatchedTeams).
			Msg("Crawled games saved")
		result = res
	} else {
		res, err := admin.AutoFill(ctx, date, nil)
		if err != nil {
			return err
		}
		result = res
	}

	return printJSON(result)
}

func settle(ctx context.Context, admin *service.AdminService, args []string) error {
	date, err := dateArg(args)
	if err != nil {
		return err
	}

	report, err := admin.SettleDate(ctx, date)
	if err != nil {
		return err
	}
	log.Info().
		Str("date", report.Date).
		Int("finished_games", report.Finished).
		Int("settled_predictions", report.Settled).
		Msg("Settlement complete")

	return printJSON(report)
}

func dateArg(args []string) (time.Time, error) {
	if len(args) != 1 {
		return time.Time{}, fmt.Errorf("expected one date argument\n%s", usage)
	}
	return service.ParseDate(args[0])
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

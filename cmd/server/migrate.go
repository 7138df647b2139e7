package main

import (
	"errors"
	"fmt"
	"strconv"

	"kbo_pickem/server/internal/config"
	"kbo_pickem/server/internal/repository"

	"github.com/rs/zerolog/log"
)

const migrateUsage = "usage: server migrate up | down <steps> | status"

// runMigrate handles `server migrate ...`
func runMigrate(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New(migrateUsage)
	}

	dsn := cfg.DatabaseURL()

	switch args[0] {
	case "up":
		return repository.MigrateUp(dsn)

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid step count %q: %w", args[1], err)
			}
			steps = n
		}
		return repository.MigrateDown(dsn, steps)

	case "status":
		version, dirty, err := repository.MigrateStatus(dsn)
		if err != nil {
			return err
		}
		log.Info().
			Uint("version", version).
			Bool("dirty", dirty).
			Msg("Migration status")
		return nil

	default:
		return fmt.Errorf("unknown migrate command %q; %s", args[0], migrateUsage)
	}
}

// Command migrate applies the embedded schema migrations.
//
//	migrate [-database URL] up|down|version|force N|steps N
//
// The URL defaults to BARBERPOS_DATABASE_URL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/barberkas/api/internal/logger"
	"github.com/barberkas/api/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

func main() {
	dbURL := flag.String("database", os.Getenv("BARBERPOS_DATABASE_URL"), "PostgreSQL connection URL")
	flag.Parse()
	logger.Setup("info", "console")

	if err := run(*dbURL, flag.Args()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
}

func run(dbURL string, args []string) error {
	if dbURL == "" {
		return errors.New("database URL is required (-database or BARBERPOS_DATABASE_URL)")
	}
	if len(args) == 0 {
		return errors.New("command is required: up, down, version, force N or steps N")
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(dbURL))
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil {
			return verr
		}
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
		return nil
	case "force", "steps":
		if len(args) < 2 {
			return fmt.Errorf("%s needs a number", args[0])
		}
		n, perr := strconv.Atoi(args[1])
		if perr != nil {
			return fmt.Errorf("%s: %w", args[0], perr)
		}
		if args[0] == "force" {
			err = m.Force(n)
		} else {
			err = m.Steps(n)
		}
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("no change")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("command", args[0]).Msg("migration applied")
	return nil
}

// pgx5URL swaps the postgres scheme for the one the pgx/v5 driver registers.
func pgx5URL(u string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(u, prefix) {
			return "pgx5://" + strings.TrimPrefix(u, prefix)
		}
	}
	return u
}

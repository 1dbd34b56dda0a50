package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/webhook-ledger/internal/pkg/env"
)

// migrator is the subset of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Version() (uint, bool, error)
}

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	dbURL := env.GetEnv("DATABASE_URL", "")
	source, err := sourceURL(env.GetEnv("MIGRATIONS_DIR", "migrations"), dbURL)
	if err != nil {
		log.Fatalf("cannot pick migrations: %v", err)
	}
	log.Printf("Migrating %s using %s", redact(dbURL), source)

	m, err := migrate.New(source, dbURL)
	if err != nil {
		log.Fatalf("failed to initialize migrations: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("failed to close migration resources: %v, %v", sourceErr, dbErr)
		}
	}()

	if err := run(m, os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// sourceURL selects the per-dialect migration directory from the database
// URL scheme.
func sourceURL(dir, databaseURL string) (string, error) {
	scheme, _, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return "", errors.New("DATABASE_URL must include a scheme")
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return fmt.Sprintf("file://%s/postgres", strings.TrimRight(dir, "/")), nil
	case "mysql":
		return fmt.Sprintf("file://%s/mysql", strings.TrimRight(dir, "/")), nil
	default:
		return "", fmt.Errorf("unsupported scheme %q", scheme)
	}
}

func run(m migrator, args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "up":
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintln(out, "No change: database is up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		fmt.Fprintln(out, "Migrations applied")

	case "down":
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("roll back last migration: %w", err)
		}
		fmt.Fprintln(out, "Rolled back last migration")

	case "goto":
		if len(args) < 2 {
			return errors.New("goto needs a version number")
		}
		version, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version: %w", err)
		}
		err = m.Migrate(uint(version))
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintf(out, "No change: database is already at version %d\n", version)
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrate to version %d: %w", version, err)
		}
		fmt.Fprintf(out, "Migrated to version %d\n", version)

	case "status":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "No migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		suffix := ""
		if dirty {
			suffix = " (dirty)"
		}
		fmt.Fprintf(out, "Current version: %d%s\n", version, suffix)

	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

// redact hides the password in a URL-style DSN before logging it.
func redact(dbURL string) string {
	scheme, rest, ok := strings.Cut(dbURL, "://")
	if !ok {
		return "<invalid>"
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return dbURL
	}
	user, _, _ := strings.Cut(rest[:at], ":")
	return fmt.Sprintf("%s://%s:***@%s", scheme, user, rest[at+1:])
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: migrate [command]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  up     - apply all pending migrations")
	fmt.Fprintln(out, "  down   - roll back the last migration")
	fmt.Fprintln(out, "  goto N - migrate to version N")
	fmt.Fprintln(out, "  status - print the current version")
}

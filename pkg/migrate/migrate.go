package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/storefrontlabs/storefront/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

// Run executes a goose command against the provided connection. The dialect
// follows the configured driver so local sqlite runs migrate too.
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	if err := goose.SetDialect(gooseDialect(driver)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func gooseDialect(driver string) string {
	if strings.EqualFold(driver, config.DriverSQLite) {
		return "sqlite3"
	}
	return "postgres"
}

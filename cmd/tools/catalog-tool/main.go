// cmd/tools/catalog-tool/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"scheme-workers/internal/common/config"
	"scheme-workers/internal/common/database"
	"scheme-workers/pkg/rules"
)

const catalogCacheKey = "rules:catalog:active"

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "configs/scheme-catalog.json", "Path to catalog file")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listPath := listCmd.String("path", "configs/scheme-catalog.json", "Path to catalog file")

	publishCmd := flag.NewFlagSet("publish", flag.ExitOnError)
	publishPath := publishCmd.String("path", "configs/scheme-catalog.json", "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		catalog, err := rules.LoadCatalog(*validatePath)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Version %s, %d schemes.\n", catalog.Version, len(catalog.Schemes))

	case "list":
		listCmd.Parse(os.Args[2:])
		catalog, err := rules.LoadCatalog(*listPath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		for _, scheme := range catalog.Schemes {
			fmt.Printf("%-32s %s\n", scheme.SchemeID, scheme.SchemeName)
		}

	case "publish":
		publishCmd.Parse(os.Args[2:])
		if err := publishCatalog(*publishPath); err != nil {
			fmt.Printf("Error publishing catalog: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

// publishCatalog validates the catalog file, stores it as the active
// document, and drops the serving cache so workers pick it up on the
// next evaluation.
func publishCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	catalog, err := rules.Parse(data)
	if err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pg.Close()

	tx, err := pg.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE rule_catalogs SET active = false WHERE active = true`); err != nil {
		return fmt.Errorf("failed to deactivate previous catalog: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rule_catalogs (id, document, version, active, published_at)
		VALUES ($1, $2, $3, true, $4)`,
		uuid.New().String(), string(data), catalog.Version, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert catalog: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	// Cache invalidation is best-effort; the entry expires on its own TTL.
	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		defer redisClient.Close()
		if err := redisClient.Del(ctx, catalogCacheKey); err != nil {
			fmt.Printf("Warning: failed to invalidate catalog cache: %v\n", err)
		}
	}

	fmt.Printf("Published catalog version %s with %d schemes.\n", catalog.Version, len(catalog.Schemes))
	return nil
}

func help() {
	fmt.Print(`
Usage: catalog-tool <command> [flags]

Commands:
  validate Validate a catalog file against the rule schema
  list     List the schemes in a catalog file
  publish  Validate, store as the active catalog, and invalidate the cache
  help     Show this help message

Examples:
  catalog-tool validate -path configs/scheme-catalog.json
  catalog-tool list -path configs/scheme-catalog.json
  catalog-tool publish -path configs/scheme-catalog.json

Use 'catalog-tool <command> -h' for more information about a command.

`)
}

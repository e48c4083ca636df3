// Command seed-db loads the inventory document into PostgreSQL so the server
// can run with a database-backed catalog.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/dwarforca/storefront/internal/catalog"
	"github.com/dwarforca/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL   string
		inventoryFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&inventoryFile, "inventory-file", "db/seed/inventory.json", "path to inventory JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, inventoryFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, inventoryFile string) error {
	slog.Info("reading inventory file", slog.String("path", inventoryFile))

	data, err := os.ReadFile(inventoryFile)
	if err != nil {
		return errors.Wrap(err, "read inventory file")
	}

	products, err := catalog.ParseInventory(data)
	if err != nil {
		return errors.Wrap(err, "parse inventory")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := postgres.UpsertProduct(ctx, pool, p); err != nil {
			return err
		}
		slog.Info("upserted product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/invensight/invensight/internal/cache"
	"github.com/invensight/invensight/internal/config"
	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/ingest"
	"github.com/invensight/invensight/internal/repository"
	"github.com/invensight/invensight/internal/repository/postgres"
	"github.com/invensight/invensight/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "pipeline",
		Usage: "Manage the inventory pipeline database and run refresh passes",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runMigrate,
			},
			{
				Name:  "seed",
				Usage: "Load snapshot CSV files into the facts table",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing snapshot CSV files",
						Value:   "./data/snapshots",
						EnvVars: []string{"SNAPSHOT_DATA_DIR"},
					},
				},
				Action: runSeed,
			},
			{
				Name:      "refresh",
				Usage:     "Run one refresh pass (health, alerts, anomalies, forecasts, reorders or all)",
				ArgsUsage: "[component]",
				Action:    runRefresh,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func runMigrate(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(c.Context, repository.Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Println("Schema applied successfully")
	return nil
}

func runSeed(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	dataDir := c.String("data-dir")
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return fmt.Errorf("failed to list snapshot files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no snapshot CSV files found in %s", dataDir)
	}

	total := 0
	for _, file := range files {
		facts, err := ingest.ReadSnapshotCSV(file)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}

		inserted, err := insertFacts(c.Context, db, facts)
		if err != nil {
			return fmt.Errorf("failed to insert facts from %s: %w", file, err)
		}

		log.Printf("Seeded %s: %d rows (%d duplicates skipped)", filepath.Base(file), inserted, len(facts)-inserted)
		total += inserted
	}

	log.Printf("Seeding completed: %d rows inserted from %d files", total, len(files))
	return nil
}

func insertFacts(ctx context.Context, db *sql.DB, facts []domain.InventoryFact) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO inventory_facts (
			item_id, location_id, category, item_name,
			quantity_on_hand, quantity_reserved, quantity_committed,
			avg_daily_demand, reorder_point, safety_stock, lead_time_days,
			unit_cost, max_capacity, lifecycle_status, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT ON CONSTRAINT uq_facts_observation DO NOTHING
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, fact := range facts {
		res, err := stmt.ExecContext(ctx,
			fact.ItemID, fact.LocationID, fact.Category, fact.ItemName,
			fact.QuantityOnHand, fact.QuantityReserved, fact.QuantityCommitted,
			fact.AvgDailyDemand, fact.ReorderPoint, fact.SafetyStock, fact.LeadTimeDays,
			fact.UnitCost, fact.MaxCapacity, fact.LifecycleStatus, fact.ObservedAt,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert %s/%s: %w", fact.ItemID, fact.LocationID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

func runRefresh(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	refresh := service.NewRefreshService(
		postgres.NewSnapshotRepository(db.DB),
		postgres.NewHealthRepository(db.DB),
		postgres.NewAlertRepository(db.DB),
		postgres.NewForecastRepository(db),
		postgres.NewReorderRepository(db.DB),
		postgres.NewAnomalyRepository(db.DB),
		cache.NewNoopOverviewCache(),
		cfg.Pipeline,
	)

	component := c.Args().First()
	if component == "" || component == "all" {
		if err := refresh.RefreshAll(c.Context); err != nil {
			return err
		}
		log.Println("Full refresh completed")
		return nil
	}

	if err := refresh.Refresh(c.Context, component); err != nil {
		return err
	}
	log.Printf("Refresh %s completed", component)
	return nil
}

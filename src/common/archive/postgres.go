package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/op/go-logging"
	"github.com/shopspring/decimal"

	"sales-analysis/src/common/logger"
	"sales-analysis/src/sales"
)

const schema = `
CREATE TABLE IF NOT EXISTS consolidation_runs (
	run_id            TEXT PRIMARY KEY,
	report_date       TEXT NOT NULL,
	total_profit      NUMERIC NOT NULL,
	most_profitable   TEXT,
	least_profitable  TEXT,
	artifacts_merged  INTEGER NOT NULL,
	artifacts_missing INTEGER NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS store_profits (
	run_id TEXT NOT NULL REFERENCES consolidation_runs(run_id),
	store  TEXT NOT NULL,
	profit NUMERIC NOT NULL,
	PRIMARY KEY (run_id, store)
);

CREATE TABLE IF NOT EXISTS product_stats (
	run_id   TEXT NOT NULL REFERENCES consolidation_runs(run_id),
	product  TEXT NOT NULL,
	quantity BIGINT NOT NULL,
	sold     NUMERIC NOT NULL,
	profit   NUMERIC NOT NULL,
	PRIMARY KEY (run_id, product)
);`

// PostgresArchive stores consolidated reports.
type PostgresArchive struct {
	log *logging.Logger
	db  *sql.DB
}

func NewPostgresArchive(dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres db: %w", err)
	}

	return &PostgresArchive{
		log: logger.GetLoggerWithPrefix("[ARCHIVE]"),
		db:  db,
	}, nil
}

func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create archive tables: %w", err)
	}
	return nil
}

// Save writes the report and all of its store and product rows in one
// transaction.
func (a *PostgresArchive) Save(ctx context.Context, runID, date string, report *sales.GlobalReport) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO consolidation_runs
		(run_id, report_date, total_profit, most_profitable, least_profitable, artifacts_merged, artifacts_missing, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		runID, date, report.TotalProfit,
		storeName(report.MostProfitable), storeName(report.LeastProfitable),
		report.ArtifactsMerged, len(report.ArtifactsUnavailable), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}

	storeStmt, err := tx.PrepareContext(ctx, `INSERT INTO store_profits (run_id, store, profit) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("failed to prepare store insert: %w", err)
	}
	defer storeStmt.Close()

	for _, store := range report.Stores.Names() {
		if _, err = storeStmt.ExecContext(ctx, runID, store, report.Stores[store]); err != nil {
			return fmt.Errorf("failed to insert store %s: %w", store, err)
		}
	}

	productStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO product_stats (run_id, product, quantity, sold, profit) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer productStmt.Close()

	for _, product := range report.Products.Names() {
		stats := report.Products[product]
		if _, err = productStmt.ExecContext(ctx, runID, product, stats.Quantity, stats.Sold, stats.Profit); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", product, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", runID, err)
	}

	a.log.Infof("Archived run %s for %s: %d stores, %d products", runID, date, len(report.Stores), len(report.Products))
	return nil
}

// RunTotal returns the archived total profit of runID and its store count.
func (a *PostgresArchive) RunTotal(ctx context.Context, runID string) (decimal.Decimal, int, error) {
	var total decimal.Decimal
	var stores int

	err := a.db.QueryRowContext(ctx,
		`SELECT r.total_profit, COUNT(s.store)
		FROM consolidation_runs r LEFT JOIN store_profits s ON s.run_id = r.run_id
		WHERE r.run_id = $1
		GROUP BY r.total_profit`, runID,
	).Scan(&total, &stores)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to read run %s: %w", runID, err)
	}
	return total, stores, nil
}

func (a *PostgresArchive) Close() error {
	return a.db.Close()
}

func storeName(result *sales.StoreResult) sql.NullString {
	if result == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: result.Name, Valid: true}
}

package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/pairbacktest/internal/logger"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
	"go.uber.org/zap"
)

// ResultStore persists a completed run to DuckDB and exports it as Parquet.
// The simulation itself never touches the store; results are written once
// after the run finishes.
type ResultStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewResultStore(logger *logger.Logger) (*ResultStore, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to open database", err)
	}

	return &ResultStore{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the result tables.
func (s *ResultStore) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS fills (
			fill_id TEXT PRIMARY KEY,
			symbol TEXT,
			date TIMESTAMP,
			quantity DOUBLE,
			price DOUBLE,
			commission DOUBLE,
			pair_id TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fills table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS round_trips (
			symbol TEXT,
			pair_id TEXT,
			entry_date TIMESTAMP,
			exit_date TIMESTAMP,
			quantity DOUBLE,
			realized_pnl DOUBLE,
			commission DOUBLE,
			holding_days INTEGER
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create round_trips table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS equity_curve (
			date TIMESTAMP,
			equity DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create equity_curve table: %w", err)
	}

	return nil
}

// Save inserts the result's fills, round trips and equity curve.
func (s *ResultStore) Save(result *BacktestResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, fill := range result.Fills {
		insert := s.sq.
			Insert("fills").
			Columns("fill_id", "symbol", "date", "quantity", "price", "commission", "pair_id").
			Values(fill.ID, fill.Symbol, fill.Date, fill.Quantity, fill.Price, fill.Commission, fill.PairID).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert fill: %w", err)
		}
	}

	for _, rt := range result.RoundTrips {
		insert := s.sq.
			Insert("round_trips").
			Columns("symbol", "pair_id", "entry_date", "exit_date", "quantity", "realized_pnl", "commission", "holding_days").
			Values(rt.Symbol, rt.PairID, rt.Entry.Date, rt.Exit.Date, rt.Quantity, rt.RealizedPnL, rt.Commission, rt.HoldingDays).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert round trip: %w", err)
		}
	}

	for _, point := range result.EquityCurve {
		insert := s.sq.
			Insert("equity_curve").
			Columns("date", "equity").
			Values(point.Date, point.Equity).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert equity point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountFills returns the number of stored fills.
func (s *ResultStore) CountFills() (int, error) {
	var count int

	err := s.sq.
		Select("COUNT(*)").
		From("fills").
		RunWith(s.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fills: %w", err)
	}

	return count, nil
}

// PairPnL returns realized pnl summed per pair id in sorted pair order.
func (s *ResultStore) PairPnL() (map[string]float64, error) {
	rows, err := s.sq.
		Select("pair_id", "SUM(realized_pnl)").
		From("round_trips").
		Where(squirrel.NotEq{"pair_id": ""}).
		GroupBy("pair_id").
		OrderBy("pair_id").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query pair pnl: %w", err)
	}
	defer rows.Close()

	pnl := make(map[string]float64)

	for rows.Next() {
		var pairID string
		var total float64

		if err := rows.Scan(&pairID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan pair pnl: %w", err)
		}

		pnl[pairID] = total
	}

	return pnl, rows.Err()
}

// Write exports all result tables as Parquet files under path.
func (s *ResultStore) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err,
			"failed to create result directory %s", path)
	}

	// Raw SQL: squirrel has no COPY support.
	for _, table := range []string{"fills", "round_trips", "equity_curve"} {
		target := filepath.Join(path, table+".parquet")

		_, err := s.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, target))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeResultWriteFailed, err,
				"failed to export %s to Parquet", table)
		}
	}

	s.logger.Info("exported backtest results to Parquet",
		zap.String("path", path),
	)

	return nil
}

// Close releases the underlying database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sp500dash/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ BarStore = (*SQLiteStore)(nil)

// SQLiteStore implements BarStore with a single bars table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection serializes the gatherer's concurrent batch writes.
	db.SetMaxOpenConns(1)

	// WAL lets the server read while the gatherer writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			market      TEXT    NOT NULL,
			symbol      TEXT    NOT NULL,
			ts          INTEGER NOT NULL,
			day         TEXT    NOT NULL,
			open        REAL    NOT NULL,
			high        REAL    NOT NULL,
			low         REAL    NOT NULL,
			close       REAL    NOT NULL,
			volume      INTEGER NOT NULL,
			trade_count INTEGER NOT NULL DEFAULT 0,
			vwap        REAL    NOT NULL DEFAULT 0,
			PRIMARY KEY (market, symbol, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_day ON bars (market, symbol, day)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// WriteBars upserts bars in one transaction.
func (s *SQLiteStore) WriteBars(ctx context.Context, market domain.Market, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO bars
		(market, symbol, ts, day, open, high, low, close, volume, trade_count, vwap)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.ExecContext(ctx,
			string(market), strings.ToUpper(b.Symbol), b.Timestamp.UnixMilli(), b.Day().String(),
			b.Open, b.High, b.Low, b.Close, b.Volume, b.TradeCount, b.VWAP,
		)
		if err != nil {
			return fmt.Errorf("inserting %s %s: %w", b.Symbol, b.Day(), err)
		}
	}
	return tx.Commit()
}

// ReadBars selects bars by ISO day string, which orders like the date.
func (s *SQLiteStore) ReadBars(ctx context.Context, market domain.Market, symbol string, start, end domain.Date) ([]domain.Bar, error) {
	query := `SELECT symbol, ts, open, high, low, close, volume, trade_count, vwap
		FROM bars WHERE market = ? AND symbol = ?`
	args := []any{string(market), strings.ToUpper(symbol)}
	if !start.IsZero() {
		query += ` AND day >= ?`
		args = append(args, start.String())
	}
	if !end.IsZero() {
		query += ` AND day <= ?`
		args = append(args, end.String())
	}
	query += ` ORDER BY ts`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var (
			b  domain.Bar
			ts int64
		)
		if err := rows.Scan(&b.Symbol, &ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.TradeCount, &b.VWAP); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = time.UnixMilli(ts).UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ListSymbols returns the distinct symbols stored for market, ascending.
func (s *SQLiteStore) ListSymbols(ctx context.Context, market domain.Market) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM bars WHERE market = ? ORDER BY symbol`, string(market))
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

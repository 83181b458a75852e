package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/registry"
)

// schema is applied by Migrate. Prices travel as text and are cast to
// numeric in SQL so no precision is lost on either side.
const schema = `
CREATE SCHEMA IF NOT EXISTS market;

CREATE TABLE IF NOT EXISTS market.snapshots (
	id        TEXT PRIMARY KEY,
	taken_at  TIMESTAMPTZ NOT NULL,
	start_at  TIMESTAMPTZ NOT NULL,
	last_tick TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS snapshots_taken_at_idx ON market.snapshots (taken_at DESC);

CREATE TABLE IF NOT EXISTS market.snapshot_stocks (
	snapshot_id   TEXT NOT NULL REFERENCES market.snapshots (id) ON DELETE CASCADE,
	position      INT NOT NULL,
	symbol        TEXT NOT NULL,
	price         NUMERIC(20, 2) NOT NULL CHECK (price >= 0),
	opening_price NUMERIC(20, 2) NOT NULL CHECK (opening_price >= 0),
	trading_day   DATE NOT NULL,
	last_tick     TIMESTAMPTZ,
	volatility    DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (snapshot_id, symbol),
	UNIQUE (snapshot_id, position)
);

CREATE TABLE IF NOT EXISTS market.snapshot_history (
	snapshot_id TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	date        DATE NOT NULL,
	open        NUMERIC(20, 2) NOT NULL CHECK (open >= 0),
	PRIMARY KEY (snapshot_id, symbol, date),
	FOREIGN KEY (snapshot_id, symbol) REFERENCES market.snapshot_stocks (snapshot_id, symbol) ON DELETE CASCADE
);
`

// PostgresStore keeps every snapshot in the market schema
type PostgresStore struct {
	pool *pgxpool.Pool
	keep int
}

// NewPostgresStore stores snapshots through pool. keep > 0 deletes all but
// the newest keep snapshots after each save.
func NewPostgresStore(pool *pgxpool.Pool, keep int) *PostgresStore {
	return &PostgresStore{pool: pool, keep: keep}
}

// Migrate creates the schema if it does not exist yet
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return nil
}

// Save inserts snap in a single transaction
func (s *PostgresStore) Save(ctx context.Context, snap registry.Snapshot) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO market.snapshots (id, taken_at, start_at, last_tick)
			VALUES ($1, $2, $3, $4)
		`, snap.ID, snap.TakenAt, snap.Start, nullTime(snap.LastTick))
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}

		batch := &pgx.Batch{}
		for i, st := range snap.Stocks {
			batch.Queue(`
				INSERT INTO market.snapshot_stocks
					(snapshot_id, position, symbol, price, opening_price, trading_day, last_tick, volatility)
				VALUES ($1, $2, $3, $4::text::numeric, $5::text::numeric, $6, $7, $8)
			`, snap.ID, i, st.Symbol, st.Price.String(), st.OpeningPrice.String(),
				st.TradingDay, nullTime(st.LastTick), st.Volatility)

			for _, rec := range st.History {
				batch.Queue(`
					INSERT INTO market.snapshot_history (snapshot_id, symbol, date, open)
					VALUES ($1, $2, $3, $4::text::numeric)
				`, snap.ID, st.Symbol, rec.Date, rec.Open.String())
			}
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert stocks: %w", err)
		}

		if s.keep > 0 {
			_, err := tx.Exec(ctx, `
				DELETE FROM market.snapshots
				WHERE id NOT IN (
					SELECT id FROM market.snapshots ORDER BY taken_at DESC, id DESC LIMIT $1
				)
			`, s.keep)
			if err != nil {
				return fmt.Errorf("prune snapshots: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Latest loads the most recently taken snapshot
func (s *PostgresStore) Latest(ctx context.Context) (registry.Snapshot, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM market.snapshots ORDER BY taken_at DESC, id DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return registry.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("failed to find latest snapshot: %w", err)
	}

	return s.Get(ctx, id)
}

// Get loads one snapshot with its stocks and history
func (s *PostgresStore) Get(ctx context.Context, id string) (registry.Snapshot, error) {
	snap := registry.Snapshot{ID: id}

	var lastTick *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT taken_at, start_at, last_tick FROM market.snapshots WHERE id = $1
	`, id).Scan(&snap.TakenAt, &snap.Start, &lastTick)
	if errors.Is(err, pgx.ErrNoRows) {
		return registry.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}
	snap.TakenAt = snap.TakenAt.UTC()
	snap.Start = snap.Start.UTC()
	snap.LastTick = derefTime(lastTick)

	rows, err := s.pool.Query(ctx, `
		SELECT symbol, price::text, opening_price::text, trading_day, last_tick, volatility
		FROM market.snapshot_stocks
		WHERE snapshot_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var (
			st             registry.StockState
			price, opening string
			stockTick      *time.Time
		)
		if err := rows.Scan(&st.Symbol, &price, &opening, &st.TradingDay, &stockTick, &st.Volatility); err != nil {
			return registry.Snapshot{}, fmt.Errorf("failed to scan stock: %w", err)
		}
		if st.Price, err = decimal.NewFromString(price); err != nil {
			return registry.Snapshot{}, fmt.Errorf("parse price of %s: %w", st.Symbol, err)
		}
		if st.OpeningPrice, err = decimal.NewFromString(opening); err != nil {
			return registry.Snapshot{}, fmt.Errorf("parse opening price of %s: %w", st.Symbol, err)
		}
		st.LastTick = derefTime(stockTick)
		st.History = []market.HistoricalRecord{}

		index[st.Symbol] = len(snap.Stocks)
		snap.Stocks = append(snap.Stocks, st)
	}
	if err := rows.Err(); err != nil {
		return registry.Snapshot{}, fmt.Errorf("failed to read stocks: %w", err)
	}

	hist, err := s.pool.Query(ctx, `
		SELECT symbol, date, open::text
		FROM market.snapshot_history
		WHERE snapshot_id = $1
		ORDER BY symbol, date
	`, id)
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("failed to query history: %w", err)
	}
	defer hist.Close()

	for hist.Next() {
		var (
			symbol, open string
			rec          market.HistoricalRecord
		)
		if err := hist.Scan(&symbol, &rec.Date, &open); err != nil {
			return registry.Snapshot{}, fmt.Errorf("failed to scan history: %w", err)
		}
		if rec.Open, err = decimal.NewFromString(open); err != nil {
			return registry.Snapshot{}, fmt.Errorf("parse open of %s: %w", symbol, err)
		}

		i, ok := index[symbol]
		if !ok {
			return registry.Snapshot{}, fmt.Errorf("history for unknown stock %s", symbol)
		}
		snap.Stocks[i].History = append(snap.Stocks[i].History, rec)
	}
	if err := hist.Err(); err != nil {
		return registry.Snapshot{}, fmt.Errorf("failed to read history: %w", err)
	}

	return snap, nil
}

// Close is a no-op; the pool belongs to the caller
func (s *PostgresStore) Close() error { return nil }

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	tick_number BIGINT PRIMARY KEY,
	epoch       INT NOT NULL,
	ts          TIMESTAMPTZ NOT NULL,
	tx_count    INT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS tick_transactions (
	hash        TEXT PRIMARY KEY,
	tick_number BIGINT NOT NULL REFERENCES ticks (tick_number),
	source      TEXT NOT NULL,
	dest        TEXT NOT NULL,
	amount      BIGINT NOT NULL,
	input_type  SMALLINT NOT NULL,
	input_data  BYTEA
);
CREATE INDEX IF NOT EXISTS tick_transactions_tick_idx ON tick_transactions (tick_number);
CREATE TABLE IF NOT EXISTS tick_events (
	tick_number BIGINT NOT NULL REFERENCES ticks (tick_number),
	event_index INT NOT NULL,
	tx_hash     TEXT,
	event_type  INT NOT NULL,
	data        BYTEA,
	PRIMARY KEY (tick_number, event_index)
);
CREATE TABLE IF NOT EXISTS ingest_checkpoint (
	id          SMALLINT PRIMARY KEY DEFAULT 1,
	tick_number BIGINT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (id = 1)
);
`

// Handler is the Postgres sink and checkpoint store. Batch inserts are
// transactional and idempotent by tick, so replaying the last batch after a
// crash does not duplicate rows.
type Handler struct {
	pool *pgxpool.Pool
}

func NewHandler(ctx context.Context, cfg config.DBConfig) (*Handler, error) {
	slog.Info("connecting to DB", "url", cfg.URL)
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &Handler{pool: pool}, nil
}

// InsertTickBatch writes all records in one transaction. ON CONFLICT DO
// NOTHING gives insert-if-absent semantics per tick.
func (h *Handler) InsertTickBatch(ctx context.Context, records []model.TickRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	b := &pgx.Batch{}
	for _, r := range records {
		b.Queue(`INSERT INTO ticks (tick_number, epoch, ts, tx_count)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (tick_number) DO NOTHING`,
			int64(r.Tick), r.Epoch, r.Timestamp, len(r.Transactions))
		for _, t := range r.Transactions {
			b.Queue(`INSERT INTO tick_transactions (hash, tick_number, source, dest, amount, input_type, input_data)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (hash) DO NOTHING`,
				t.Hash, int64(r.Tick), t.Source, t.Dest, t.Amount, int16(t.InputType), t.InputData)
		}
		for i, e := range r.Events {
			b.Queue(`INSERT INTO tick_events (tick_number, event_index, tx_hash, event_type, data)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (tick_number, event_index) DO NOTHING`,
				int64(r.Tick), i, e.TxHash, e.Type, e.Data)
		}
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return tx.Commit(ctx)
}

func (h *Handler) GetLastCheckpoint(ctx context.Context) (uint64, bool, error) {
	var tick int64
	err := h.pool.QueryRow(ctx,
		`SELECT tick_number FROM ingest_checkpoint WHERE id = 1`).Scan(&tick)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint64(tick), true, nil
}

// SetCheckpoint upserts the marker. GREATEST keeps it monotonic even if a
// stale writer races a restart.
func (h *Handler) SetCheckpoint(ctx context.Context, tick uint64) error {
	_, err := h.pool.Exec(ctx,
		`INSERT INTO ingest_checkpoint (id, tick_number) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE
		 SET tick_number = GREATEST(ingest_checkpoint.tick_number, EXCLUDED.tick_number),
		     updated_at = NOW()`,
		int64(tick))
	return err
}

func (h *Handler) Close() {
	h.pool.Close()
}

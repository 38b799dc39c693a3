// Package history keeps a queryable record of completed trades in an
// embedded SQLite database, off the engine's hot path.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pixelmesh/gomarketd/internal/core/market"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_id    INTEGER NOT NULL,
	event      TEXT    NOT NULL,
	seller     TEXT    NOT NULL,
	buyer      TEXT    NOT NULL,
	collection TEXT    NOT NULL,
	payment    TEXT    NOT NULL,
	amount     INTEGER NOT NULL,
	fee        INTEGER NOT NULL,
	traded_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS trades_collection ON trades (collection, traded_at);
`

// Trade is one settled sale.
type Trade struct {
	SaleID     uint64 `json:"sale_id,omitempty"`
	Event      string `json:"event"`
	Seller     string `json:"seller"`
	Buyer      string `json:"buyer"`
	Collection string `json:"collection"`
	Payment    string `json:"payment"`
	Amount     uint64 `json:"amount"`
	Fee        uint64 `json:"fee"`
	TradedAt   int64  `json:"traded_at"`
}

// Index records settlement events.
type Index struct {
	db *sql.DB
}

// Open opens or creates the trade index at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database %s: %w", path, err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent RPC reads.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// RecordEvent stores a settlement event. Non-settlement events are
// ignored so the engine can feed its whole event stream in.
func (ix *Index) RecordEvent(ctx context.Context, ev market.Event, at time.Time) error {
	switch ev.Type {
	case market.EventPurchased, market.EventPurchasedWithSignature:
	default:
		return nil
	}
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO trades (sale_id, event, seller, buyer, collection, payment, amount, fee, traded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.SaleID, string(ev.Type), ev.Seller.String(), ev.Buyer.String(),
		ev.Collection.String(), ev.Payment.String(), uint64(ev.Amount), uint64(ev.Fee),
		at.Unix(),
	)
	return err
}

// Recent returns the latest trades, newest first.
func (ix *Index) Recent(ctx context.Context, limit int) ([]Trade, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := ix.db.QueryContext(ctx, `
		SELECT sale_id, event, seller, buyer, collection, payment, amount, fee, traded_at
		FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// ByCollection returns the latest trades of one collection, newest
// first.
func (ix *Index) ByCollection(ctx context.Context, collection string, limit int) ([]Trade, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := ix.db.QueryContext(ctx, `
		SELECT sale_id, event, seller, buyer, collection, payment, amount, fee, traded_at
		FROM trades WHERE collection = ? ORDER BY id DESC LIMIT ?`, collection, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

func scanTrades(rows *sql.Rows) ([]Trade, error) {
	var out []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.SaleID, &t.Event, &t.Seller, &t.Buyer,
			&t.Collection, &t.Payment, &t.Amount, &t.Fee, &t.TradedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

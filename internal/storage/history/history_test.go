package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/market"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func settlement(saleID uint64, collection types.Address) market.Event {
	return market.Event{
		Type:       market.EventPurchased,
		SaleID:     saleID,
		Seller:     types.Address{1},
		Buyer:      types.Address{2},
		Collection: collection,
		Payment:    asset.Native(),
	}
}

func TestRecordAndQuery(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	collA := types.Address{0xaa}
	collB := types.Address{0xbb}

	evA := settlement(1, collA)
	evA.Amount = 1_000_000
	evA.Fee = 10_000
	require.NoError(t, ix.RecordEvent(ctx, evA, now))

	evB := settlement(2, collB)
	evB.Type = market.EventPurchasedWithSignature
	evB.Amount = 2_000_000
	require.NoError(t, ix.RecordEvent(ctx, evB, now.Add(time.Minute)))

	// Non-settlement events are ignored.
	require.NoError(t, ix.RecordEvent(ctx, market.Event{Type: market.EventBid, SaleID: 3}, now))

	trades, err := ix.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	require.Equal(t, uint64(2), trades[0].SaleID) // newest first
	require.Equal(t, uint64(1), trades[1].SaleID)
	require.Equal(t, uint64(10_000), trades[1].Fee)

	byColl, err := ix.ByCollection(ctx, collA.String(), 10)
	require.NoError(t, err)
	require.Len(t, byColl, 1)
	require.Equal(t, uint64(1), byColl[0].SaleID)
	require.Equal(t, now.Unix(), byColl[0].TradedAt)
}

func TestRecentLimitClamped(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	for i := uint64(1); i <= 5; i++ {
		ev := settlement(i, types.Address{0xcc})
		ev.Amount = amount.Amount(i * 100)
		require.NoError(t, ix.RecordEvent(ctx, ev, time.Now()))
	}
	trades, err := ix.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	trades, err = ix.Recent(ctx, -1)
	require.NoError(t, err)
	require.Len(t, trades, 5)
}

package posting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/inventory"
)

func TestPostStockAdjustmentIncrease(t *testing.T) {
	env := newTestEnv(t, withBusinessUnits(&fakeBURepo{
		warehouses: map[int64]int64{2: 302},
	}))
	when := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	adj := &inventory.StockAdjustment{
		ID: 4, CompanyID: 1, Number: "ADJ-000004",
		WarehouseID: ptr(2), SiteID: ptr(3),
		Quantity: dec("5"), TotalCost: dec("125.00"),
		Reason: "found stock", AdjustmentDate: &when,
	}

	entry, err := env.svc.PostStockAdjustment(context.Background(), adj, true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, journals.SourceStockAdjustment, entry.SourceType)
	require.Equal(t, when, entry.EntryDate)

	require.Equal(t, acctInventory, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(dec("125.00")))
	require.Equal(t, ptr(302), entry.Lines[0].BusinessUnitID)
	require.Equal(t, acctAdjustment, entry.Lines[1].AccountID)
}

func TestPostStockAdjustmentDecreaseSwapsSides(t *testing.T) {
	env := newTestEnv(t)
	adj := &inventory.StockAdjustment{
		ID: 5, Number: "ADJ-000005",
		Quantity: dec("-3"), TotalCost: dec("-75.00"),
	}

	entry, err := env.svc.PostStockAdjustment(context.Background(), adj, true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, acctAdjustment, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(dec("75.00")))
	require.Equal(t, acctInventory, entry.Lines[1].AccountID)
}

func TestPostStockAdjustmentZeroValue(t *testing.T) {
	env := newTestEnv(t)
	adj := &inventory.StockAdjustment{ID: 6, Quantity: dec("2"), TotalCost: dec("0")}

	entry, err := env.svc.PostStockAdjustment(context.Background(), adj, true)
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Empty(t, env.store.tx.entries)
}

func TestPostCycleCountAdjustment(t *testing.T) {
	kept := append(defaultMappings(), mappings.AccountMapping{
		TransactionType: mappings.TypeCycleCountAdjustment,
		DebitAccountID:  acctInventory, CreditAccountID: acctExpense,
	})
	env := newTestEnv(t, withMappings(kept))
	adj := &inventory.CycleCountAdjustment{
		ID: 8, CycleCountID: 2, Number: "CC-000008",
		VarianceQuantity: dec("-2"), TotalCost: dec("50.00"),
	}

	entry, err := env.svc.PostCycleCountAdjustment(context.Background(), adj, true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, journals.SourceCycleCountAdjustment, entry.SourceType)
	// Negative variance swaps to credit inventory.
	require.Equal(t, acctExpense, entry.Lines[0].AccountID)
	require.Equal(t, acctInventory, entry.Lines[1].AccountID)
}

func TestPostCycleCountAdjustmentFallsBackToStockMapping(t *testing.T) {
	env := newTestEnv(t)
	adj := &inventory.CycleCountAdjustment{
		ID: 9, Number: "CC-000009",
		VarianceQuantity: dec("1"), TotalCost: dec("20.00"),
	}

	entry, err := env.svc.PostCycleCountAdjustment(context.Background(), adj, true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, acctInventory, entry.Lines[0].AccountID)
	require.Equal(t, acctAdjustment, entry.Lines[1].AccountID)
}

func TestPostAdjustmentMissingMappingSkips(t *testing.T) {
	env := newTestEnv(t, withMappings(nil))
	adj := &inventory.StockAdjustment{ID: 10, Quantity: dec("1"), TotalCost: dec("10.00")}

	entry, err := env.svc.PostStockAdjustment(context.Background(), adj, true)
	require.NoError(t, err)
	require.Nil(t, entry)
}

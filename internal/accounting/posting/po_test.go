package posting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianfm/meridian-erp/internal/procurement"
)

func purchaseOrder(currency string) *procurement.PurchaseOrder {
	return &procurement.PurchaseOrder{
		ID: 9, CompanyID: 1, Number: "PO-2026-000009",
		VendorID: ptr(55), WarehouseID: ptr(2), SiteID: ptr(3),
		Currency:  currency,
		Subtotal:  dec("500.00"),
		TaxAmount: dec("25.00"),
	}
}

func TestPostPOReceiving(t *testing.T) {
	env := newTestEnv(t, withBusinessUnits(&fakeBURepo{
		warehouses: map[int64]int64{2: 302},
	}))
	po := purchaseOrder("USD")
	line := &procurement.POLine{ID: 91, Description: "Filters", UnitPrice: dec("40.00")}

	entry, err := env.svc.PostPOReceiving(context.Background(), po, line, dec("10"), true)
	require.NoError(t, err)
	requireBalanced(t, entry)

	require.Len(t, entry.Lines, 3)
	require.Equal(t, acctInventory, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(dec("400.00")))
	require.Equal(t, ptr(302), entry.Lines[0].BusinessUnitID)
	// Tax at the header ratio: 400 * 25/500.
	require.Equal(t, acctVATInput, entry.Lines[1].AccountID)
	require.True(t, entry.Lines[1].Debit.Equal(dec("20.00")))
	require.Equal(t, acctAP, entry.Lines[2].AccountID)
	require.True(t, entry.Lines[2].Credit.Equal(dec("420.00")))
}

func TestPostPOReceivingConvertsCurrency(t *testing.T) {
	env := newTestEnv(t, withRate("EUR/USD", dec("1.10")))
	po := purchaseOrder("EUR")
	line := &procurement.POLine{ID: 91, Description: "Filters", UnitPrice: dec("40.00")}

	entry, err := env.svc.PostPOReceiving(context.Background(), po, line, dec("10"), true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.True(t, entry.Lines[0].Debit.Equal(dec("440.00")))
	require.True(t, entry.Lines[1].Debit.Equal(dec("22.00")))
	require.True(t, entry.Lines[2].Credit.Equal(dec("462.00")))
}

func TestPostPOReceivingRoundingResidualPostsExchangeDifference(t *testing.T) {
	env := newTestEnv(t, withRate("EUR/USD", dec("1.5")))
	po := purchaseOrder("EUR")
	po.Subtotal = dec("6.97")
	po.TaxAmount = dec("3.63")
	line := &procurement.POLine{ID: 91, Description: "Gasket", UnitPrice: dec("6.97")}

	entry, err := env.svc.PostPOReceiving(context.Background(), po, line, dec("1"), true)
	require.NoError(t, err)
	requireBalanced(t, entry)

	// 6.97*1.5 rounds to 10.46 and 3.63*1.5 to 5.45, but the gross
	// 10.60*1.5 is exactly 15.90: one cent lands on exchange difference.
	require.Len(t, entry.Lines, 4)
	require.True(t, entry.Lines[0].Debit.Equal(dec("10.46")))
	require.True(t, entry.Lines[1].Debit.Equal(dec("5.45")))
	require.Equal(t, acctFXDiff, entry.Lines[2].AccountID)
	require.True(t, entry.Lines[2].Credit.Equal(dec("0.01")))
	require.True(t, entry.Lines[3].Credit.Equal(dec("15.90")))
}

func TestPostPOReceivingMissingRateFallsBackToParity(t *testing.T) {
	env := newTestEnv(t)
	po := purchaseOrder("AED")
	line := &procurement.POLine{ID: 91, Description: "Filters", UnitPrice: dec("40.00")}

	entry, err := env.svc.PostPOReceiving(context.Background(), po, line, dec("10"), true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.True(t, entry.Lines[0].Debit.Equal(dec("400.00")))
}

func TestPostPOReceivingZeroQuantity(t *testing.T) {
	env := newTestEnv(t)
	po := purchaseOrder("USD")
	line := &procurement.POLine{ID: 91, UnitPrice: dec("40.00")}

	entry, err := env.svc.PostPOReceiving(context.Background(), po, line, dec("0"), true)
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Empty(t, env.store.tx.entries)
}

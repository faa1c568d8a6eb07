package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridianfm/meridian-erp/internal/accounting/coa"
	"github.com/meridianfm/meridian-erp/internal/accounting/fx"
	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/accounting/periods"
	"github.com/meridianfm/meridian-erp/internal/costcenter"
	"github.com/meridianfm/meridian-erp/internal/inventory"
	"github.com/meridianfm/meridian-erp/internal/pettycash"
)

// Account IDs used across the posting tests.
const (
	acctCash         = int64(100)
	acctPettyCash    = int64(120)
	acctAR           = int64(130)
	acctInventory    = int64(140)
	acctVATInput     = int64(160)
	acctAP           = int64(210)
	acctLaborPayable = int64(215)
	acctVATOutput    = int64(220)
	acctFreight      = int64(230)
	acctDuty         = int64(235)
	acctRevenue      = int64(400)
	acctExpense      = int64(500)
	acctCOGSLabor    = int64(510)
	acctCOGSParts    = int64(515)
	acctLaborCost    = int64(520)
	acctPartsCost    = int64(525)
	acctAdjustment   = int64(530)
	acctFXDiff       = int64(540)
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(v int64) *int64 { return &v }

type testEnv struct {
	store   *fakeStore
	periods *fakePeriods
	parts   *fakePartsLedger
	rates   *fakeRateRepo
	svc     *Service
}

func defaultMappings() []mappings.AccountMapping {
	return []mappings.AccountMapping{
		{TransactionType: mappings.TypeInvoiceExpense, DebitAccountID: acctExpense, CreditAccountID: acctAP},
		{TransactionType: mappings.TypeInvoiceVAT, DebitAccountID: acctVATInput, CreditAccountID: acctAP},
		{TransactionType: mappings.TypeWorkOrderLabor, DebitAccountID: acctLaborCost, CreditAccountID: acctLaborPayable},
		{TransactionType: mappings.TypeWorkOrderParts, DebitAccountID: acctPartsCost, CreditAccountID: acctInventory},
		{TransactionType: mappings.TypeWorkOrderRevenue, DebitAccountID: acctAR, CreditAccountID: acctRevenue},
		{TransactionType: mappings.TypeWorkOrderVATOutput, DebitAccountID: acctVATInput, CreditAccountID: acctVATOutput},
		{TransactionType: mappings.TypeWorkOrderCOGSLabor, DebitAccountID: acctCOGSLabor, CreditAccountID: acctLaborPayable},
		{TransactionType: mappings.TypeWorkOrderCOGSParts, DebitAccountID: acctCOGSParts, CreditAccountID: acctInventory},
		{TransactionType: mappings.TypePettyCashExpense, DebitAccountID: acctExpense, CreditAccountID: acctPettyCash},
		{TransactionType: mappings.TypePettyCashReplenishment, DebitAccountID: acctPettyCash, CreditAccountID: acctCash},
		{TransactionType: mappings.TypePOReceiving, DebitAccountID: acctInventory, CreditAccountID: acctAP},
		{TransactionType: mappings.TypePOReceivingVAT, DebitAccountID: acctVATInput, CreditAccountID: acctAP},
		{TransactionType: mappings.TypeStockAdjustment, DebitAccountID: acctInventory, CreditAccountID: acctAdjustment},
		{TransactionType: mappings.TypeGoodsReceipt, DebitAccountID: acctInventory, CreditAccountID: acctAP},
		{TransactionType: mappings.TypeGoodsReceiptVAT, DebitAccountID: acctVATInput, CreditAccountID: acctAP},
		{TransactionType: mappings.TypeGRNExtraCost, Category: "freight", DebitAccountID: acctInventory, CreditAccountID: acctFreight},
		{TransactionType: mappings.TypeGRNExtraCost, Category: "duty", DebitAccountID: acctInventory, CreditAccountID: acctDuty},
		{TransactionType: mappings.TypeExchangeDifference, DebitAccountID: acctFXDiff, CreditAccountID: acctFXDiff},
	}
}

type envOption func(*envConfig)

type envConfig struct {
	mappings []mappings.AccountMapping
	period   *periods.FiscalPeriod
	rates    map[string]decimal.Decimal
	buRepo   *fakeBURepo
	currency string
}

func withMappings(m []mappings.AccountMapping) envOption {
	return func(c *envConfig) { c.mappings = m }
}

func withoutPeriod() envOption {
	return func(c *envConfig) { c.period = nil }
}

func withRate(pair string, rate decimal.Decimal) envOption {
	return func(c *envConfig) { c.rates[pair] = rate }
}

func withBusinessUnits(repo *fakeBURepo) envOption {
	return func(c *envConfig) { c.buRepo = repo }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := &envConfig{
		mappings: defaultMappings(),
		period: &periods.FiscalPeriod{
			ID:        7,
			CompanyID: 1,
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Status:    periods.PeriodStatusOpen,
		},
		rates:    make(map[string]decimal.Decimal),
		buRepo:   &fakeBURepo{},
		currency: "USD",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := newFakeStore()
	store.tx.normals[acctAP] = coa.NormalBalanceCredit
	store.tx.normals[acctRevenue] = coa.NormalBalanceCredit
	store.tx.normals[acctVATOutput] = coa.NormalBalanceCredit
	store.tx.normals[acctLaborPayable] = coa.NormalBalanceCredit

	pf := &fakePeriods{period: cfg.period}
	parts := &fakePartsLedger{entries: make(map[int64][]inventory.LedgerEntry)}
	rateRepo := &fakeRateRepo{rates: cfg.rates}

	svc := NewService(Deps{
		Store:            store,
		Periods:          pf,
		PartsLedger:      parts,
		Mappings:         mappings.NewResolver(&fakeMappingRepo{mappings: cfg.mappings}, 1),
		CostCenters:      costcenter.NewResolver(cfg.buRepo, 1),
		Rates:            fx.NewResolver(rateRepo, nil),
		Company:          coa.Company{ID: 1, Name: "Meridian FM", PrimaryCurrency: cfg.currency},
		FallbackCurrency: "USD",
		UserID:           99,
	})
	svc.WithNow(func() time.Time { return testNow })

	return &testEnv{store: store, periods: pf, parts: parts, rates: rateRepo, svc: svc}
}

func requireBalanced(t *testing.T, entry *journals.JournalEntry) {
	t.Helper()
	require.NotNil(t, entry)
	require.True(t, entry.Balanced(), "entry %s: debit %s credit %s",
		entry.EntryNumber, entry.TotalDebit.String(), entry.TotalCredit.String())
}

func TestPostPettyCashTransaction(t *testing.T) {
	env := newTestEnv(t)
	txnDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	txn := &pettycash.Transaction{
		ID: 5, CompanyID: 1, Number: "PC-000005",
		Status: pettycash.TransactionStatusApproved,
		Category: "fuel", Amount: dec("85.00"), Description: "Generator fuel",
		TransactionDate: &txnDate, WorkOrderID: ptr(42), WorkOrderSiteID: ptr(3),
	}

	entry, err := env.svc.PostPettyCashTransaction(context.Background(), txn, true)
	require.NoError(t, err)
	requireBalanced(t, entry)

	require.Equal(t, "JE-2026-000001", entry.EntryNumber)
	require.Equal(t, journals.EntryStatusPosted, entry.Status)
	require.Equal(t, journals.SourcePettyCash, entry.SourceType)
	require.Equal(t, txnDate, entry.EntryDate)
	require.Equal(t, int64(7), *entry.FiscalPeriodID)

	require.Len(t, entry.Lines, 2)
	require.Equal(t, acctExpense, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(dec("85.00")))
	require.Equal(t, ptr(42), entry.Lines[0].WorkOrderID)
	require.Equal(t, acctPettyCash, entry.Lines[1].AccountID)
	require.True(t, entry.Lines[1].Credit.Equal(dec("85.00")))

	require.True(t, env.store.tx.posted[entry.ID])
	require.NotEmpty(t, env.store.tx.balances)
}

func TestPostPettyCashTransactionCategoryFallback(t *testing.T) {
	env := newTestEnv(t)
	txn := &pettycash.Transaction{
		ID: 6, CompanyID: 1, Number: "PC-000006",
		Status: pettycash.TransactionStatusApproved,
		Category: "uncategorized", Amount: dec("10.00"),
	}

	entry, err := env.svc.PostPettyCashTransaction(context.Background(), txn, true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, acctExpense, entry.Lines[0].AccountID)
}

func TestPostPettyCashTransactionRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	txn := &pettycash.Transaction{
		ID: 7, Status: pettycash.TransactionStatusPending, Amount: dec("10.00"),
	}

	entry, err := env.svc.PostPettyCashTransaction(context.Background(), txn, true)
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Empty(t, env.store.tx.entries)
}

func TestPostPettyCashReplenishment(t *testing.T) {
	env := newTestEnv(t)
	rep := &pettycash.Replenishment{
		ID: 3, CompanyID: 1, Number: "PCR-000003",
		Amount: dec("500.00"), Method: "bank_transfer", ReferenceNumber: "TRF-9912",
	}

	entry, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, journals.SourcePettyCashReplenish, entry.SourceType)
	require.Equal(t, acctPettyCash, entry.Lines[0].AccountID)
	require.Equal(t, acctCash, entry.Lines[1].AccountID)
	require.Equal(t, "TRF-9912", entry.Reference)
}

func TestEntryNumbersAreSequential(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 3; i++ {
		rep := &pettycash.Replenishment{ID: int64(i), Number: "PCR", Amount: dec("10.00")}
		entry, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, false)
		require.NoError(t, err)
		require.NotNil(t, entry)
	}
	require.Equal(t, "JE-2026-000003", env.store.tx.entries[2].EntryNumber)
}

func TestEntryNumberCollisionRetriesOnce(t *testing.T) {
	env := newTestEnv(t)
	env.store.tx.failInserts = 1

	rep := &pettycash.Replenishment{ID: 1, Number: "PCR", Amount: dec("10.00")}
	entry, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, false)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, 2, env.store.txCalls)
}

func TestEntryNumberCollisionFailsAfterRetry(t *testing.T) {
	env := newTestEnv(t)
	env.store.tx.failInserts = 2

	rep := &pettycash.Replenishment{ID: 1, Number: "PCR", Amount: dec("10.00")}
	_, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, false)
	require.Error(t, err)
	require.Equal(t, 2, env.store.txCalls)
}

func TestEntryWithoutOpenPeriodSkipsBalances(t *testing.T) {
	env := newTestEnv(t, withoutPeriod())

	rep := &pettycash.Replenishment{ID: 1, Number: "PCR", Amount: dec("10.00")}
	entry, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, true)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Nil(t, entry.FiscalPeriodID)
	require.Equal(t, journals.EntryStatusPosted, entry.Status)
	require.Empty(t, env.store.tx.balances)
}

func TestPeriodLookupFailureAbortsPosting(t *testing.T) {
	env := newTestEnv(t)
	env.periods.err = errors.New("connection refused")

	rep := &pettycash.Replenishment{ID: 1, Number: "PCR", Amount: dec("10.00")}
	entry, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, true)
	require.Error(t, err)
	require.Nil(t, entry)
	require.Empty(t, env.store.tx.entries)
	require.Empty(t, env.store.tx.balances)
}

func TestDraftEntriesDoNotTouchBalances(t *testing.T) {
	env := newTestEnv(t)

	rep := &pettycash.Replenishment{ID: 1, Number: "PCR", Amount: dec("10.00")}
	entry, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, false)
	require.NoError(t, err)
	require.Equal(t, journals.EntryStatusDraft, entry.Status)
	require.Empty(t, env.store.tx.posted)
	require.Empty(t, env.store.tx.balances)
}

func TestPostedEntryUpdatesBalances(t *testing.T) {
	env := newTestEnv(t)

	rep := &pettycash.Replenishment{ID: 1, Number: "PCR", Amount: dec("500.00")}
	_, err := env.svc.PostPettyCashReplenishment(context.Background(), rep, true)
	require.NoError(t, err)

	fund, ok, err := env.store.tx.GetBalance(context.Background(), journals.BalanceKey{
		CompanyID: 1, AccountID: acctPettyCash, FiscalPeriodID: 7,
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, fund.PeriodDebit.Equal(dec("500.00")))
	require.True(t, fund.ClosingBalance.Equal(dec("500.00")))

	cash, ok, err := env.store.tx.GetBalance(context.Background(), journals.BalanceKey{
		CompanyID: 1, AccountID: acctCash, FiscalPeriodID: 7,
	})
	require.NoError(t, err)
	require.True(t, ok)
	// Cash is a debit-normal account, so a credit reduces it.
	require.True(t, cash.ClosingBalance.Equal(dec("-500.00")))
}

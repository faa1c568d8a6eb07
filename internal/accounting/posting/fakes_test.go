package posting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfm/meridian-erp/internal/accounting/coa"
	"github.com/meridianfm/meridian-erp/internal/accounting/fx"
	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/accounting/periods"
	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
	"github.com/meridianfm/meridian-erp/internal/costcenter"
	"github.com/meridianfm/meridian-erp/internal/fieldservice"
	"github.com/meridianfm/meridian-erp/internal/inventory"
	"github.com/meridianfm/meridian-erp/internal/procurement"
)

// fakeStore keeps everything a posting writes in memory, mimicking the
// uniqueness and status rules the database enforces.
type fakeStore struct {
	tx      *fakeTx
	txCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tx: &fakeTx{
		normals:  make(map[int64]coa.NormalBalance),
		balances: make(map[string]journals.AccountBalance),
	}}
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	s.txCalls++
	return fn(ctx, s.tx)
}

type fakeTx struct {
	normals  map[int64]coa.NormalBalance
	balances map[string]journals.AccountBalance
	entries  []*journals.JournalEntry
	lines    map[int64][]journals.JournalEntryLine
	posted   map[int64]bool
	updated  []*fieldservice.WorkOrder
	stamped  []*procurement.GoodsReceipt
	nextID   int64

	failInserts int
}

func (t *fakeTx) LastEntryNumber(_ context.Context, companyID int64, prefix string) (string, error) {
	last := ""
	for _, e := range t.entries {
		if e.CompanyID == companyID && strings.HasPrefix(e.EntryNumber, prefix) && e.EntryNumber > last {
			last = e.EntryNumber
		}
	}
	return last, nil
}

func (t *fakeTx) InsertEntry(_ context.Context, entry *journals.JournalEntry) error {
	if t.failInserts > 0 {
		t.failInserts--
		return shared.ErrDuplicateEntryNumber
	}
	for _, e := range t.entries {
		if e.CompanyID == entry.CompanyID && e.EntryNumber == entry.EntryNumber {
			return shared.ErrDuplicateEntryNumber
		}
	}
	t.nextID++
	entry.ID = t.nextID
	copied := *entry
	t.entries = append(t.entries, &copied)
	return nil
}

func (t *fakeTx) InsertLines(_ context.Context, entryID int64, lines []journals.JournalEntryLine) error {
	if t.lines == nil {
		t.lines = make(map[int64][]journals.JournalEntryLine)
	}
	t.lines[entryID] = append([]journals.JournalEntryLine(nil), lines...)
	return nil
}

func (t *fakeTx) MarkPosted(_ context.Context, entryID, _ int64, _ time.Time) error {
	if t.posted == nil {
		t.posted = make(map[int64]bool)
	}
	if t.posted[entryID] {
		return shared.ErrInvalidStatus
	}
	t.posted[entryID] = true
	return nil
}

func (t *fakeTx) AccountNormalBalance(_ context.Context, _, accountID int64) (coa.NormalBalance, error) {
	if n, ok := t.normals[accountID]; ok {
		return n, nil
	}
	return coa.NormalBalanceDebit, nil
}

func balanceKey(k journals.BalanceKey) string {
	site, bu := int64(0), int64(0)
	if k.SiteID != nil {
		site = *k.SiteID
	}
	if k.BusinessUnitID != nil {
		bu = *k.BusinessUnitID
	}
	return fmt.Sprintf("%d/%d/%d/%d/%d", k.CompanyID, k.AccountID, k.FiscalPeriodID, site, bu)
}

func (t *fakeTx) GetBalance(_ context.Context, key journals.BalanceKey) (journals.AccountBalance, bool, error) {
	b, ok := t.balances[balanceKey(key)]
	return b, ok, nil
}

func (t *fakeTx) UpsertBalance(_ context.Context, b journals.AccountBalance) error {
	t.balances[balanceKey(journals.BalanceKey{
		CompanyID:      b.CompanyID,
		AccountID:      b.AccountID,
		FiscalPeriodID: b.FiscalPeriodID,
		SiteID:         b.SiteID,
		BusinessUnitID: b.BusinessUnitID,
	})] = b
	return nil
}

func (t *fakeTx) UpdateWorkOrderBilling(_ context.Context, wo *fieldservice.WorkOrder) error {
	t.updated = append(t.updated, wo)
	return nil
}

func (t *fakeTx) StampGoodsReceiptPosted(_ context.Context, grn *procurement.GoodsReceipt) error {
	copied := *grn
	t.stamped = append(t.stamped, &copied)
	return nil
}

type fakePeriods struct {
	period *periods.FiscalPeriod
	err    error
}

func (f *fakePeriods) FindForDate(_ context.Context, _ int64, date time.Time) (periods.FiscalPeriod, error) {
	if f.err != nil {
		return periods.FiscalPeriod{}, f.err
	}
	if f.period == nil || !f.period.Contains(date) {
		return periods.FiscalPeriod{}, shared.ErrPeriodNotFound
	}
	return *f.period, nil
}

type fakePartsLedger struct {
	entries map[int64][]inventory.LedgerEntry
}

func (f *fakePartsLedger) ListForWorkOrder(_ context.Context, _, workOrderID int64) ([]inventory.LedgerEntry, error) {
	return f.entries[workOrderID], nil
}

type fakeMappingRepo struct {
	mappings []mappings.AccountMapping
}

func (f *fakeMappingRepo) ListActive(_ context.Context, _ int64) ([]mappings.AccountMapping, error) {
	return f.mappings, nil
}

type fakeBURepo struct {
	sites      map[int64]int64
	contracts  map[int64]int64
	warehouses map[int64]int64
	defaults   map[costcenter.BUType]int64
}

func (f *fakeBURepo) SiteBusinessUnit(_ context.Context, _, siteID int64) (int64, bool, error) {
	id, ok := f.sites[siteID]
	return id, ok, nil
}

func (f *fakeBURepo) AddressBookBusinessUnit(_ context.Context, _, _ int64) (int64, bool, error) {
	return 0, false, nil
}

func (f *fakeBURepo) ContractBusinessUnit(_ context.Context, _, contractID int64) (int64, bool, error) {
	id, ok := f.contracts[contractID]
	return id, ok, nil
}

func (f *fakeBURepo) WarehouseBusinessUnit(_ context.Context, _, warehouseID int64) (int64, bool, error) {
	id, ok := f.warehouses[warehouseID]
	return id, ok, nil
}

func (f *fakeBURepo) DefaultBusinessUnit(_ context.Context, _ int64, buType costcenter.BUType) (int64, bool, error) {
	id, ok := f.defaults[buType]
	return id, ok, nil
}

type fakeRateRepo struct {
	rates map[string]decimal.Decimal
}

func (f *fakeRateRepo) GetRate(_ context.Context, _ int64, from, to string) (fx.ExchangeRate, error) {
	rate, ok := f.rates[from+"/"+to]
	if !ok {
		return fx.ExchangeRate{}, shared.ErrRateNotFound
	}
	return fx.ExchangeRate{FromCurrency: from, ToCurrency: to, Rate: rate}, nil
}

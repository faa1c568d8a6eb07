package journals

import (
	"context"
	"fmt"

	"github.com/meridianfm/meridian-erp/internal/accounting/coa"
)

// BalanceTx is the slice of transactional storage the balance updater
// needs. It is implemented by the posting repository so balance updates
// share the posting transaction.
type BalanceTx interface {
	AccountNormalBalance(ctx context.Context, companyID, accountID int64) (coa.NormalBalance, error)
	// GetBalance returns the balance row for key, with found=false when
	// no row exists yet.
	GetBalance(ctx context.Context, key BalanceKey) (AccountBalance, bool, error)
	UpsertBalance(ctx context.Context, balance AccountBalance) error
}

// BalanceUpdater maintains per-account, per-period running balances.
// It must run exactly once per posted entry; re-running would
// double-count period movement.
type BalanceUpdater struct{}

func NewBalanceUpdater() *BalanceUpdater {
	return &BalanceUpdater{}
}

// Apply accumulates every line of a posted entry into its
// (account, period, site, business unit) balance row, creating rows
// lazily with zero opening balance. Entries without a fiscal period are
// skipped entirely.
func (u *BalanceUpdater) Apply(ctx context.Context, tx BalanceTx, entry *JournalEntry) error {
	if entry.FiscalPeriodID == nil {
		return nil
	}
	periodID := *entry.FiscalPeriodID

	for _, line := range entry.Lines {
		key := BalanceKey{
			CompanyID:      entry.CompanyID,
			AccountID:      line.AccountID,
			FiscalPeriodID: periodID,
			SiteID:         line.SiteID,
			BusinessUnitID: line.BusinessUnitID,
		}
		balance, found, err := tx.GetBalance(ctx, key)
		if err != nil {
			return fmt.Errorf("journals: load balance for account %d: %w", line.AccountID, err)
		}
		if !found {
			balance = AccountBalance{
				CompanyID:      key.CompanyID,
				AccountID:      key.AccountID,
				FiscalPeriodID: key.FiscalPeriodID,
				SiteID:         key.SiteID,
				BusinessUnitID: key.BusinessUnitID,
			}
		}

		balance.PeriodDebit = balance.PeriodDebit.Add(line.Debit)
		balance.PeriodCredit = balance.PeriodCredit.Add(line.Credit)

		normal, err := tx.AccountNormalBalance(ctx, entry.CompanyID, line.AccountID)
		if err != nil {
			return fmt.Errorf("journals: normal balance for account %d: %w", line.AccountID, err)
		}
		if normal == coa.NormalBalanceDebit {
			balance.ClosingBalance = balance.OpeningBalance.Add(balance.PeriodDebit).Sub(balance.PeriodCredit)
		} else {
			balance.ClosingBalance = balance.OpeningBalance.Add(balance.PeriodCredit).Sub(balance.PeriodDebit)
		}

		if err := tx.UpsertBalance(ctx, balance); err != nil {
			return fmt.Errorf("journals: upsert balance for account %d: %w", line.AccountID, err)
		}
	}
	return nil
}

// Package posting turns business events into balanced general-ledger
// journal entries. One Service is constructed per request/transaction
// scope; its mapping and warehouse caches live and die with it.
package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridianfm/meridian-erp/internal/accounting/coa"
	"github.com/meridianfm/meridian-erp/internal/accounting/fx"
	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
	"github.com/meridianfm/meridian-erp/internal/costcenter"
)

// Service orchestrates journal creation for every source-event type.
type Service struct {
	store       Store
	periods     PeriodFinder
	partsLedger PartsLedger
	mappings    *mappings.Resolver
	costCenters *costcenter.Resolver
	rates       *fx.Resolver
	balances    *journals.BalanceUpdater

	company coa.Company
	// fallbackCurrency is used when the company has no primary
	// currency configured.
	fallbackCurrency string
	userID           int64
	logger           *slog.Logger
	now              func() time.Time
}

// Deps groups the service's collaborators.
type Deps struct {
	Store            Store
	Periods          PeriodFinder
	PartsLedger      PartsLedger
	Mappings         *mappings.Resolver
	CostCenters      *costcenter.Resolver
	Rates            *fx.Resolver
	Company          coa.Company
	FallbackCurrency string
	UserID           int64
	Logger           *slog.Logger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fallback := d.FallbackCurrency
	if fallback == "" {
		fallback = "USD"
	}
	return &Service{
		store:            d.Store,
		periods:          d.Periods,
		partsLedger:      d.PartsLedger,
		mappings:         d.Mappings,
		costCenters:      d.CostCenters,
		rates:            d.Rates,
		balances:         journals.NewBalanceUpdater(),
		company:          d.Company,
		fallbackCurrency: fallback,
		userID:           d.UserID,
		logger:           logger,
		now:              time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) baseCurrency() string {
	return s.company.BaseCurrency(s.fallbackCurrency)
}

// newEntry builds a draft header with its fiscal period resolved. A
// date outside every open period leaves the period unset; the entry is
// still created, but balance updates will be skipped. Any other lookup
// failure aborts the posting.
func (s *Service) newEntry(ctx context.Context, entryDate time.Time) (journals.JournalEntry, error) {
	entry := journals.JournalEntry{
		CompanyID:       s.company.ID,
		EntryDate:       entryDate,
		Status:          journals.EntryStatusDraft,
		IsAutoGenerated: true,
		CreatedBy:       s.userID,
	}
	period, err := s.periods.FindForDate(ctx, s.company.ID, entryDate)
	switch {
	case err == nil:
		entry.FiscalPeriodID = &period.ID
	case errors.Is(err, shared.ErrPeriodNotFound):
		s.logger.Warn("no open fiscal period for entry date, balances will not update",
			slog.Int64("company_id", s.company.ID),
			slog.Time("entry_date", entryDate))
	default:
		return journals.JournalEntry{}, fmt.Errorf("resolve fiscal period: %w", err)
	}
	return entry, nil
}

// finalize validates, numbers and persists the entry inside tx, and
// when post is set marks it posted and applies balance updates. The
// caller's transaction makes the whole sequence atomic.
func (s *Service) finalize(ctx context.Context, tx Tx, entry *journals.JournalEntry, post bool) error {
	for i := range entry.Lines {
		entry.Lines[i].LineNumber = i + 1
	}
	entry.ComputeTotals()
	if len(entry.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	if !entry.Balanced() {
		return shared.ErrUnbalanced
	}

	year := s.now().Year()
	prefix := journals.EntryNumberPrefix(year)
	last, err := tx.LastEntryNumber(ctx, s.company.ID, prefix)
	if err != nil {
		return err
	}
	entry.EntryNumber = journals.NextEntryNumber(year, last)
	if err := tx.InsertEntry(ctx, entry); err != nil {
		return err
	}

	for i := range entry.Lines {
		entry.Lines[i].JournalEntryID = entry.ID
	}
	if err := tx.InsertLines(ctx, entry.ID, entry.Lines); err != nil {
		return err
	}

	if post {
		postedAt := s.now().UTC()
		if err := tx.MarkPosted(ctx, entry.ID, s.userID, postedAt); err != nil {
			return err
		}
		entry.Status = journals.EntryStatusPosted
		entry.PostedBy = &s.userID
		entry.PostedAt = &postedAt
		if err := s.balances.Apply(ctx, tx, entry); err != nil {
			return err
		}
	}
	return nil
}

// run executes a posting closure transactionally, retrying once when a
// concurrent posting wins the same entry number. A second collision
// fails loudly; numbers are never silently reused.
func (s *Service) run(ctx context.Context, fn func(context.Context, Tx) error) error {
	err := s.store.WithTx(ctx, fn)
	if errors.Is(err, shared.ErrDuplicateEntryNumber) {
		s.logger.Warn("entry number collision, retrying posting",
			slog.Int64("company_id", s.company.ID))
		return s.store.WithTx(ctx, fn)
	}
	return err
}

// resolveMapping wraps the resolver with the operation contract: a
// missing mapping aborts the posting with a warning, never a guess.
func (s *Service) resolveMapping(ctx context.Context, txType, category string) (mappings.AccountMapping, bool, error) {
	m, ok, err := s.mappings.Resolve(ctx, txType, category)
	if err != nil {
		return mappings.AccountMapping{}, false, err
	}
	if !ok {
		s.logger.Warn("cannot post: missing account mapping",
			slog.String("transaction_type", txType),
			slog.String("category", category))
	}
	return m, ok, nil
}

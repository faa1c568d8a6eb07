package posting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/pettycash"
)

// PostPettyCashTransaction expenses an approved petty-cash spend
// against the fund. Category-specific expense mappings win over the
// generic petty-cash mapping.
func (s *Service) PostPettyCashTransaction(ctx context.Context, txn *pettycash.Transaction, postImmediately bool) (*journals.JournalEntry, error) {
	if txn.Status != pettycash.TransactionStatusApproved {
		s.logger.Warn("petty cash transaction not approved, skipping",
			slog.Int64("transaction_id", txn.ID),
			slog.String("status", string(txn.Status)))
		return nil, nil
	}
	if !txn.Amount.IsPositive() {
		s.logger.Info("petty cash transaction has no amount", slog.Int64("transaction_id", txn.ID))
		return nil, nil
	}

	mapping, ok, err := s.resolveMapping(ctx, mappings.TypePettyCashExpense, txn.Category)
	if err != nil || !ok {
		return nil, err
	}

	entryDate := s.now()
	if txn.TransactionDate != nil {
		entryDate = *txn.TransactionDate
	}

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = fmt.Sprintf("Petty cash - %s", txn.Description)
		e.Reference = txn.Number
		e.SourceType = journals.SourcePettyCash
		e.SourceID = txn.ID
		e.SourceNumber = txn.Number

		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:   mapping.DebitAccountID,
			Debit:       txn.Amount,
			Description: fmt.Sprintf("Petty cash expense - %s", txn.Category),
			SiteID:      txn.WorkOrderSiteID,
			ContractID:  txn.ContractID,
			WorkOrderID: txn.WorkOrderID,
		}, journals.JournalEntryLine{
			AccountID:   mapping.CreditAccountID,
			Credit:      txn.Amount,
			Description: "Petty cash fund",
		})

		if err := s.finalize(ctx, tx, &e, postImmediately); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created petty cash entry",
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("transaction_id", txn.ID))
	return entry, nil
}

// PostPettyCashReplenishment restores the fund from cash or bank.
func (s *Service) PostPettyCashReplenishment(ctx context.Context, rep *pettycash.Replenishment, postImmediately bool) (*journals.JournalEntry, error) {
	if !rep.Amount.IsPositive() {
		s.logger.Info("petty cash replenishment has no amount", slog.Int64("replenishment_id", rep.ID))
		return nil, nil
	}

	mapping, ok, err := s.resolveMapping(ctx, mappings.TypePettyCashReplenishment, "")
	if err != nil || !ok {
		return nil, err
	}

	entryDate := s.now()
	if rep.ReplenishmentDate != nil {
		entryDate = *rep.ReplenishmentDate
	}

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = fmt.Sprintf("Petty cash replenishment - %s", rep.Number)
		e.Reference = rep.ReferenceNumber
		e.SourceType = journals.SourcePettyCashReplenish
		e.SourceID = rep.ID
		e.SourceNumber = rep.Number

		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:   mapping.DebitAccountID,
			Debit:       rep.Amount,
			Description: "Petty cash fund",
		}, journals.JournalEntryLine{
			AccountID:   mapping.CreditAccountID,
			Credit:      rep.Amount,
			Description: fmt.Sprintf("Replenishment via %s", rep.Method),
		})

		if err := s.finalize(ctx, tx, &e, postImmediately); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created petty cash replenishment entry",
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("replenishment_id", rep.ID))
	return entry, nil
}

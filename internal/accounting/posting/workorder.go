package posting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/costcenter"
	"github.com/meridianfm/meridian-erp/internal/fieldservice"
	"github.com/meridianfm/meridian-erp/internal/inventory"
)

// PostWorkOrderCompletion recognizes the labor and parts cost of a
// completed work order. Orders with zero total cost produce no entry.
func (s *Service) PostWorkOrderCompletion(ctx context.Context, wo *fieldservice.WorkOrder, postImmediately bool) (*journals.JournalEntry, error) {
	if wo.Status != fieldservice.WOStatusCompleted {
		s.logger.Warn("work order not completed, skipping cost posting",
			slog.Int64("work_order_id", wo.ID),
			slog.String("status", string(wo.Status)))
		return nil, nil
	}

	laborCost := wo.LaborCost()
	partsEntries, err := s.partsLedger.ListForWorkOrder(ctx, s.company.ID, wo.ID)
	if err != nil {
		return nil, err
	}
	partsCost := inventory.WorkOrderPartsCost(partsEntries)

	if laborCost.IsZero() && partsCost.IsZero() {
		s.logger.Info("work order has no cost to recognize", slog.Int64("work_order_id", wo.ID))
		return nil, nil
	}

	buID, err := s.costCenters.Resolve(ctx, costcenter.ResolveInput{
		SiteID:              wo.SiteID,
		ClientAddressBookID: wo.ClientAddressBookID,
		ContractID:          wo.ContractID,
		Type:                costcenter.BUTypeProfitLoss,
	})
	if err != nil {
		return nil, err
	}

	var laborMapping, partsMapping mappings.AccountMapping
	if laborCost.IsPositive() {
		var ok bool
		laborMapping, ok, err = s.resolveMapping(ctx, mappings.TypeWorkOrderLabor, "")
		if err != nil || !ok {
			return nil, err
		}
	}
	if partsCost.IsPositive() {
		var ok bool
		partsMapping, ok, err = s.resolveMapping(ctx, mappings.TypeWorkOrderParts, "")
		if err != nil || !ok {
			return nil, err
		}
	}

	woID := wo.ID
	entryDate := wo.CostDate(s.now())

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = fmt.Sprintf("Work order cost - %s", wo.Number)
		e.Reference = wo.Number
		e.SourceType = journals.SourceWorkOrder
		e.SourceID = wo.ID
		e.SourceNumber = wo.Number

		if laborCost.IsPositive() {
			e.Lines = append(e.Lines,
				journals.JournalEntryLine{
					AccountID:      laborMapping.DebitAccountID,
					Debit:          laborCost,
					Description:    fmt.Sprintf("Labor cost - %s", wo.Number),
					SiteID:         wo.SiteID,
					BusinessUnitID: buID,
					ContractID:     wo.ContractID,
					ProjectID:      wo.ProjectID,
					WorkOrderID:    &woID,
				},
				journals.JournalEntryLine{
					AccountID:      laborMapping.CreditAccountID,
					Credit:         laborCost,
					Description:    fmt.Sprintf("Accrued labor - %s", wo.Number),
					SiteID:         wo.SiteID,
					BusinessUnitID: buID,
					WorkOrderID:    &woID,
				})
		}
		if partsCost.IsPositive() {
			e.Lines = append(e.Lines,
				journals.JournalEntryLine{
					AccountID:      partsMapping.DebitAccountID,
					Debit:          partsCost,
					Description:    fmt.Sprintf("Parts cost - %s", wo.Number),
					SiteID:         wo.SiteID,
					BusinessUnitID: buID,
					ContractID:     wo.ContractID,
					ProjectID:      wo.ProjectID,
					WorkOrderID:    &woID,
				},
				journals.JournalEntryLine{
					AccountID:      partsMapping.CreditAccountID,
					Credit:         partsCost,
					Description:    fmt.Sprintf("Inventory issued - %s", wo.Number),
					SiteID:         wo.SiteID,
					BusinessUnitID: buID,
					WorkOrderID:    &woID,
				})
		}

		if err := s.finalize(ctx, tx, &e, postImmediately); err != nil {
			return err
		}

		wo.ActualLaborCost = laborCost
		wo.ActualPartsCost = partsCost
		wo.ActualTotalCost = laborCost.Add(partsCost)
		if err := tx.UpdateWorkOrderBilling(ctx, wo); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created work order cost entry",
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("work_order_id", wo.ID))
	return entry, nil
}

// PostWorkOrderBilling bills a billable completed work order: revenue
// with markup and VAT against receivables, plus matching cost of goods
// sold transfers. The work order's actual costs, billable amount and
// billing status are written back in the same transaction.
func (s *Service) PostWorkOrderBilling(ctx context.Context, wo *fieldservice.WorkOrder, postImmediately bool) (*journals.JournalEntry, error) {
	if !wo.IsBillable {
		s.logger.Info("work order not billable, skipping billing entry", slog.Int64("work_order_id", wo.ID))
		return nil, nil
	}
	if wo.Status != fieldservice.WOStatusCompleted {
		s.logger.Warn("work order not completed, skipping billing",
			slog.Int64("work_order_id", wo.ID),
			slog.String("status", string(wo.Status)))
		return nil, nil
	}
	if wo.BillingStatus == fieldservice.BillingStatusBilled {
		s.logger.Info("work order already billed", slog.Int64("work_order_id", wo.ID))
		return nil, nil
	}

	laborCost := wo.LaborCost()
	partsEntries, err := s.partsLedger.ListForWorkOrder(ctx, s.company.ID, wo.ID)
	if err != nil {
		return nil, err
	}
	partsCost := inventory.WorkOrderPartsCost(partsEntries)

	billableAmount := wo.BillableTotal(laborCost, partsCost)
	if !billableAmount.IsPositive() {
		s.logger.Info("work order has nothing billable", slog.Int64("work_order_id", wo.ID))
		return nil, nil
	}

	vat := decimal.Zero
	if wo.VATRatePercent.IsPositive() {
		vat = billableAmount.Mul(wo.VATRatePercent.Div(decimal.NewFromInt(100))).Round(2)
	}
	gross := billableAmount.Add(vat)

	revenueMapping, ok, err := s.resolveMapping(ctx, mappings.TypeWorkOrderRevenue, "")
	if err != nil || !ok {
		return nil, err
	}
	var vatMapping mappings.AccountMapping
	if vat.IsPositive() {
		vatMapping, ok, err = s.mappings.Resolve(ctx, mappings.TypeWorkOrderVATOutput, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Warn("no VAT output mapping, billing net of VAT",
				slog.Int64("work_order_id", wo.ID))
			gross = billableAmount
			vat = decimal.Zero
		}
	}
	var cogsLabor, cogsParts mappings.AccountMapping
	if laborCost.IsPositive() {
		cogsLabor, ok, err = s.resolveMapping(ctx, mappings.TypeWorkOrderCOGSLabor, "")
		if err != nil || !ok {
			return nil, err
		}
	}
	if partsCost.IsPositive() {
		cogsParts, ok, err = s.resolveMapping(ctx, mappings.TypeWorkOrderCOGSParts, "")
		if err != nil || !ok {
			return nil, err
		}
	}

	buID, err := s.costCenters.Resolve(ctx, costcenter.ResolveInput{
		SiteID:              wo.SiteID,
		ClientAddressBookID: wo.ClientAddressBookID,
		ContractID:          wo.ContractID,
		Type:                costcenter.BUTypeProfitLoss,
	})
	if err != nil {
		return nil, err
	}

	woID := wo.ID
	entryDate := wo.CostDate(s.now())

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = fmt.Sprintf("Work order billing - %s", wo.Number)
		e.Reference = wo.Number
		e.SourceType = journals.SourceWorkOrderBilling
		e.SourceID = wo.ID
		e.SourceNumber = wo.Number

		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:      revenueMapping.DebitAccountID,
			Debit:          gross,
			Description:    fmt.Sprintf("Receivable - %s", wo.Number),
			SiteID:         wo.SiteID,
			BusinessUnitID: buID,
			ContractID:     wo.ContractID,
			WorkOrderID:    &woID,
			AddressBookID:  wo.ClientAddressBookID,
		}, journals.JournalEntryLine{
			AccountID:      revenueMapping.CreditAccountID,
			Credit:         billableAmount,
			Description:    fmt.Sprintf("Service revenue - %s", wo.Number),
			SiteID:         wo.SiteID,
			BusinessUnitID: buID,
			ContractID:     wo.ContractID,
			ProjectID:      wo.ProjectID,
			WorkOrderID:    &woID,
		})
		if vat.IsPositive() {
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:      vatMapping.CreditAccountID,
				Credit:         vat,
				Description:    "VAT Output",
				SiteID:         wo.SiteID,
				BusinessUnitID: buID,
				WorkOrderID:    &woID,
			})
		}
		if laborCost.IsPositive() {
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:      cogsLabor.DebitAccountID,
				Debit:          laborCost,
				Description:    fmt.Sprintf("COGS labor - %s", wo.Number),
				SiteID:         wo.SiteID,
				BusinessUnitID: buID,
				WorkOrderID:    &woID,
			}, journals.JournalEntryLine{
				AccountID:      cogsLabor.CreditAccountID,
				Credit:         laborCost,
				Description:    fmt.Sprintf("Labor applied - %s", wo.Number),
				SiteID:         wo.SiteID,
				BusinessUnitID: buID,
				WorkOrderID:    &woID,
			})
		}
		if partsCost.IsPositive() {
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:      cogsParts.DebitAccountID,
				Debit:          partsCost,
				Description:    fmt.Sprintf("COGS parts - %s", wo.Number),
				SiteID:         wo.SiteID,
				BusinessUnitID: buID,
				WorkOrderID:    &woID,
			}, journals.JournalEntryLine{
				AccountID:      cogsParts.CreditAccountID,
				Credit:         partsCost,
				Description:    fmt.Sprintf("Inventory relieved - %s", wo.Number),
				SiteID:         wo.SiteID,
				BusinessUnitID: buID,
				WorkOrderID:    &woID,
			})
		}

		if err := s.finalize(ctx, tx, &e, postImmediately); err != nil {
			return err
		}

		wo.ActualLaborCost = laborCost
		wo.ActualPartsCost = partsCost
		wo.ActualTotalCost = laborCost.Add(partsCost)
		wo.BillableAmount = billableAmount
		wo.BillingStatus = fieldservice.BillingStatusBilled
		if err := tx.UpdateWorkOrderBilling(ctx, wo); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created work order billing entry",
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("work_order_id", wo.ID),
		slog.String("billable_amount", billableAmount.String()))
	return entry, nil
}

package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	jobmetrics "github.com/meridianfm/meridian-erp/internal/jobs"
)

// IntegrityScanner walks posted journal entries looking for ones whose
// stored totals or line sums no longer balance. Findings are reported,
// never repaired; a corrupted entry needs a human.
type IntegrityScanner struct {
	journals journals.Repository
	metrics  *jobmetrics.Metrics
	logger   *slog.Logger
}

func NewIntegrityScanner(repo journals.Repository, metrics *jobmetrics.Metrics, logger *slog.Logger) *IntegrityScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityScanner{journals: repo, metrics: metrics, logger: logger}
}

// Handle processes TaskGLIntegrityScan tasks.
func (s *IntegrityScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GLIntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := s.metrics.Track("gl_integrity")
	return tracker.End(s.Scan(ctx, payload.CompanyID))
}

// Scan checks one company, or every company when companyID is zero.
// Companies scan concurrently; one corrupted company does not hide
// findings in another. Every log line carries the run's scan ID so a
// run's findings can be pulled together afterwards.
func (s *IntegrityScanner) Scan(ctx context.Context, companyID int64) error {
	scanID := uuid.NewString()
	logger := s.logger.With(slog.String("scan_id", scanID))

	companyIDs := []int64{companyID}
	if companyID == 0 {
		var err error
		companyIDs, err = s.journals.ListCompanyIDs(ctx)
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range companyIDs {
		id := id
		g.Go(func() error {
			return s.scanCompany(ctx, logger, id)
		})
	}
	return g.Wait()
}

func (s *IntegrityScanner) scanCompany(ctx context.Context, logger *slog.Logger, companyID int64) error {
	entries, err := s.journals.ListUnbalanced(ctx, companyID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logger.Info("ledger integrity scan clean", slog.Int64("company_id", companyID))
		return nil
	}
	s.metrics.AddUnbalanced(companyID, len(entries))
	for _, e := range entries {
		logger.Error("unbalanced posted journal entry",
			slog.Int64("company_id", companyID),
			slog.Int64("entry_id", e.ID),
			slog.String("entry_number", e.EntryNumber),
			slog.String("total_debit", e.TotalDebit.String()),
			slog.String("total_credit", e.TotalCredit.String()))
	}
	return nil
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridianfm/meridian-erp/internal/jobs"
	"github.com/meridianfm/meridian-erp/internal/procurement"
	"github.com/meridianfm/meridian-erp/internal/shared"
)

// LandedCostWorker recomputes a goods receipt's landed costs in the
// background after extra costs change. The computation is idempotent,
// so redelivery is harmless.
type LandedCostWorker struct {
	procurement *procurement.Service
	metrics     *jobmetrics.Metrics
	logger      *slog.Logger
}

func NewLandedCostWorker(svc *procurement.Service, metrics *jobmetrics.Metrics, logger *slog.Logger) *LandedCostWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LandedCostWorker{procurement: svc, metrics: metrics, logger: logger}
}

// Handle processes TaskLandedCostReallocation tasks.
func (w *LandedCostWorker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LandedCostReallocationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := w.metrics.Track("landed_cost_reallocation")

	grn, err := w.procurement.AllocateExtraCosts(ctx, payload.CompanyID, payload.GRNID)
	if errors.Is(err, shared.ErrNotFound) {
		// The GRN was deleted between enqueue and processing.
		w.logger.Warn("goods receipt gone, dropping reallocation",
			slog.Int64("grn_id", payload.GRNID))
		return tracker.End(nil)
	}
	if err != nil {
		return tracker.End(err)
	}
	w.logger.Info("reallocated landed costs",
		slog.Int64("grn_id", grn.ID),
		slog.String("total_landed_cost", grn.TotalLandedCost.String()))
	return tracker.End(nil)
}

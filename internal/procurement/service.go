package procurement

import (
	"context"
	"log/slog"
)

// Service coordinates landed-cost allocation against storage.
type Service struct {
	repo      Repository
	allocator *Allocator
	logger    *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, allocator: NewAllocator(logger), logger: logger}
}

// AllocateExtraCosts loads the GRN, recomputes its landed costs and
// persists the derived fields. Call after any extra-cost change; the
// computation is idempotent.
func (s *Service) AllocateExtraCosts(ctx context.Context, companyID, grnID int64) (GoodsReceipt, error) {
	grn, err := s.repo.GetGoodsReceipt(ctx, companyID, grnID)
	if err != nil {
		return GoodsReceipt{}, err
	}
	s.allocator.Allocate(&grn)
	if err := s.repo.SaveLandedCosts(ctx, &grn); err != nil {
		return GoodsReceipt{}, err
	}
	return grn, nil
}

// LandedCostSummary loads a GRN and returns its cost breakdown.
func (s *Service) LandedCostSummary(ctx context.Context, companyID, grnID int64) (LandedCostSummary, error) {
	grn, err := s.repo.GetGoodsReceipt(ctx, companyID, grnID)
	if err != nil {
		return LandedCostSummary{}, err
	}
	return Summarize(&grn), nil
}

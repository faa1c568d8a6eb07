package fx

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
)

// Resolver answers currency-pair rate lookups. A missing stored rate
// degrades to 1:1 with a warning; postings are never blocked on rates.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{repo: repo, logger: logger}
}

// Rate returns the conversion rate from one currency to another.
// Same-currency pairs return 1 without a lookup.
func (r *Resolver) Rate(ctx context.Context, companyID int64, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to || from == "" || to == "" {
		return decimal.NewFromInt(1), nil
	}

	stored, err := r.repo.GetRate(ctx, companyID, from, to)
	if err != nil {
		if errors.Is(err, shared.ErrRateNotFound) {
			r.logger.Warn("no exchange rate configured, using 1:1",
				slog.Int64("company_id", companyID),
				slog.String("from", from),
				slog.String("to", to))
			return decimal.NewFromInt(1), nil
		}
		return decimal.Decimal{}, err
	}
	return stored.Rate, nil
}

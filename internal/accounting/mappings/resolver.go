package mappings

import "context"

type cacheKey struct {
	txType   string
	category string
}

// Resolver answers (transaction type, category) lookups with a
// category-specific then generic fallback. It caches the company's
// active mappings on first use, so construct one resolver per posting
// request and discard it afterwards.
type Resolver struct {
	repo      Repository
	companyID int64
	cache     map[cacheKey]AccountMapping
}

func NewResolver(repo Repository, companyID int64) *Resolver {
	return &Resolver{repo: repo, companyID: companyID}
}

func (r *Resolver) load(ctx context.Context) error {
	if r.cache != nil {
		return nil
	}
	list, err := r.repo.ListActive(ctx, r.companyID)
	if err != nil {
		return err
	}
	r.cache = make(map[cacheKey]AccountMapping, len(list))
	for _, m := range list {
		r.cache[cacheKey{m.TransactionType, m.Category}] = m
	}
	return nil
}

// Resolve returns the mapping for the transaction type, preferring the
// category-specific mapping when one exists. The boolean is false when
// neither a specific nor a generic mapping is configured.
func (r *Resolver) Resolve(ctx context.Context, txType, category string) (AccountMapping, bool, error) {
	if err := r.load(ctx); err != nil {
		return AccountMapping{}, false, err
	}
	if category != "" {
		if m, ok := r.cache[cacheKey{txType, category}]; ok {
			return m, true, nil
		}
	}
	m, ok := r.cache[cacheKey{txType, ""}]
	return m, ok, nil
}

package costcenter

import "context"

// ResolveInput names the dimensions a transaction may carry. Any field
// may be nil; the resolver walks the precedence chain across whatever
// is present.
type ResolveInput struct {
	SiteID              *int64
	ClientAddressBookID *int64
	ContractID          *int64
	Type                BUType
}

// Resolver determines the business unit for a transaction using the
// precedence chain site, then client, then contract, then the company
// default for the transaction's BU type. A nil result is tolerated:
// the dimension stays unset on the journal line.
//
// The resolver caches warehouse lookups per instance, so construct one
// per posting request.
type Resolver struct {
	repo           Repository
	companyID      int64
	warehouseCache map[int64]*int64
}

func NewResolver(repo Repository, companyID int64) *Resolver {
	return &Resolver{repo: repo, companyID: companyID, warehouseCache: make(map[int64]*int64)}
}

// Resolve walks the precedence chain, stopping at the first hit.
func (r *Resolver) Resolve(ctx context.Context, input ResolveInput) (*int64, error) {
	if input.SiteID != nil {
		id, ok, err := r.repo.SiteBusinessUnit(ctx, r.companyID, *input.SiteID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &id, nil
		}
	}
	if input.ClientAddressBookID != nil {
		id, ok, err := r.repo.AddressBookBusinessUnit(ctx, r.companyID, *input.ClientAddressBookID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &id, nil
		}
	}
	if input.ContractID != nil {
		id, ok, err := r.repo.ContractBusinessUnit(ctx, r.companyID, *input.ContractID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &id, nil
		}
	}
	buType := input.Type
	if buType == "" {
		buType = BUTypeProfitLoss
	}
	id, ok, err := r.repo.DefaultBusinessUnit(ctx, r.companyID, buType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// ForWarehouse resolves the business unit linked to a warehouse,
// caching the answer (including absence) for the resolver's lifetime.
func (r *Resolver) ForWarehouse(ctx context.Context, warehouseID int64) (*int64, error) {
	if cached, ok := r.warehouseCache[warehouseID]; ok {
		return cached, nil
	}
	id, ok, err := r.repo.WarehouseBusinessUnit(ctx, r.companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	var result *int64
	if ok {
		result = &id
	}
	r.warehouseCache[warehouseID] = result
	return result, nil
}

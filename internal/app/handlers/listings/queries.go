package listings

import (
	"context"
	"strings"

	"vendibook/internal/app/dto"
	"vendibook/internal/app/queries"
	domainlistings "vendibook/internal/domain/listings"
)

const (
	getListingKey       = "listings.get"
	listHostListingsKey = "host.listings.list"
)

// GetListingQuery fetches one listing's public view.
type GetListingQuery struct {
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	Listings domainlistings.Repository
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Listing{}, err
	}
	return dto.MapListing(listing), nil
}

type ListHostListingsQuery struct {
	HostID string
}

func (q ListHostListingsQuery) Key() string { return listHostListingsKey }

type ListHostListingsHandler struct {
	Listings domainlistings.Repository
}

func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) ([]dto.Listing, error) {
	if strings.TrimSpace(q.HostID) == "" {
		return nil, ErrHostRequired
	}
	items, err := h.Listings.ListByHost(ctx, domainlistings.HostID(q.HostID))
	if err != nil {
		return nil, err
	}
	out := make([]dto.Listing, 0, len(items))
	for _, l := range items {
		out = append(out, dto.MapListing(l))
	}
	return out, nil
}

var (
	_ queries.Handler[GetListingQuery, dto.Listing]         = (*GetListingHandler)(nil)
	_ queries.Handler[ListHostListingsQuery, []dto.Listing] = (*ListHostListingsHandler)(nil)
)

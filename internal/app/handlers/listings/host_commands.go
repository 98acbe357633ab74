package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vendibook/internal/app/commands"
	"vendibook/internal/app/dto"
	"vendibook/internal/app/outbox"
	domainlistings "vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/geo"
	"vendibook/internal/domain/shared/money"
)

const (
	createHostListingKey  = "host.listings.create"
	publishHostListingKey = "host.listings.publish"
	suspendHostListingKey = "host.listings.suspend"
	updatePricingKey      = "host.listings.update_pricing"
)

var (
	ErrHostRequired    = errors.New("listings: host id is required")
	ErrListingRequired = errors.New("listings: listing id is required")
)

// HostListingPayload is the write shape hosts submit. Rate and policy fields
// arrive as a loose record because host-facing clients disagree on key
// naming and units; NormalizeRecord settles both.
type HostListingPayload struct {
	Title          string
	Description    string
	Kind           string
	Address        string
	Lat            float64
	Lon            float64
	SalePriceCents int64
	Record         map[string]any
	Upsells        []dto.Upsell
	Photos         []string
}

type CreateHostListingCommand struct {
	HostID  string
	Payload HostListingPayload
}

func (c CreateHostListingCommand) Key() string { return createHostListingKey }

func (c CreateHostListingCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	return nil
}

type CreateHostListingHandler struct {
	Listings domainlistings.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Now      func() time.Time
}

func (h *CreateHostListingHandler) Handle(ctx context.Context, cmd CreateHostListingCommand) (*dto.Listing, error) {
	if h.Listings == nil {
		return nil, errors.New("listings: repository required")
	}

	rates, policy, window := domainlistings.NormalizeRecord(cmd.Payload.Record)
	upsells := make([]domainlistings.Upsell, 0, len(cmd.Payload.Upsells))
	for _, u := range cmd.Payload.Upsells {
		id := u.ID
		if id == "" {
			id = uuid.NewString()
		}
		upsells = append(upsells, domainlistings.Upsell{
			ID:    id,
			Name:  u.Name,
			Price: money.Cents(u.PriceCents),
		})
	}

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          domainlistings.ListingID(uuid.NewString()),
		Host:        domainlistings.HostID(cmd.HostID),
		Title:       cmd.Payload.Title,
		Description: cmd.Payload.Description,
		Kind:        domainlistings.Kind(cmd.Payload.Kind),
		Address:     cmd.Payload.Address,
		Location:    geo.Coordinate{Lat: cmd.Payload.Lat, Lon: cmd.Payload.Lon},
		Rates:       rates,
		SalePrice:   money.Cents(cmd.Payload.SalePriceCents),
		Delivery:    policy,
		Window:      window,
		Upsells:     upsells,
		Photos:      cmd.Payload.Photos,
		Now:         h.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := h.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()

	if h.Logger != nil {
		h.Logger.Info("host listing created", "listing_id", listing.ID, "host_id", cmd.HostID, "kind", listing.Kind)
	}

	result := dto.MapListing(listing)
	return &result, nil
}

func (h *CreateHostListingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

type PublishHostListingCommand struct {
	HostID    string
	ListingID string
}

func (c PublishHostListingCommand) Key() string { return publishHostListingKey }

func (c PublishHostListingCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	if strings.TrimSpace(c.ListingID) == "" {
		return ErrListingRequired
	}
	return nil
}

type PublishHostListingHandler struct {
	Listings domainlistings.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Now      func() time.Time
}

func (h *PublishHostListingHandler) Handle(ctx context.Context, cmd PublishHostListingCommand) (*dto.Listing, error) {
	listing, err := loadOwned(ctx, h.Listings, cmd.ListingID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	if err := listing.Activate(now); err != nil {
		return nil, err
	}
	if err := h.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()
	if h.Logger != nil {
		h.Logger.Info("host listing published", "listing_id", listing.ID)
	}
	result := dto.MapListing(listing)
	return &result, nil
}

type SuspendHostListingCommand struct {
	HostID    string
	ListingID string
	Reason    string
}

func (c SuspendHostListingCommand) Key() string { return suspendHostListingKey }

func (c SuspendHostListingCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	if strings.TrimSpace(c.ListingID) == "" {
		return ErrListingRequired
	}
	return nil
}

type SuspendHostListingHandler struct {
	Listings domainlistings.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *SuspendHostListingHandler) Handle(ctx context.Context, cmd SuspendHostListingCommand) (*dto.Listing, error) {
	listing, err := loadOwned(ctx, h.Listings, cmd.ListingID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	if err := listing.Suspend(cmd.Reason, now); err != nil {
		return nil, err
	}
	if err := h.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()
	result := dto.MapListing(listing)
	return &result, nil
}

// UpdatePricingCommand replaces the rate card and delivery policy from a
// loose host-submitted record.
type UpdatePricingCommand struct {
	HostID    string
	ListingID string
	Record    map[string]any
}

func (c UpdatePricingCommand) Key() string { return updatePricingKey }

func (c UpdatePricingCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	if strings.TrimSpace(c.ListingID) == "" {
		return ErrListingRequired
	}
	return nil
}

type UpdatePricingHandler struct {
	Listings domainlistings.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *UpdatePricingHandler) Handle(ctx context.Context, cmd UpdatePricingCommand) (*dto.Listing, error) {
	listing, err := loadOwned(ctx, h.Listings, cmd.ListingID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	rates, policy, window := domainlistings.NormalizeRecord(cmd.Record)
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	if err := listing.UpdatePricing(rates, policy, now); err != nil {
		return nil, err
	}
	if window != nil {
		if err := listing.UpdateBookingWindow(window, now); err != nil {
			return nil, err
		}
	}
	if err := h.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()
	result := dto.MapListing(listing)
	return &result, nil
}

func loadOwned(ctx context.Context, repo domainlistings.Repository, listingID, hostID string) (*domainlistings.Listing, error) {
	if repo == nil {
		return nil, errors.New("listings: repository required")
	}
	listing, err := repo.ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, err
	}
	if string(listing.Host) != hostID {
		return nil, domainlistings.ErrNotOwner
	}
	return listing, nil
}

var (
	_ commands.Handler[CreateHostListingCommand, *dto.Listing]  = (*CreateHostListingHandler)(nil)
	_ commands.Handler[PublishHostListingCommand, *dto.Listing] = (*PublishHostListingHandler)(nil)
	_ commands.Handler[SuspendHostListingCommand, *dto.Listing] = (*SuspendHostListingHandler)(nil)
	_ commands.Handler[UpdatePricingCommand, *dto.Listing]      = (*UpdatePricingHandler)(nil)
)

package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"vendibook/internal/app/commands"
	"vendibook/internal/app/dto"
	"vendibook/internal/app/policies"
	domainlistings "vendibook/internal/domain/listings"
)

const uploadHostListingPhotoKey = "host.listings.photos.upload"

type UploadHostListingPhotoCommand struct {
	HostID      string
	ListingID   string
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c UploadHostListingPhotoCommand) Key() string { return uploadHostListingPhotoKey }

func (c UploadHostListingPhotoCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	if strings.TrimSpace(c.ListingID) == "" {
		return ErrListingRequired
	}
	if c.Reader == nil {
		return errors.New("listings: photo reader is required")
	}
	if strings.TrimSpace(c.ObjectKey) == "" {
		return errors.New("listings: object key is required")
	}
	return nil
}

type UploadHostListingPhotoHandler struct {
	Listings domainlistings.Repository
	Uploader policies.UploaderPort
	Logger   *slog.Logger
	Now      func() time.Time
}

func (h *UploadHostListingPhotoHandler) Handle(ctx context.Context, cmd UploadHostListingPhotoCommand) (*dto.Listing, error) {
	if h.Uploader == nil {
		return nil, errors.New("listings: photo uploader unavailable")
	}
	listing, err := loadOwned(ctx, h.Listings, cmd.ListingID, cmd.HostID)
	if err != nil {
		return nil, err
	}

	publicURL, err := h.Uploader.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	listing.AttachPhoto(publicURL, now)
	if err := h.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing photo added", "listing_id", listing.ID, "host_id", cmd.HostID, "object_key", cmd.ObjectKey)
	}

	result := dto.MapListing(listing)
	return &result, nil
}

var _ commands.Handler[UploadHostListingPhotoCommand, *dto.Listing] = (*UploadHostListingPhotoHandler)(nil)

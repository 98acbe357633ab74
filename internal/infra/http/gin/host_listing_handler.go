package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"vendibook/internal/app/commands"
	"vendibook/internal/app/dto"
	ListingsApp "vendibook/internal/app/handlers/listings"
	"vendibook/internal/app/queries"
)

// HostListingHandler serves the host-side listing surface. Hosts identify
// themselves with the X-Host-ID header; the platform gateway upstream is
// responsible for authenticating it.
type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h HostListingHandler) List(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := ListingsApp.ListHostListingsQuery{HostID: hostID(c)}
	result, err := queries.Ask[ListingsApp.ListHostListingsQuery, []dto.Listing](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": result})
}

type createListingRequest struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Kind           string         `json:"kind"`
	Address        string         `json:"address"`
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	SalePriceCents int64          `json:"sale_price_cents"`
	Record         map[string]any `json:"record"`
	Upsells        []dto.Upsell   `json:"upsells"`
	Photos         []string       `json:"photos"`
}

func (h HostListingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ListingsApp.CreateHostListingCommand{
		HostID: hostID(c),
		Payload: ListingsApp.HostListingPayload{
			Title:          req.Title,
			Description:    req.Description,
			Kind:           req.Kind,
			Address:        req.Address,
			Lat:            req.Lat,
			Lon:            req.Lon,
			SalePriceCents: req.SalePriceCents,
			Record:         req.Record,
			Upsells:        req.Upsells,
			Photos:         req.Photos,
		},
	}
	result, err := commands.Dispatch[ListingsApp.CreateHostListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) Publish(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := ListingsApp.PublishHostListingCommand{HostID: hostID(c), ListingID: c.Param("id")}
	result, err := commands.Dispatch[ListingsApp.PublishHostListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type suspendListingRequest struct {
	Reason string `json:"reason"`
}

func (h HostListingHandler) Suspend(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req suspendListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ListingsApp.SuspendHostListingCommand{HostID: hostID(c), ListingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[ListingsApp.SuspendHostListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) UpdatePricing(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var record map[string]any
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ListingsApp.UpdatePricingCommand{HostID: hostID(c), ListingID: c.Param("id"), Record: record}
	result, err := commands.Dispatch[ListingsApp.UpdatePricingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) UploadPhoto(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	cmd := ListingsApp.UploadHostListingPhotoCommand{
		HostID:      hostID(c),
		ListingID:   c.Param("id"),
		ObjectKey:   c.Param("id") + "/" + header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	result, err := commands.Dispatch[ListingsApp.UploadHostListingPhotoCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func hostID(c *gin.Context) string {
	return c.GetHeader("X-Host-ID")
}

var _ HostListingHTTP = HostListingHandler{}

package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"vendibook/internal/app/dto"
	AvailabilityApp "vendibook/internal/app/handlers/availability"
	ListingsApp "vendibook/internal/app/handlers/listings"
	QuoteApp "vendibook/internal/app/handlers/quote"
	"vendibook/internal/app/queries"
)

type ListingHandler struct {
	Queries queries.Bus
}

func (h ListingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := ListingsApp.GetListingQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[ListingsApp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type quoteRequest struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Hours           int       `json:"hours"`
	DeliveryAddress string    `json:"delivery_address"`
	Pickup          bool      `json:"pickup"`
	UpsellIDs       []string  `json:"upsell_ids"`
}

func (h ListingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := QuoteApp.GetQuoteQuery{
		ListingID:       c.Param("id"),
		Start:           req.Start,
		End:             req.End,
		Hours:           req.Hours,
		DeliveryAddress: req.DeliveryAddress,
		Pickup:          req.Pickup,
		UpsellIDs:       req.UpsellIDs,
	}
	result, err := queries.Ask[QuoteApp.GetQuoteQuery, dto.QuoteResponse](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Calendar(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := AvailabilityApp.GetCalendarQuery{ListingID: c.Param("id")}
	if raw := c.Query("from"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		q.From = day
	}
	if raw := c.Query("to"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		q.To = day
	}
	result, err := queries.Ask[AvailabilityApp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) CheckRange(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date"})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date"})
		return
	}
	q := AvailabilityApp.CheckRangeQuery{ListingID: c.Param("id"), Start: start, End: end}
	result, err := queries.Ask[AvailabilityApp.CheckRangeQuery, dto.RangeCheck](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}

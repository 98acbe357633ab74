package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"vendibook/internal/app/commands"
	"vendibook/internal/app/dto"
	CheckoutApp "vendibook/internal/app/handlers/checkout"
	"vendibook/internal/app/policies"
	"vendibook/internal/app/queries"
	"vendibook/internal/domain/delivery"
)

type CheckoutHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type startCheckoutRequest struct {
	ListingID string `json:"listing_id"`
}

func (h CheckoutHandler) Start(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req startCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.StartCheckoutCommand{ListingID: req.ListingID}
	result, err := commands.Dispatch[CheckoutApp.StartCheckoutCommand, dto.CheckoutState](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h CheckoutHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := CheckoutApp.GetCheckoutStateQuery{SessionID: c.Param("id")}
	result, err := queries.Ask[CheckoutApp.GetCheckoutStateQuery, dto.CheckoutState](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateCheckoutRequest struct {
	Mode            *string `json:"mode"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	Pickup          *bool   `json:"pickup"`
	DeliveryAddress *string `json:"delivery_address"`
	ToggleUpsellID  *string `json:"toggle_upsell_id"`
}

func (h CheckoutHandler) Update(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req updateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.UpdateSelectionCommand{
		SessionID:       c.Param("id"),
		Mode:            req.Mode,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Pickup:          req.Pickup,
		DeliveryAddress: req.DeliveryAddress,
		ToggleUpsellID:  req.ToggleUpsellID,
	}
	if req.StartDate != nil && req.EndDate != nil {
		start, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		cmd.StartDate = &start
		cmd.EndDate = &end
	}
	result, err := commands.Dispatch[CheckoutApp.UpdateSelectionCommand, dto.CheckoutState](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type submitCheckoutRequest struct {
	CustomerEmail string `json:"customer_email"`
}

func (h CheckoutHandler) Submit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req submitCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.CreateCheckoutCommand{
		SessionID:       c.Param("id"),
		CustomerEmail:   req.CustomerEmail,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[CheckoutApp.CreateCheckoutCommand, *dto.CheckoutSessionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, result)
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, policies.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, delivery.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

var _ CheckoutHTTP = CheckoutHandler{}

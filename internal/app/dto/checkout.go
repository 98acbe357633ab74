package dto

// CheckoutState is the API view of an in-progress checkout session.
type CheckoutState struct {
	SessionID   string        `json:"session_id"`
	ListingID   string        `json:"listing_id"`
	Mode        string        `json:"mode"`
	StartDate   string        `json:"start_date,omitempty"`
	EndDate     string        `json:"end_date,omitempty"`
	StartTime   string        `json:"start_time,omitempty"`
	EndTime     string        `json:"end_time,omitempty"`
	Pickup      bool          `json:"pickup"`
	Address     string        `json:"delivery_address,omitempty"`
	UpsellIDs   []string      `json:"upsell_ids,omitempty"`
	Delivery    *DeliveryZone `json:"delivery,omitempty"`
	Quote       *PriceQuote   `json:"quote,omitempty"`
	SaleQuote   *SaleQuote    `json:"sale_quote,omitempty"`
	CanCheckout bool          `json:"can_checkout"`
	Error       string        `json:"error,omitempty"`
}

// CheckoutSessionResult is returned once the payment collaborator accepted
// the session.
type CheckoutSessionResult struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

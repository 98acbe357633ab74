package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"vendibook/internal/domain/checkout"
)

// Client talks to the external payment collaborator's hosted-session API.
// Error bodies are surfaced verbatim so the UI can show the collaborator's
// own message.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	APIKey   string
	Logger   *slog.Logger
}

type createSessionRequest struct {
	ListingID     string            `json:"listing_id"`
	CustomerEmail string            `json:"customer_email"`
	AmountCents   int64             `json:"amount_cents"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

func (c *Client) CreateSession(ctx context.Context, req checkout.SessionRequest) (checkout.PaymentSession, error) {
	var zero checkout.PaymentSession

	if c == nil || c.HTTP == nil {
		return zero, errors.New("payments: http client not configured")
	}
	if c.Endpoint == "" {
		return zero, errors.New("payments: endpoint not configured")
	}

	payload := createSessionRequest{
		ListingID:     req.ListingID,
		CustomerEmail: req.CustomerEmail,
		AmountCents:   req.AmountDue.Amount,
		Currency:      req.AmountDue.Currency,
		Metadata:      req.Metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return zero, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	request.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(request)
	if err != nil {
		c.logError("payment session request failed", req.ListingID, err)
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("payments returned status %d: %s", resp.StatusCode, string(snippet))
		c.logError("payment session rejected", req.ListingID, err)
		return zero, err
	}

	var decoded createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logError("payment session decode failed", req.ListingID, err)
		return zero, err
	}
	if decoded.SessionID == "" {
		return zero, errors.New("payments: response missing session id")
	}

	if c.Logger != nil {
		c.Logger.Info("payment session created",
			"listing_id", req.ListingID,
			"session_id", decoded.SessionID,
			"amount_cents", req.AmountDue.Amount,
		)
	}
	return checkout.PaymentSession{
		SessionID:   decoded.SessionID,
		RedirectURL: decoded.RedirectURL,
	}, nil
}

func (c *Client) logError(msg, listingID string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "listing_id", listingID, "error", err)
}

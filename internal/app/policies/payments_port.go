package policies

import (
	"context"

	"vendibook/internal/domain/checkout"
)

// PaymentSessionPort creates hosted payment sessions with the external
// payment collaborator. The engine supplies only the amount due and
// descriptive metadata.
type PaymentSessionPort interface {
	CreateSession(ctx context.Context, req checkout.SessionRequest) (checkout.PaymentSession, error)
}

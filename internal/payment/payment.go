// Package payment talks to the Midtrans Snap API and checks its
// notifications.
package payment

import (
	"context"
	"strings"

	"carenow-backend/internal/models"
)

type Outcome string

const (
	OutcomePaid    Outcome = "paid"
	OutcomeFailed  Outcome = "failed"
	OutcomePending Outcome = "pending"
)

// Notification is the HTTP notification body Midtrans posts on every
// transaction change. Only the fields we act on are decoded.
type Notification struct {
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
}

// Outcome maps Midtrans transaction states onto what the booking cares about.
// A captured card payment counts only once the fraud check accepts it.
func (n Notification) Outcome() Outcome {
	switch strings.ToLower(n.TransactionStatus) {
	case "settlement":
		return OutcomePaid
	case "capture":
		if strings.ToLower(n.FraudStatus) == "accept" {
			return OutcomePaid
		}
		return OutcomePending
	case "deny", "cancel", "expire", "failure":
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

type Charge struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type Gateway interface {
	// CreateCharge opens a payment page for the booking. A nil Charge with a
	// nil error means payments are switched off.
	CreateCharge(ctx context.Context, booking *models.Booking, service *models.Service, customer *models.User) (*Charge, error)
	// Verify rejects notifications whose signature does not match.
	Verify(n Notification) error
}

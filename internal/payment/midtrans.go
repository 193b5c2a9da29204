package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"carenow-backend/internal/config"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type MidtransGateway struct {
	serverKey string
	client    snap.Client
}

func NewMidtransGateway(cfg config.MidtransConfig) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.Environment == "production" {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(cfg.ServerKey, env)
	return &MidtransGateway{serverKey: cfg.ServerKey, client: s}
}

func (g *MidtransGateway) CreateCharge(_ context.Context, booking *models.Booking, service *models.Service, customer *models.User) (*Charge, error) {
	amount := int64(booking.TotalPrice)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  booking.ID,
			GrossAmt: amount, // Midtrans wants whole rupiah
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    service.ID,
				Name:  fmt.Sprintf("%s (%gh)", service.Name, booking.Hours),
				Price: amount,
				Qty:   1,
			},
		},
	}
	if customer != nil {
		req.CustomerDetail = &midtrans.CustomerDetails{
			FName: customer.FullName,
			Email: customer.Email,
			Phone: customer.Phone,
		}
	}

	resp, snapErr := g.client.CreateTransaction(req)
	if snapErr != nil {
		return nil, errs.Mark(errs.Newf("midtrans: %s", snapErr.GetMessage()), models.ErrUnavailable)
	}
	return &Charge{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) Verify(n Notification) error {
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	if subtle.ConstantTimeCompare([]byte(want), []byte(n.SignatureKey)) != 1 {
		return errs.Markf(models.ErrUnauthorized, "invalid signature for order %s", n.OrderID)
	}
	return nil
}

// Signature is SHA512(order_id + status_code + gross_amount + server_key),
// hex encoded, as Midtrans computes it.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// DisabledGateway is used when no server key is configured.
type DisabledGateway struct{}

func (DisabledGateway) CreateCharge(context.Context, *models.Booking, *models.Service, *models.User) (*Charge, error) {
	return nil, nil
}

func (DisabledGateway) Verify(n Notification) error {
	return errs.Markf(models.ErrUnavailable, "payments are not configured, ignoring order %s", n.OrderID)
}

// NewGateway picks Midtrans when a server key is set.
func NewGateway(cfg config.MidtransConfig) Gateway {
	if !cfg.Enabled() {
		return DisabledGateway{}
	}
	return NewMidtransGateway(cfg)
}

package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/config"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          Outcome
	}{
		{"settlement", "", OutcomePaid},
		{"capture", "accept", OutcomePaid},
		{"capture", "challenge", OutcomePending},
		{"pending", "", OutcomePending},
		{"deny", "", OutcomeFailed},
		{"cancel", "", OutcomeFailed},
		{"expire", "", OutcomeFailed},
		{"refund", "", OutcomePending},
	}
	for _, tc := range cases {
		n := Notification{TransactionStatus: tc.status, FraudStatus: tc.fraud}
		assert.Equal(t, tc.want, n.Outcome(), "%s/%s", tc.status, tc.fraud)
	}
}

func TestVerifySignature(t *testing.T) {
	g := NewMidtransGateway(config.MidtransConfig{ServerKey: "SB-Mid-server-key"})

	n := Notification{OrderID: "b-1", StatusCode: "200", GrossAmount: "200000.00"}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "SB-Mid-server-key")
	require.NoError(t, g.Verify(n))

	n.GrossAmount = "1.00"
	err := g.Verify(n)
	require.Error(t, err)
	assert.True(t, errs.Is(err, models.ErrUnauthorized))
}

func TestSignatureIsSHA512Hex(t *testing.T) {
	sig := Signature("a", "b", "c", "d")
	assert.Len(t, sig, 128)
	assert.Equal(t, sig, Signature("ab", "", "c", "d"))
}

func TestNewGatewayDisabledWithoutKey(t *testing.T) {
	g := NewGateway(config.MidtransConfig{})
	_, ok := g.(DisabledGateway)
	require.True(t, ok)

	charge, err := g.CreateCharge(context.Background(), &models.Booking{}, &models.Service{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, charge)
	assert.True(t, errs.Is(g.Verify(Notification{OrderID: "x"}), models.ErrUnavailable))
}

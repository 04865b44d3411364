package stripe_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const whsec = "whsec_test_secret"

type fakeSessions struct {
	lastParams *stripe.CheckoutSessionParams
	session    *stripe.CheckoutSession
	err        error
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.lastParams = params
	return f.session, f.err
}

func (f *fakeSessions) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return f.session, f.err
}

func testConfig() Config {
	return Config{
		WebhookSecret: whsec,
		Prices: map[domain.BillingProduct]string{
			domain.ProductPlus:        "price_plus",
			domain.ProductFileCredits: "price_credits",
		},
	}
}

func TestCreateCheckoutSession_SubscriptionMode(t *testing.T) {
	profileID := uuid.New()
	sessions := &fakeSessions{session: &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/cs_test_1", AmountTotal: 499, Currency: "eur"}}
	p := newProvider(sessions, testConfig())

	s, err := p.CreateCheckoutSession(context.Background(), domain.CheckoutRequest{
		ProfileID:  profileID,
		Product:    domain.ProductPlus,
		SuccessURL: "https://homiio.com/billing/success",
		CancelURL:  "https://homiio.com/billing/cancel",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, int64(499), s.AmountTotal)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *sessions.lastParams.Mode)
	assert.Equal(t, profileID.String(), *sessions.lastParams.ClientReferenceID)
	assert.Equal(t, "price_plus", *sessions.lastParams.LineItems[0].Price)
	assert.Equal(t, "plus", sessions.lastParams.Metadata[metadataProduct])
	assert.Nil(t, sessions.lastParams.CustomerEmail)
}

func TestCreateCheckoutSession_UnconfiguredProduct(t *testing.T) {
	p := newProvider(&fakeSessions{}, testConfig())

	_, err := p.CreateCheckoutSession(context.Background(), domain.CheckoutRequest{Product: domain.ProductFounder})

	assert.Equal(t, domain.CodePaymentError, domain.AsAppError(err).Code)
}

func TestCreateCheckoutSession_ProviderDown(t *testing.T) {
	p := newProvider(&fakeSessions{err: errors.New("connection reset")}, testConfig())

	_, err := p.CreateCheckoutSession(context.Background(), domain.CheckoutRequest{Product: domain.ProductFileCredits})

	assert.Equal(t, domain.CodeUpstreamError, domain.AsAppError(err).Code)
}

func signedPayload(t *testing.T, event map[string]interface{}) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    whsec,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	profileID := uuid.New()
	payload, header := signedPayload(t, map[string]interface{}{
		"id":     "evt_1",
		"object": "event",
		"type":   "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":                  "cs_test_2",
				"object":              "checkout.session",
				"payment_status":      "paid",
				"status":              "complete",
				"client_reference_id": profileID.String(),
				"amount_total":        1500,
				"currency":            "eur",
				"metadata":            map[string]string{"product": "file_credits"},
			},
		},
	})

	event, err := newProvider(&fakeSessions{}, testConfig()).ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, domain.BillingCheckoutCompleted, event.Type)
	require.NotNil(t, event.Session)
	assert.True(t, event.Session.Paid)
	assert.Equal(t, domain.ProductFileCredits, event.Session.Product)
	assert.Equal(t, profileID.String(), event.Session.ClientReferenceID)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	payload, _ := signedPayload(t, map[string]interface{}{"id": "evt_2", "type": "checkout.session.expired"})

	_, err := newProvider(&fakeSessions{}, testConfig()).ParseWebhook(payload, "t=1,v1=deadbeef")

	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestParseWebhook_UnknownEventHasNoSession(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":   "evt_3",
		"type": "invoice.paid",
		"data": map[string]interface{}{"object": map[string]interface{}{"id": "in_1"}},
	})

	event, err := newProvider(&fakeSessions{}, testConfig()).ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Nil(t, event.Session)
}

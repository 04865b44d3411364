package stripe_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const metadataProduct = "product"

// checkoutSessions - часть SDK, которой пользуется провайдер.
type checkoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Config struct {
	SecretKey     string
	WebhookSecret string
	// Prices - price ID в Stripe для каждого продукта.
	Prices map[domain.BillingProduct]string
}

// Provider - Stripe Checkout. Реализует port.PaymentProviderPort.
type Provider struct {
	sessions      checkoutSessions
	webhookSecret string
	prices        map[domain.BillingProduct]string
}

func NewProvider(cfg Config) (*Provider, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key cannot be empty")
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return newProvider(sc.CheckoutSessions, cfg), nil
}

func newProvider(sessions checkoutSessions, cfg Config) *Provider {
	return &Provider{
		sessions:      sessions,
		webhookSecret: cfg.WebhookSecret,
		prices:        cfg.Prices,
	}
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	providerLogger := logger.WithFields(port.Fields{
		"component":  "StripeProvider",
		"method":     "CreateCheckoutSession",
		"product":    req.Product,
		"profile_id": req.ProfileID,
	})

	params, err := p.checkoutParams(req)
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		providerLogger.Error("Stripe failed to create checkout session", err, nil)
		return nil, mapStripeError(err)
	}
	providerLogger.Info("Checkout session created.", port.Fields{"session_id": s.ID})
	return toDomainSession(s), nil
}

func (p *Provider) GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := p.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, domain.NewNotFound("checkout session")
		}
		contextkeys.LoggerFromContext(ctx).Error("Stripe failed to retrieve checkout session", err, port.Fields{"session_id": sessionID})
		return nil, mapStripeError(err)
	}
	return toDomainSession(s), nil
}

func (p *Provider) ParseWebhook(payload []byte, signature string) (*domain.BillingEvent, error) {
	if p.webhookSecret == "" {
		return nil, domain.NewPaymentError("webhook secret is not configured", nil)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, domain.NewValidation("invalid webhook signature", nil)
	}

	result := &domain.BillingEvent{ID: event.ID, Type: domain.BillingEventType(event.Type)}
	switch result.Type {
	case domain.BillingCheckoutCompleted, domain.BillingCheckoutExpired:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, domain.NewValidation("malformed checkout session in webhook", nil)
		}
		result.Session = toDomainSession(&s)
	}
	return result, nil
}

func (p *Provider) checkoutParams(req domain.CheckoutRequest) (*stripe.CheckoutSessionParams, error) {
	priceID := p.prices[req.Product]
	if priceID == "" {
		return nil, domain.NewPaymentError(fmt.Sprintf("product %q is not configured", req.Product), nil)
	}

	mode := stripe.CheckoutSessionModePayment
	if req.Product.Subscription() {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(mode)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.ProfileID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata(metadataProduct, string(req.Product))
	params.AddMetadata("profile_id", req.ProfileID.String())
	return params, nil
}

func toDomainSession(s *stripe.CheckoutSession) *domain.CheckoutSession {
	return &domain.CheckoutSession{
		ID:                s.ID,
		URL:               s.URL,
		Paid:              s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid || s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired,
		Expired:           s.Status == stripe.CheckoutSessionStatusExpired,
		ClientReferenceID: s.ClientReferenceID,
		Product:           domain.BillingProduct(s.Metadata[metadataProduct]),
		AmountTotal:       s.AmountTotal,
		Currency:          string(s.Currency),
	}
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		return domain.NewPaymentError(stripeErr.Msg, err)
	}
	return domain.NewUpstreamError("payment provider", err)
}

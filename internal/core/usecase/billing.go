package usecase

import (
	"context"
	"errors"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

const (
	confirmIdempotencyTTL = 24 * time.Hour
	releaseKeyTimeout     = 3 * time.Second
)

// BillingURLs - куда провайдер вернет пользователя после оплаты.
type BillingURLs struct {
	SuccessURL string
	CancelURL  string
}

type CreateCheckoutSessionUseCase struct {
	repo     port.BillingRepositoryPort
	provider port.PaymentProviderPort
	urls     BillingURLs
}

func NewCreateCheckoutSessionUseCase(repo port.BillingRepositoryPort, provider port.PaymentProviderPort, urls BillingURLs) *CreateCheckoutSessionUseCase {
	return &CreateCheckoutSessionUseCase{repo: repo, provider: provider, urls: urls}
}

func (uc *CreateCheckoutSessionUseCase) Execute(ctx context.Context, profileID uuid.UUID, email string, product domain.BillingProduct) (*domain.CheckoutSession, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "CreateCheckoutSession",
		"profile_id": profileID,
		"product":    product,
	})
	ucLogger.Info("Use case started", nil)

	if !product.Valid() {
		return nil, domain.NewValidation("validation failed", map[string]string{"product": "must be plus, file_credits or founder"})
	}

	session, err := uc.provider.CreateCheckoutSession(ctx, domain.CheckoutRequest{
		ProfileID:  profileID,
		Product:    product,
		Email:      email,
		SuccessURL: uc.urls.SuccessURL,
		CancelURL:  uc.urls.CancelURL,
	})
	if err != nil {
		ucLogger.Error("Payment provider failed to create checkout session", err, nil)
		return nil, err
	}

	payment := &domain.Payment{
		ID:                uuid.New(),
		ProfileID:         profileID,
		ProviderSessionID: session.ID,
		Product:           product,
		Amount:            session.AmountTotal,
		Currency:          session.Currency,
		Status:            domain.PaymentPending,
		CreatedAt:         time.Now().UTC(),
	}
	if err := uc.repo.CreatePayment(ctx, payment); err != nil {
		ucLogger.Error("Failed to store pending payment", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"session_id": session.ID})
	return session, nil
}

// paymentConfirmer применяет оплату ровно один раз. Гарантию дает переход
// pending -> paid под блокировкой строки в БД, ключ в Redis только отсекает
// параллельные подтверждения уже оплаченной сессии.
type paymentConfirmer struct {
	repo        port.BillingRepositoryPort
	idempotency port.IdempotencyPort
	publisher   port.EventPublisherPort
}

func (c paymentConfirmer) confirm(ctx context.Context, sessionID string, logger port.LoggerPort) error {
	key := "billing:confirm:" + sessionID
	held := false
	if c.idempotency != nil {
		acquired, err := c.idempotency.Acquire(ctx, key, confirmIdempotencyTTL)
		switch {
		case err != nil:
			// без Redis полагаемся на переход статуса в БД
			logger.Warn("Idempotency store unavailable", port.Fields{"error": err.Error()})
		case acquired:
			held = true
		default:
			// ключ мог остаться после сбоя, поэтому решает строка платежа
			payment, err := c.repo.FindPaymentBySession(ctx, sessionID)
			if err != nil {
				return err
			}
			if payment.Status == domain.PaymentPaid {
				logger.Info("Payment confirmation already processed", port.Fields{"session_id": sessionID})
				return nil
			}
			logger.Warn("Idempotency key held but payment still pending, confirming", port.Fields{"session_id": sessionID})
		}
	}

	payment, applied, err := c.repo.ConfirmPayment(ctx, sessionID, time.Now().UTC())
	if err != nil {
		if held {
			c.releaseKey(ctx, key, logger)
		}
		return err
	}
	if !applied {
		logger.Info("Payment was already confirmed", port.Fields{"session_id": sessionID})
		return nil
	}

	publishEvent(ctx, c.publisher, domain.PaymentSucceeded{
		EventID:    uuid.New(),
		PaymentID:  payment.ID,
		ProfileID:  payment.ProfileID,
		Product:    payment.Product,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		OccurredAt: time.Now().UTC(),
	}, logger)
	logger.Info("Payment confirmed and entitlement granted", port.Fields{"session_id": sessionID, "product": payment.Product})
	return nil
}

// releaseKey отпускает ключ даже если запрос клиента уже отменен.
func (c paymentConfirmer) releaseKey(ctx context.Context, key string, logger port.LoggerPort) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseKeyTimeout)
	defer cancel()
	if err := c.idempotency.Release(releaseCtx, key); err != nil {
		logger.Warn("Failed to release idempotency key", port.Fields{"error": err.Error()})
	}
}

type ConfirmCheckoutSessionUseCase struct {
	paymentConfirmer
	provider port.PaymentProviderPort
}

func NewConfirmCheckoutSessionUseCase(
	repo port.BillingRepositoryPort,
	provider port.PaymentProviderPort,
	idempotency port.IdempotencyPort,
	publisher port.EventPublisherPort,
) *ConfirmCheckoutSessionUseCase {
	return &ConfirmCheckoutSessionUseCase{
		paymentConfirmer: paymentConfirmer{repo: repo, idempotency: idempotency, publisher: publisher},
		provider:         provider,
	}
}

func (uc *ConfirmCheckoutSessionUseCase) Execute(ctx context.Context, profileID uuid.UUID, sessionID string) (*domain.Entitlements, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "ConfirmCheckoutSession",
		"profile_id": profileID,
		"session_id": sessionID,
	})
	ucLogger.Info("Use case started", nil)

	if sessionID == "" {
		return nil, domain.NewValidation("validation failed", map[string]string{"session_id": "is required"})
	}

	payment, err := uc.repo.FindPaymentBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if payment.ProfileID != profileID {
		return nil, domain.NewForbidden("checkout session belongs to another profile")
	}

	if payment.Status != domain.PaymentPaid {
		session, err := uc.provider.GetCheckoutSession(ctx, sessionID)
		if err != nil {
			ucLogger.Error("Payment provider failed to retrieve session", err, nil)
			return nil, err
		}
		if !session.Paid {
			return nil, domain.NewPaymentError("payment has not been completed", nil)
		}
		if err := uc.confirm(ctx, sessionID, ucLogger); err != nil {
			ucLogger.Error("Failed to confirm payment", err, nil)
			return nil, err
		}
	}

	ent, err := uc.repo.FindEntitlements(ctx, profileID)
	if err != nil {
		return nil, err
	}
	ent.Normalize(time.Now().UTC())

	ucLogger.Info("Use case finished successfully", nil)
	return ent, nil
}

type HandleBillingWebhookUseCase struct {
	paymentConfirmer
	provider port.PaymentProviderPort
}

func NewHandleBillingWebhookUseCase(
	repo port.BillingRepositoryPort,
	provider port.PaymentProviderPort,
	idempotency port.IdempotencyPort,
	publisher port.EventPublisherPort,
) *HandleBillingWebhookUseCase {
	return &HandleBillingWebhookUseCase{
		paymentConfirmer: paymentConfirmer{repo: repo, idempotency: idempotency, publisher: publisher},
		provider:         provider,
	}
}

func (uc *HandleBillingWebhookUseCase) Execute(ctx context.Context, payload []byte, signature string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "HandleBillingWebhook"})

	event, err := uc.provider.ParseWebhook(payload, signature)
	if err != nil {
		ucLogger.Warn("Rejected webhook", port.Fields{"error": err.Error()})
		return err
	}
	ucLogger = ucLogger.WithFields(port.Fields{"event_id": event.ID, "event_type": event.Type})
	ucLogger.Info("Webhook received", nil)

	switch event.Type {
	case domain.BillingCheckoutCompleted:
		if event.Session == nil || !event.Session.Paid {
			ucLogger.Info("Checkout completed without payment, skipping", nil)
			return nil
		}
		if err := uc.ensurePayment(ctx, event.Session); err != nil {
			return err
		}
		return uc.confirm(ctx, event.Session.ID, ucLogger)

	case domain.BillingCheckoutExpired:
		if event.Session == nil {
			return nil
		}
		if err := uc.repo.MarkPaymentExpired(ctx, event.Session.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			ucLogger.Error("Failed to mark payment expired", err, nil)
			return err
		}
		return nil

	default:
		ucLogger.Debug("Unhandled webhook event acknowledged", nil)
		return nil
	}
}

// ensurePayment создает строку платежа, если сессия пришла раньше, чем мы ее записали.
func (uc *HandleBillingWebhookUseCase) ensurePayment(ctx context.Context, session *domain.CheckoutSession) error {
	_, err := uc.repo.FindPaymentBySession(ctx, session.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	profileID, perr := uuid.Parse(session.ClientReferenceID)
	if perr != nil || !session.Product.Valid() {
		return domain.NewValidation("validation failed", map[string]string{"session": "unknown checkout session"})
	}
	err = uc.repo.CreatePayment(ctx, &domain.Payment{
		ID:                uuid.New(),
		ProfileID:         profileID,
		ProviderSessionID: session.ID,
		Product:           session.Product,
		Amount:            session.AmountTotal,
		Currency:          session.Currency,
		Status:            domain.PaymentPending,
		CreatedAt:         time.Now().UTC(),
	})
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		return err
	}
	return nil
}

type GetBillingStatusUseCase struct {
	repo port.BillingRepositoryPort
}

func NewGetBillingStatusUseCase(repo port.BillingRepositoryPort) *GetBillingStatusUseCase {
	return &GetBillingStatusUseCase{repo: repo}
}

func (uc *GetBillingStatusUseCase) Execute(ctx context.Context, profileID uuid.UUID) (*domain.Entitlements, error) {
	ent, err := uc.repo.FindEntitlements(ctx, profileID)
	if err != nil {
		return nil, err
	}
	ent.Normalize(time.Now().UTC())
	return ent, nil
}

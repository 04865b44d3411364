package domain

import (
	"time"

	"github.com/google/uuid"
)

type BillingProduct string

const (
	ProductPlus        BillingProduct = "plus"
	ProductFileCredits BillingProduct = "file_credits"
	ProductFounder     BillingProduct = "founder"
)

func (p BillingProduct) Valid() bool {
	return p == ProductPlus || p == ProductFileCredits || p == ProductFounder
}

// Subscription - продукт оплачивается подпиской, а не разовым платежом.
func (p BillingProduct) Subscription() bool {
	return p == ProductPlus
}

const (
	// FileCreditsPerPurchase - сколько кредитов дает одна покупка file_credits.
	FileCreditsPerPurchase = 10
	// PlusPeriod - на сколько продлевается Plus после оплаты.
	PlusPeriod = 30 * 24 * time.Hour
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
	PaymentExpired PaymentStatus = "expired"
)

type Payment struct {
	ID                uuid.UUID
	ProfileID         uuid.UUID
	ProviderSessionID string
	Product           BillingProduct
	Amount            int64
	Currency          string
	Status            PaymentStatus
	CreatedAt         time.Time
	PaidAt            *time.Time
}

type Entitlements struct {
	ProfileID        uuid.UUID  `json:"profile_id"`
	PlusActive       bool       `json:"plus_active"`
	PlusUntil        *time.Time `json:"plus_until,omitempty"`
	FileCredits      int        `json:"file_credits"`
	FounderSupporter bool       `json:"founder_supporter"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Grant применяет оплаченный продукт к правам профиля.
func (e *Entitlements) Grant(product BillingProduct, now time.Time) {
	now = now.UTC()
	switch product {
	case ProductPlus:
		from := now
		if e.PlusUntil != nil && e.PlusUntil.After(now) {
			from = *e.PlusUntil
		}
		until := from.Add(PlusPeriod)
		e.PlusUntil = &until
		e.PlusActive = true
	case ProductFileCredits:
		e.FileCredits += FileCreditsPerPurchase
	case ProductFounder:
		e.FounderSupporter = true
	}
	e.UpdatedAt = now
}

// Normalize снимает флаг Plus, если период истек.
func (e *Entitlements) Normalize(now time.Time) {
	if e.PlusUntil != nil && !e.PlusUntil.After(now) {
		e.PlusActive = false
	}
}

// CheckoutRequest - параметры сессии оплаты у провайдера.
type CheckoutRequest struct {
	ProfileID  uuid.UUID
	Product    BillingProduct
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession - сессия оплаты, как ее видит провайдер.
type CheckoutSession struct {
	ID                string
	URL               string
	Paid              bool
	Expired           bool
	ClientReferenceID string
	Product           BillingProduct
	AmountTotal       int64
	Currency          string
}

type BillingEventType string

const (
	BillingCheckoutCompleted BillingEventType = "checkout.session.completed"
	BillingCheckoutExpired   BillingEventType = "checkout.session.expired"
)

// BillingEvent - проверенное событие вебхука провайдера.
type BillingEvent struct {
	ID      string
	Type    BillingEventType
	Session *CheckoutSession
}

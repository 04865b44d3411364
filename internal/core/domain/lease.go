package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeaseStatus string

const (
	LeaseDraft      LeaseStatus = "draft"
	LeasePending    LeaseStatus = "pending"
	LeaseActive     LeaseStatus = "active"
	LeaseUpcoming   LeaseStatus = "upcoming"
	LeaseExpired    LeaseStatus = "expired"
	LeaseTerminated LeaseStatus = "terminated"
)

func (s LeaseStatus) Valid() bool {
	switch s {
	case LeaseDraft, LeasePending, LeaseActive, LeaseUpcoming, LeaseExpired, LeaseTerminated:
		return true
	}
	return false
}

// LeaseRole - в какой роли профиль участвует в договоре.
type LeaseRole string

const (
	LeaseRoleTenant   LeaseRole = "tenant"
	LeaseRoleLandlord LeaseRole = "landlord"
	LeaseRoleAny      LeaseRole = "any"
)

func (r LeaseRole) Valid() bool {
	return r == LeaseRoleTenant || r == LeaseRoleLandlord || r == LeaseRoleAny
}

type Lease struct {
	ID                uuid.UUID
	PropertyID        uuid.UUID
	RoomID            *uuid.UUID
	LandlordProfileID uuid.UUID
	TenantProfileID   uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	RentAmount        float64
	RentCurrency      string
	Deposit           float64
	PaymentDueDay     int
	Terms             string
	Status            LeaseStatus
	LandlordSignedAt  *time.Time
	TenantSignedAt    *time.Time
	TerminatedAt      *time.Time
	TerminationReason string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LeaseVersion - состояние договора на момент чтения. Запись проходит,
// только если строку с тех пор никто не менял.
type LeaseVersion struct {
	Status           LeaseStatus
	UpdatedAt        time.Time
	LandlordSignedAt *time.Time
	TenantSignedAt   *time.Time
}

func (l *Lease) Version() LeaseVersion {
	return LeaseVersion{
		Status:           l.Status,
		UpdatedAt:        l.UpdatedAt,
		LandlordSignedAt: l.LandlordSignedAt,
		TenantSignedAt:   l.TenantSignedAt,
	}
}

// IsParty - является ли профиль стороной договора.
func (l *Lease) IsParty(profileID uuid.UUID) bool {
	return l.LandlordProfileID == profileID || l.TenantProfileID == profileID
}

func (l *Lease) IsLandlord(profileID uuid.UUID) bool {
	return l.LandlordProfileID == profileID
}

// FullySigned - обе стороны подписали.
func (l *Lease) FullySigned() bool {
	return l.LandlordSignedAt != nil && l.TenantSignedAt != nil
}

// DeriveStatus вычисляет статус подписанного договора по датам.
func (l *Lease) DeriveStatus(now time.Time) LeaseStatus {
	today := truncateDay(now)
	switch {
	case today.Before(truncateDay(l.StartDate)):
		return LeaseUpcoming
	case today.After(truncateDay(l.EndDate)):
		return LeaseExpired
	default:
		return LeaseActive
	}
}

// Submit переводит черновик на подпись.
func (l *Lease) Submit(now time.Time) error {
	if l.Status != LeaseDraft {
		return NewInvalidStatus(string(l.Status), string(LeasePending))
	}
	l.Status = LeasePending
	l.UpdatedAt = now
	return nil
}

// Sign ставит подпись стороны. Когда подписали обе, статус берется из дат.
func (l *Lease) Sign(profileID uuid.UUID, now time.Time) error {
	if l.Status != LeasePending {
		return NewInvalidStatus(string(l.Status), "signed")
	}
	signedAt := now.UTC()
	switch profileID {
	case l.LandlordProfileID:
		if l.LandlordSignedAt != nil {
			return NewConflict("lease is already signed by landlord")
		}
		l.LandlordSignedAt = &signedAt
	case l.TenantProfileID:
		if l.TenantSignedAt != nil {
			return NewConflict("lease is already signed by tenant")
		}
		l.TenantSignedAt = &signedAt
	default:
		return NewForbidden("only lease parties can sign")
	}
	if l.FullySigned() {
		l.Status = l.DeriveStatus(now)
	}
	l.UpdatedAt = signedAt
	return nil
}

// Terminate досрочно расторгает договор.
func (l *Lease) Terminate(reason string, now time.Time) error {
	switch l.Status {
	case LeaseActive, LeaseUpcoming, LeasePending:
	default:
		return NewInvalidStatus(string(l.Status), string(LeaseTerminated))
	}
	if strings.TrimSpace(reason) == "" {
		return NewValidation("validation failed", map[string]string{"reason": "is required"})
	}
	t := now.UTC()
	l.Status = LeaseTerminated
	l.TerminatedAt = &t
	l.TerminationReason = strings.TrimSpace(reason)
	l.UpdatedAt = t
	return nil
}

// Refresh пересчитывает статус upcoming/active по текущей дате.
// Возвращает true, если статус изменился.
func (l *Lease) Refresh(now time.Time) bool {
	if l.Status != LeaseUpcoming && l.Status != LeaseActive {
		return false
	}
	next := l.DeriveStatus(now)
	if next == l.Status {
		return false
	}
	l.Status = next
	l.UpdatedAt = now.UTC()
	return true
}

type LeaseInput struct {
	PropertyID      *uuid.UUID
	RoomID          *uuid.UUID
	TenantProfileID *uuid.UUID
	StartDate       *time.Time
	EndDate         *time.Time
	RentAmount      *float64
	RentCurrency    *string
	Deposit         *float64
	PaymentDueDay   *int
	Terms           *string
}

func (in LeaseInput) Validate(creating bool) error {
	errs := ValidationErrors{}
	if creating {
		if in.PropertyID == nil {
			errs.Add("property_id", "is required")
		}
		if in.TenantProfileID == nil {
			errs.Add("tenant_profile_id", "is required")
		}
		if in.StartDate == nil {
			errs.Add("start_date", "is required")
		}
		if in.EndDate == nil {
			errs.Add("end_date", "is required")
		}
		if in.RentAmount == nil {
			errs.Add("rent.amount", "is required")
		}
	}
	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		errs.Add("end_date", "must be after start_date")
	}
	if in.RentAmount != nil && *in.RentAmount <= 0 {
		errs.Add("rent.amount", "must be greater than 0")
	}
	if in.RentCurrency != nil && !ValidCurrency(*in.RentCurrency) {
		errs.Add("rent.currency", "must be a 3-letter ISO-4217 code")
	}
	if in.Deposit != nil && *in.Deposit < 0 {
		errs.Add("deposit", "cannot be negative")
	}
	if in.PaymentDueDay != nil && (*in.PaymentDueDay < 1 || *in.PaymentDueDay > 28) {
		errs.Add("payment_due_day", "must be between 1 and 28")
	}
	return errs.Err()
}

// NewLease создает черновик договора от имени владельца объекта.
func NewLease(property *Property, in LeaseInput) *Lease {
	now := time.Now().UTC()
	l := &Lease{
		ID:                uuid.New(),
		PropertyID:        property.ID,
		LandlordProfileID: property.OwnerProfileID,
		RentCurrency:      property.Rent.Currency,
		Deposit:           property.Rent.Deposit,
		PaymentDueDay:     1,
		Status:            LeaseDraft,
		CreatedAt:         now,
	}
	if in.TenantProfileID != nil {
		l.TenantProfileID = *in.TenantProfileID
	}
	in.Apply(l)
	return l
}

func (in LeaseInput) Apply(l *Lease) {
	if in.RoomID != nil {
		id := *in.RoomID
		l.RoomID = &id
	}
	if in.StartDate != nil {
		l.StartDate = truncateDay(*in.StartDate)
	}
	if in.EndDate != nil {
		l.EndDate = truncateDay(*in.EndDate)
	}
	if in.RentAmount != nil {
		l.RentAmount = *in.RentAmount
	}
	if in.RentCurrency != nil {
		l.RentCurrency = *in.RentCurrency
	}
	if in.Deposit != nil {
		l.Deposit = *in.Deposit
	}
	if in.PaymentDueDay != nil {
		l.PaymentDueDay = *in.PaymentDueDay
	}
	if in.Terms != nil {
		l.Terms = *in.Terms
	}
	l.UpdatedAt = time.Now().UTC()
}

type LeaseFilter struct {
	Role   LeaseRole
	Status *LeaseStatus
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProfileType - тип профиля пользователя.
type ProfileType string

const (
	ProfilePersonal    ProfileType = "personal"
	ProfileAgency      ProfileType = "agency"
	ProfileBusiness    ProfileType = "business"
	ProfileCooperative ProfileType = "cooperative"
)

func (t ProfileType) Valid() bool {
	switch t {
	case ProfilePersonal, ProfileAgency, ProfileBusiness, ProfileCooperative:
		return true
	}
	return false
}

// ProfileDetails - данные, специфичные для типа профиля. Хранятся в jsonb.
type ProfileDetails struct {
	// agency
	LicenseNumber string   `json:"license_number,omitempty"`
	ServiceAreas  []string `json:"service_areas,omitempty"`
	// business
	BusinessName string `json:"business_name,omitempty"`
	TaxID        string `json:"tax_id,omitempty"`
	Website      string `json:"website,omitempty"`
	// cooperative
	LegalName   string   `json:"legal_name,omitempty"`
	MemberCount int      `json:"member_count,omitempty"`
	Members     []string `json:"members,omitempty"`
	// personal
	Occupation string   `json:"occupation,omitempty"`
	Languages  []string `json:"languages,omitempty"`
}

// Profile - профиль пользователя Oxy. Через него проверяются права
// на объекты, договоры и заявки на просмотр.
type Profile struct {
	ID           uuid.UUID
	OxyUserID    string
	Type         ProfileType
	DisplayName  string
	Bio          string
	ContactEmail string
	ContactPhone string
	AvatarURL    string
	Details      ProfileDetails
	IsPrimary    bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewPersonalProfile создает профиль по умолчанию для нового пользователя.
func NewPersonalProfile(identity *Identity) *Profile {
	now := time.Now().UTC()
	name := identity.Name
	if name == "" {
		name = identity.Username
	}
	return &Profile{
		ID:           uuid.New(),
		OxyUserID:    identity.UserID,
		Type:         ProfilePersonal,
		DisplayName:  name,
		ContactEmail: identity.Email,
		AvatarURL:    identity.Avatar,
		IsPrimary:    true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// OwnedBy проверяет, принадлежит ли профиль пользователю.
func (p *Profile) OwnedBy(oxyUserID string) bool {
	return p != nil && p.OxyUserID == oxyUserID
}

// ProfileInput - поля для создания или изменения профиля.
// nil означает "не менять".
type ProfileInput struct {
	Type         ProfileType
	DisplayName  *string
	Bio          *string
	ContactEmail *string
	ContactPhone *string
	AvatarURL    *string
	Details      *ProfileDetails
}

// Validate проверяет входные данные профиля. creating=true для создания.
func (in ProfileInput) Validate(creating bool) error {
	errs := ValidationErrors{}
	if creating {
		if !in.Type.Valid() {
			errs.Add("type", "must be one of personal, agency, business, cooperative")
		}
		if in.Type == ProfilePersonal {
			errs.Add("type", "personal profile is created automatically")
		}
		if in.DisplayName == nil || strings.TrimSpace(*in.DisplayName) == "" {
			errs.Add("display_name", "is required")
		}
		if in.Details != nil {
			switch in.Type {
			case ProfileAgency:
				if strings.TrimSpace(in.Details.LicenseNumber) == "" {
					errs.Add("details.license_number", "is required for agency profiles")
				}
			case ProfileBusiness:
				if strings.TrimSpace(in.Details.BusinessName) == "" {
					errs.Add("details.business_name", "is required for business profiles")
				}
			case ProfileCooperative:
				if strings.TrimSpace(in.Details.LegalName) == "" {
					errs.Add("details.legal_name", "is required for cooperative profiles")
				}
			}
		} else if in.Type == ProfileAgency || in.Type == ProfileBusiness || in.Type == ProfileCooperative {
			errs.Add("details", "is required for "+string(in.Type)+" profiles")
		}
	} else if in.DisplayName != nil && strings.TrimSpace(*in.DisplayName) == "" {
		errs.Add("display_name", "cannot be empty")
	}
	if in.ContactEmail != nil && *in.ContactEmail != "" && !strings.Contains(*in.ContactEmail, "@") {
		errs.Add("contact_email", "must be a valid email")
	}
	if in.Bio != nil && len(*in.Bio) > 2000 {
		errs.Add("bio", "must be at most 2000 characters")
	}
	return errs.Err()
}

// Apply переносит заданные поля в профиль.
func (in ProfileInput) Apply(p *Profile) {
	if in.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.ContactEmail != nil {
		p.ContactEmail = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		p.ContactPhone = *in.ContactPhone
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
	if in.Details != nil {
		p.Details = *in.Details
	}
	p.UpdatedAt = time.Now().UTC()
}

// SavedProperty - объект в избранном у профиля.
type SavedProperty struct {
	ProfileID  uuid.UUID
	PropertyID uuid.UUID
	Notes      string
	CreatedAt  time.Time
}

// MaxRecentlyViewed - сколько последних просмотров хранится для профиля.
const MaxRecentlyViewed = 20

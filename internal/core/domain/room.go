package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RoomType string

const (
	RoomPrivate RoomType = "private"
	RoomShared  RoomType = "shared"
	RoomStudio  RoomType = "studio"
	RoomSuite   RoomType = "suite"
)

func (t RoomType) Valid() bool {
	return t == RoomPrivate || t == RoomShared || t == RoomStudio || t == RoomSuite
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomReserved    RoomStatus = "reserved"
)

func (s RoomStatus) Valid() bool {
	return s == RoomAvailable || s == RoomOccupied || s == RoomMaintenance || s == RoomReserved
}

type Room struct {
	ID           uuid.UUID
	PropertyID   uuid.UUID
	Name         string
	Type         RoomType
	SizeSqm      float64
	MaxOccupants int
	RentAmount   float64
	RentCurrency string
	Amenities    []string
	Images       []string
	Status       RoomStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type RoomInput struct {
	Name         *string
	Type         *RoomType
	SizeSqm      *float64
	MaxOccupants *int
	RentAmount   *float64
	RentCurrency *string
	Amenities    []string
	Images       []string
	Status       *RoomStatus
}

func (in RoomInput) Validate(creating bool) error {
	errs := ValidationErrors{}
	if creating {
		if in.Name == nil {
			errs.Add("name", "is required")
		}
		if in.Type == nil {
			errs.Add("type", "is required")
		}
		if in.RentAmount == nil {
			errs.Add("rent.amount", "is required")
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		errs.Add("name", "cannot be empty")
	}
	if in.Type != nil && !in.Type.Valid() {
		errs.Add("type", "must be private, shared, studio or suite")
	}
	if in.RentAmount != nil && *in.RentAmount <= 0 {
		errs.Add("rent.amount", "must be greater than 0")
	}
	if in.RentCurrency != nil && !ValidCurrency(*in.RentCurrency) {
		errs.Add("rent.currency", "must be a 3-letter ISO-4217 code")
	}
	if in.MaxOccupants != nil && *in.MaxOccupants < 1 {
		errs.Add("max_occupants", "must be at least 1")
	}
	if in.SizeSqm != nil && *in.SizeSqm < 0 {
		errs.Add("size_sqm", "cannot be negative")
	}
	if in.Status != nil && !in.Status.Valid() {
		errs.Add("status", "unknown room status")
	}
	return errs.Err()
}

// NewRoom создает комнату. Валюта по умолчанию берется из объекта.
func NewRoom(property *Property, in RoomInput) *Room {
	now := time.Now().UTC()
	r := &Room{
		ID:           uuid.New(),
		PropertyID:   property.ID,
		MaxOccupants: 1,
		RentCurrency: property.Rent.Currency,
		Amenities:    []string{},
		Images:       []string{},
		Status:       RoomAvailable,
		CreatedAt:    now,
	}
	in.Apply(r)
	return r
}

func (in RoomInput) Apply(r *Room) {
	if in.Name != nil {
		r.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		r.Type = *in.Type
	}
	if in.SizeSqm != nil {
		r.SizeSqm = *in.SizeSqm
	}
	if in.MaxOccupants != nil {
		r.MaxOccupants = *in.MaxOccupants
	}
	if in.RentAmount != nil {
		r.RentAmount = *in.RentAmount
	}
	if in.RentCurrency != nil {
		r.RentCurrency = *in.RentCurrency
	}
	if in.Amenities != nil {
		r.Amenities = NormalizeAmenities(in.Amenities)
	}
	if in.Images != nil {
		r.Images = in.Images
	}
	if in.Status != nil {
		r.Status = *in.Status
	}
	r.UpdatedAt = time.Now().UTC()
}

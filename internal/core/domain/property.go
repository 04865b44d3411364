package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyRoom      PropertyType = "room"
	PropertyStudio    PropertyType = "studio"
	PropertyDuplex    PropertyType = "duplex"
	PropertyPenthouse PropertyType = "penthouse"
	PropertyColiving  PropertyType = "coliving"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyApartment, PropertyHouse, PropertyRoom, PropertyStudio,
		PropertyDuplex, PropertyPenthouse, PropertyColiving:
		return true
	}
	return false
}

type PropertyStatus string

const (
	PropertyAvailable   PropertyStatus = "available"
	PropertyOccupied    PropertyStatus = "occupied"
	PropertyMaintenance PropertyStatus = "maintenance"
	PropertyOffline     PropertyStatus = "offline"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyAvailable, PropertyOccupied, PropertyMaintenance, PropertyOffline:
		return true
	}
	return false
}

type PaymentFrequency string

const (
	PaymentMonthly PaymentFrequency = "monthly"
	PaymentWeekly  PaymentFrequency = "weekly"
	PaymentDaily   PaymentFrequency = "daily"
)

func (f PaymentFrequency) Valid() bool {
	return f == PaymentMonthly || f == PaymentWeekly || f == PaymentDaily
}

// GeohashPrecision - точность geohash, с которой он хранится в БД.
const GeohashPrecision = 9

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCurrency проверяет код валюты ISO-4217.
func ValidCurrency(code string) bool {
	return currencyRe.MatchString(code)
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// String собирает адрес в одну строку для геокодера.
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Rent struct {
	Amount            float64          `json:"amount"`
	Currency          string           `json:"currency"`
	PaymentFrequency  PaymentFrequency `json:"payment_frequency"`
	Deposit           float64          `json:"deposit"`
	UtilitiesIncluded bool             `json:"utilities_included"`
}

// MonthlyAmount приводит аренду к месячной сумме.
func (r Rent) MonthlyAmount() float64 {
	switch r.PaymentFrequency {
	case PaymentWeekly:
		return r.Amount * 52 / 12
	case PaymentDaily:
		return r.Amount * 365 / 12
	default:
		return r.Amount
	}
}

// Location - координаты объекта.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

type Property struct {
	ID             uuid.UUID
	OwnerProfileID uuid.UUID
	Title          string
	Description    string
	Type           PropertyType
	Address        Address
	Location       *Location
	Geohash        string
	Bedrooms       int
	Bathrooms      int
	SquareMeters   float64
	Floor          *int
	Rent           Rent
	Amenities      []string
	Images         []string
	Status         PropertyStatus
	AvailableFrom  *time.Time
	IsFurnished    bool
	PetsAllowed    bool
	SmokingAllowed bool
	ViewsCount     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// OwnedBy проверяет, что объект принадлежит профилю.
func (p *Property) OwnedBy(profileID uuid.UUID) bool {
	return p != nil && p.OwnerProfileID == profileID
}

// PropertyInput - поля создания/изменения объекта. nil означает "не менять".
type PropertyInput struct {
	Title          *string
	Description    *string
	Type           *PropertyType
	Address        *Address
	Location       *Location
	Bedrooms       *int
	Bathrooms      *int
	SquareMeters   *float64
	Floor          *int
	Rent           *Rent
	Amenities      []string
	Images         []string
	Status         *PropertyStatus
	AvailableFrom  *time.Time
	IsFurnished    *bool
	PetsAllowed    *bool
	SmokingAllowed *bool
}

// Validate проверяет поля. При creating обязательные поля должны быть заданы.
func (in PropertyInput) Validate(creating bool) error {
	errs := ValidationErrors{}

	if creating {
		if in.Title == nil {
			errs.Add("title", "is required")
		}
		if in.Type == nil {
			errs.Add("type", "is required")
		}
		if in.Address == nil {
			errs.Add("address", "is required")
		}
		if in.Rent == nil {
			errs.Add("rent", "is required")
		}
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		errs.Add("title", "cannot be empty")
	}
	if in.Title != nil && len(*in.Title) > 200 {
		errs.Add("title", "must be at most 200 characters")
	}
	if in.Type != nil && !in.Type.Valid() {
		errs.Add("type", "unknown property type")
	}
	if in.Address != nil {
		if strings.TrimSpace(in.Address.City) == "" {
			errs.Add("address.city", "is required")
		}
		if strings.TrimSpace(in.Address.Country) == "" {
			errs.Add("address.country", "is required")
		}
	}
	if in.Location != nil && !in.Location.Valid() {
		errs.Add("location", "coordinates are out of range")
	}
	if in.Rent != nil {
		if in.Rent.Amount <= 0 {
			errs.Add("rent.amount", "must be greater than 0")
		}
		if !ValidCurrency(in.Rent.Currency) {
			errs.Add("rent.currency", "must be a 3-letter ISO-4217 code")
		}
		if in.Rent.PaymentFrequency != "" && !in.Rent.PaymentFrequency.Valid() {
			errs.Add("rent.payment_frequency", "must be monthly, weekly or daily")
		}
		if in.Rent.Deposit < 0 {
			errs.Add("rent.deposit", "cannot be negative")
		}
	}
	if in.Bedrooms != nil && *in.Bedrooms < 0 {
		errs.Add("bedrooms", "cannot be negative")
	}
	if in.Bathrooms != nil && *in.Bathrooms < 0 {
		errs.Add("bathrooms", "cannot be negative")
	}
	if in.SquareMeters != nil && *in.SquareMeters < 0 {
		errs.Add("square_meters", "cannot be negative")
	}
	if in.Status != nil && !in.Status.Valid() {
		errs.Add("status", "unknown property status")
	}

	return errs.Err()
}

// NewProperty собирает объект из проверенного ввода.
func NewProperty(ownerID uuid.UUID, in PropertyInput) *Property {
	now := time.Now().UTC()
	p := &Property{
		ID:             uuid.New(),
		OwnerProfileID: ownerID,
		Status:         PropertyAvailable,
		Amenities:      []string{},
		Images:         []string{},
		CreatedAt:      now,
	}
	in.Apply(p)
	if p.Rent.PaymentFrequency == "" {
		p.Rent.PaymentFrequency = PaymentMonthly
	}
	p.UpdatedAt = now
	return p
}

// Apply переносит заданные поля в объект.
func (in PropertyInput) Apply(p *Property) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.Location != nil {
		loc := *in.Location
		p.Location = &loc
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.SquareMeters != nil {
		p.SquareMeters = *in.SquareMeters
	}
	if in.Floor != nil {
		f := *in.Floor
		p.Floor = &f
	}
	if in.Rent != nil {
		p.Rent = *in.Rent
	}
	if in.Amenities != nil {
		p.Amenities = NormalizeAmenities(in.Amenities)
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.AvailableFrom != nil {
		t := in.AvailableFrom.UTC()
		p.AvailableFrom = &t
	}
	if in.IsFurnished != nil {
		p.IsFurnished = *in.IsFurnished
	}
	if in.PetsAllowed != nil {
		p.PetsAllowed = *in.PetsAllowed
	}
	if in.SmokingAllowed != nil {
		p.SmokingAllowed = *in.SmokingAllowed
	}
	p.UpdatedAt = time.Now().UTC()
}

// AddressChanged - нужно ли заново геокодировать адрес.
func (in PropertyInput) AddressChanged() bool {
	return in.Address != nil && in.Location == nil
}

type PropertySort string

const (
	SortNewest    PropertySort = "newest"
	SortPriceAsc  PropertySort = "price_asc"
	SortPriceDesc PropertySort = "price_desc"
)

func (s PropertySort) Valid() bool {
	return s == SortNewest || s == SortPriceAsc || s == SortPriceDesc
}

const (
	DefaultNearRadiusKm = 5.0
	MaxNearRadiusKm     = 500.0
)

// NearFilter - поиск в радиусе от точки.
type NearFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// PropertyFilter - фильтры списка объектов. Пустые поля не применяются.
type PropertyFilter struct {
	Type         *PropertyType
	City         string
	MinRent      *float64
	MaxRent      *float64
	MinBedrooms  *int
	Furnished    *bool
	PetsAllowed  *bool
	Amenities    []string
	Status       *PropertyStatus
	Search       string
	Near         *NearFilter
	Sort         PropertySort
	OwnerProfile *uuid.UUID
}

// Validate проверяет согласованность фильтров.
func (f PropertyFilter) Validate() error {
	errs := ValidationErrors{}
	if f.Type != nil && !f.Type.Valid() {
		errs.Add("type", "unknown property type")
	}
	if f.Status != nil && !f.Status.Valid() {
		errs.Add("status", "unknown property status")
	}
	if f.MinRent != nil && f.MaxRent != nil && *f.MinRent > *f.MaxRent {
		errs.Add("min_rent", "must not exceed max_rent")
	}
	if f.Sort != "" && !f.Sort.Valid() {
		errs.Add("sort", "must be newest, price_asc or price_desc")
	}
	if f.Near != nil {
		if !(Location{Latitude: f.Near.Latitude, Longitude: f.Near.Longitude}).Valid() {
			errs.Add("near", "coordinates are out of range")
		}
		if f.Near.RadiusKm <= 0 || f.Near.RadiusKm > MaxNearRadiusKm {
			errs.Add("radius", "must be between 0 and 500 km")
		}
	}
	return errs.Err()
}

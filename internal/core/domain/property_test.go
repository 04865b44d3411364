package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPropertyInput_ValidateCreate(t *testing.T) {
	typ := PropertyApartment
	in := PropertyInput{
		Title:   strPtr("Sunny flat"),
		Type:    &typ,
		Address: &Address{City: "Barcelona", Country: "ES"},
		Rent:    &Rent{Amount: 950, Currency: "EUR"},
	}
	require.NoError(t, in.Validate(true))

	p := NewProperty(uuid.New(), in)
	assert.Equal(t, PropertyAvailable, p.Status)
	assert.Equal(t, PaymentMonthly, p.Rent.PaymentFrequency)
	assert.Equal(t, "Sunny flat", p.Title)
}

func TestPropertyInput_ValidateErrors(t *testing.T) {
	typ := PropertyType("castle")
	beds := -1
	in := PropertyInput{
		Title:    strPtr(" "),
		Type:     &typ,
		Address:  &Address{City: "Madrid"},
		Rent:     &Rent{Amount: 0, Currency: "euro"},
		Bedrooms: &beds,
	}

	appErr := AsAppError(in.Validate(true))
	assert.Equal(t, CodeValidation, appErr.Code)
	for _, field := range []string{"title", "type", "address.country", "rent.amount", "rent.currency", "bedrooms"} {
		assert.Contains(t, appErr.Details, field)
	}
}

func TestPropertyFilter_Validate(t *testing.T) {
	minRent, maxRent := 900.0, 500.0
	err := PropertyFilter{MinRent: &minRent, MaxRent: &maxRent, Sort: "cheapest"}.Validate()
	appErr := AsAppError(err)
	assert.Contains(t, appErr.Details, "min_rent")
	assert.Contains(t, appErr.Details, "sort")

	assert.NoError(t, PropertyFilter{Near: &NearFilter{Latitude: 41.4, Longitude: 2.17, RadiusKm: 5}}.Validate())
}

func TestRent_MonthlyAmount(t *testing.T) {
	assert.InDelta(t, 1300.0, Rent{Amount: 300, PaymentFrequency: PaymentWeekly}.MonthlyAmount(), 0.001)
	assert.InDelta(t, 800.0, Rent{Amount: 800}.MonthlyAmount(), 0.001)
}

func TestAddress_String(t *testing.T) {
	a := Address{Street: "Carrer de Mallorca 401", City: "Barcelona", Country: "Spain"}
	assert.Equal(t, "Carrer de Mallorca 401, Barcelona, Spain", a.String())
}

package domain

import (
	"math"
	"sort"
	"strings"
)

type AmenityCategory string

const (
	AmenityEssential     AmenityCategory = "essential"
	AmenityComfort       AmenityCategory = "comfort"
	AmenityAccessibility AmenityCategory = "accessibility"
	AmenityEco           AmenityCategory = "eco"
	AmenitySecurity      AmenityCategory = "security"
	AmenityOutdoor       AmenityCategory = "outdoor"
	AmenityTechnology    AmenityCategory = "technology"
)

// Amenity - удобство из справочника. MonthlyCost - вклад в справедливую цену.
type Amenity struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    AmenityCategory `json:"category"`
	MonthlyCost float64         `json:"monthly_cost"`
	Accessible  bool            `json:"accessible"`
	Essential   bool            `json:"essential"`
}

const (
	// RentFloorPerSqm - базовая ставка за м2, не зависит от города.
	RentFloorPerSqm = 8.0
	// FairMargin - допустимая наценка сверх расчетной цены.
	FairMargin = 1.10
)

// Справочник удобств. Essential входят в пригодность жилья и цену не поднимают.
var amenityCatalog = []Amenity{
	{ID: "heating", Name: "Heating", Category: AmenityEssential, MonthlyCost: 0, Essential: true},
	{ID: "water", Name: "Running Water", Category: AmenityEssential, MonthlyCost: 0, Essential: true},
	{ID: "electricity", Name: "Electricity", Category: AmenityEssential, MonthlyCost: 0, Essential: true},
	{ID: "kitchen", Name: "Kitchen", Category: AmenityEssential, MonthlyCost: 0, Essential: true},
	{ID: "bathroom", Name: "Private Bathroom", Category: AmenityEssential, MonthlyCost: 0, Essential: true},
	{ID: "smoke_detector", Name: "Smoke Detector", Category: AmenityEssential, MonthlyCost: 0, Essential: true},
	{ID: "wifi", Name: "Wi-Fi", Category: AmenityTechnology, MonthlyCost: 25},
	{ID: "smart_home", Name: "Smart Home", Category: AmenityTechnology, MonthlyCost: 20},
	{ID: "air_conditioning", Name: "Air Conditioning", Category: AmenityComfort, MonthlyCost: 40},
	{ID: "washing_machine", Name: "Washing Machine", Category: AmenityComfort, MonthlyCost: 20},
	{ID: "dishwasher", Name: "Dishwasher", Category: AmenityComfort, MonthlyCost: 15},
	{ID: "furnished", Name: "Furnished", Category: AmenityComfort, MonthlyCost: 60},
	{ID: "gym", Name: "Gym", Category: AmenityComfort, MonthlyCost: 35},
	{ID: "pool", Name: "Swimming Pool", Category: AmenityOutdoor, MonthlyCost: 50},
	{ID: "balcony", Name: "Balcony", Category: AmenityOutdoor, MonthlyCost: 30},
	{ID: "garden", Name: "Garden", Category: AmenityOutdoor, MonthlyCost: 40},
	{ID: "terrace", Name: "Terrace", Category: AmenityOutdoor, MonthlyCost: 45},
	{ID: "parking", Name: "Parking", Category: AmenityComfort, MonthlyCost: 50},
	{ID: "elevator", Name: "Elevator", Category: AmenityAccessibility, MonthlyCost: 0, Accessible: true},
	{ID: "wheelchair_access", Name: "Wheelchair Access", Category: AmenityAccessibility, MonthlyCost: 0, Accessible: true},
	{ID: "step_free_entry", Name: "Step-free Entry", Category: AmenityAccessibility, MonthlyCost: 0, Accessible: true},
	{ID: "solar_panels", Name: "Solar Panels", Category: AmenityEco, MonthlyCost: 10},
	{ID: "recycling", Name: "Recycling Station", Category: AmenityEco, MonthlyCost: 0},
	{ID: "ev_charging", Name: "EV Charging", Category: AmenityEco, MonthlyCost: 25},
	{ID: "security_system", Name: "Security System", Category: AmenitySecurity, MonthlyCost: 20},
	{ID: "doorman", Name: "Doorman", Category: AmenitySecurity, MonthlyCost: 40},
}

var amenityIndex = func() map[string]Amenity {
	idx := make(map[string]Amenity, len(amenityCatalog))
	for _, a := range amenityCatalog {
		idx[a.ID] = a
	}
	return idx
}()

// AmenityCatalog возвращает копию справочника.
func AmenityCatalog() []Amenity {
	out := make([]Amenity, len(amenityCatalog))
	copy(out, amenityCatalog)
	return out
}

// LookupAmenity ищет удобство по id.
func LookupAmenity(id string) (Amenity, bool) {
	a, ok := amenityIndex[strings.ToLower(strings.TrimSpace(id))]
	return a, ok
}

// NormalizeAmenities приводит id к нижнему регистру и убирает дубли, сохраняя порядок.
func NormalizeAmenities(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type AmenityContribution struct {
	AmenityID string  `json:"amenity_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Essential bool    `json:"essential"`
}

// EthicalPrice - результат расчета справедливой цены.
type EthicalPrice struct {
	BasePrice        float64               `json:"base_price"`
	AmenitySurcharge float64               `json:"amenity_surcharge"`
	EthicalMax       float64               `json:"ethical_max"`
	CurrentRent      float64               `json:"current_rent"`
	IsFair           bool                  `json:"is_fair"`
	Breakdown        []AmenityContribution `json:"breakdown"`
	UnknownAmenities []string              `json:"unknown_amenities"`
	AccessibleCount  int                   `json:"accessible_count"`
}

// CalculateEthicalPrice считает максимальную справедливую аренду.
// Если baseRent <= 0, база считается от площади по RentFloorPerSqm.
func CalculateEthicalPrice(baseRent, sqm, currentRent float64, amenities []string) EthicalPrice {
	base := baseRent
	if base <= 0 {
		base = RentFloorPerSqm * math.Max(sqm, 0)
	}

	res := EthicalPrice{
		BasePrice:        round2(base),
		CurrentRent:      round2(currentRent),
		Breakdown:        []AmenityContribution{},
		UnknownAmenities: []string{},
	}

	surcharge := 0.0
	for _, id := range NormalizeAmenities(amenities) {
		a, ok := amenityIndex[id]
		if !ok {
			res.UnknownAmenities = append(res.UnknownAmenities, id)
			continue
		}
		amount := a.MonthlyCost
		if a.Essential {
			amount = 0
		}
		if a.Accessible {
			res.AccessibleCount++
		}
		surcharge += amount
		res.Breakdown = append(res.Breakdown, AmenityContribution{
			AmenityID: a.ID,
			Name:      a.Name,
			Amount:    amount,
			Essential: a.Essential,
		})
	}
	sort.SliceStable(res.Breakdown, func(i, j int) bool {
		return res.Breakdown[i].Amount > res.Breakdown[j].Amount
	})

	res.AmenitySurcharge = round2(surcharge)
	res.EthicalMax = round2((base + surcharge) * FairMargin)
	res.IsFair = res.CurrentRent <= res.EthicalMax
	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

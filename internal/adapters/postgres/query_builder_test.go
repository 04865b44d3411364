package postgres_adapter

import (
	"strings"
	"testing"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPropertyFilters_Empty(t *testing.T) {
	where, orderBy, args := applyPropertyFilters(domain.PropertyFilter{})

	assert.Equal(t, "WHERE p.deleted_at IS NULL", where)
	assert.Equal(t, "ORDER BY p.created_at DESC, p.id", orderBy)
	assert.Empty(t, args)
}

func TestApplyPropertyFilters_AllScalarFilters(t *testing.T) {
	status := domain.PropertyAvailable
	typ := domain.PropertyApartment
	minRent, maxRent := 500.0, 1500.0
	bedrooms := 2
	furnished := true
	owner := uuid.New()

	where, orderBy, args := applyPropertyFilters(domain.PropertyFilter{
		OwnerProfile: &owner,
		Status:       &status,
		Type:         &typ,
		City:         " Barcelona ",
		MinRent:      &minRent,
		MaxRent:      &maxRent,
		MinBedrooms:  &bedrooms,
		Furnished:    &furnished,
		Amenities:    []string{"wifi", "balcony"},
		Sort:         domain.SortPriceAsc,
	})

	assert.Contains(t, where, "p.owner_profile_id = $1")
	assert.Contains(t, where, "p.status = $2")
	assert.Contains(t, where, "p.property_type = $3")
	assert.Contains(t, where, "lower(p.city) = lower($4)")
	assert.Contains(t, where, "p.rent_amount >= $5")
	assert.Contains(t, where, "p.rent_amount <= $6")
	assert.Contains(t, where, "p.bedrooms >= $7")
	assert.Contains(t, where, "p.is_furnished = $8")
	assert.Contains(t, where, "p.amenities @> $9")
	assert.Equal(t, "ORDER BY p.rent_amount ASC, p.id", orderBy)

	require.Len(t, args, 9)
	assert.Equal(t, owner, args[0])
	assert.Equal(t, "available", args[1])
	assert.Equal(t, "Barcelona", args[3])
	assert.Equal(t, 500.0, args[4])
}

func TestApplyPropertyFilters_SearchEscapesWildcards(t *testing.T) {
	where, _, args := applyPropertyFilters(domain.PropertyFilter{Search: "100%_loft"})

	assert.Contains(t, where, "p.title ILIKE $1 OR p.description ILIKE $1")
	require.Len(t, args, 1)
	assert.Equal(t, `%100\%\_loft%`, args[0])
}

func TestApplyPropertyFilters_Near(t *testing.T) {
	near := &domain.NearFilter{Latitude: 41.3874, Longitude: 2.1686, RadiusKm: 3}

	where, orderBy, args := applyPropertyFilters(domain.PropertyFilter{Near: near})

	assert.Contains(t, where, "left(p.geohash, 5) = ANY($1)")
	assert.Contains(t, where, "<= $4")
	assert.True(t, strings.HasPrefix(orderBy, "ORDER BY (2 * 6371"))
	require.Len(t, args, 4)

	prefixes, ok := args[0].([]string)
	require.True(t, ok)
	assert.Len(t, prefixes, 9)
	assert.Equal(t, geohash.EncodeWithPrecision(near.Latitude, near.Longitude, 5), prefixes[0])
	assert.Equal(t, 3.0, args[3])
}

func TestApplyPropertyFilters_NearKeepsExplicitSort(t *testing.T) {
	_, orderBy, _ := applyPropertyFilters(domain.PropertyFilter{
		Near: &domain.NearFilter{Latitude: 40.4168, Longitude: -3.7038, RadiusKm: 10},
		Sort: domain.SortPriceDesc,
	})
	assert.Equal(t, "ORDER BY p.rent_amount DESC, p.id", orderBy)
}

func TestSearchPrecision(t *testing.T) {
	tests := []struct {
		radius float64
		want   uint
	}{
		{0.1, 7},
		{0.5, 6},
		{3, 5},
		{10, 4},
		{100, 3},
		{500, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, searchPrecision(0, tt.radius), "radius %v", tt.radius)
	}
}

func TestHaversineKm(t *testing.T) {
	// Барселона - Мадрид, около 505 км
	d := haversineKm(41.3874, 2.1686, 40.4168, -3.7038)
	assert.InDelta(t, 505, d, 5)
	assert.Zero(t, haversineKm(10, 10, 10, 10))
}

func TestSearchPrecision_ShrinksWithLatitude(t *testing.T) {
	assert.Equal(t, uint(5), searchPrecision(41.39, 3))
	assert.Equal(t, uint(4), searchPrecision(52.52, 4))
	assert.Less(t, searchPrecision(80, 3), searchPrecision(0, 3))
}

// Точка внутри радиуса всегда попадает в одну из ячеек-префиксов.
func TestNearPrefixesCoverRadius(t *testing.T) {
	near := domain.NearFilter{Latitude: 52.52, Longitude: 13.405, RadiusKm: 4}
	prefixes, precision := nearPrefixes(near)

	set := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		set[p] = struct{}{}
	}

	for _, offset := range [][2]float64{{0.03, 0}, {-0.03, 0}, {0, 0.05}, {0, -0.05}, {0.02, 0.03}} {
		lat, lon := near.Latitude+offset[0], near.Longitude+offset[1]
		require.LessOrEqual(t, haversineKm(near.Latitude, near.Longitude, lat, lon), near.RadiusKm)
		hash := geohash.EncodeWithPrecision(lat, lon, precision)
		_, ok := set[hash]
		assert.True(t, ok, "point %v,%v not covered", lat, lon)
	}
}

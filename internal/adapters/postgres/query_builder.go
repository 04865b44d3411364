package postgres_adapter

import (
	"fmt"
	"math"
	"strings"

	"homiio/internal/core/domain"

	"github.com/mmcloughlin/geohash"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder(base ...string) *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: append([]string{}, base...),
		args:       make([]interface{}, 0),
	}
}

// arg регистрирует аргумент и возвращает его плейсхолдер.
func (qb *queryBuilder) arg(v interface{}) string {
	qb.args = append(qb.args, v)
	ph := fmt.Sprintf("$%d", qb.argId)
	qb.argId++
	return ph
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.arg(arg)))
}

func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= %s", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= %s", fieldName, *max)
	}
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

const earthRadiusKm = 6371.0

const kmPerDegree = 111.32

// geohashCell - размер ячейки geohash заданной длины в градусах.
func geohashCell(precision uint) (latDeg, lonDeg float64) {
	bits := 5 * precision
	lonBits := (bits + 1) / 2
	latBits := bits / 2
	return 180 / math.Pow(2, float64(latBits)), 360 / math.Pow(2, float64(lonBits))
}

// searchPrecision - самая длинная длина префикса, ячейка которой по обеим осям
// не меньше радиуса на данной широте. Вместе с 8 соседями такая сетка покрывает весь круг.
func searchPrecision(latitude, radiusKm float64) uint {
	cos := math.Max(math.Cos(latitude*math.Pi/180), 0.01)
	needLat := radiusKm / kmPerDegree
	needLon := radiusKm / (kmPerDegree * cos)

	precision := uint(1)
	for p := uint(2); p <= domain.GeohashPrecision; p++ {
		latDeg, lonDeg := geohashCell(p)
		if latDeg < needLat || lonDeg < needLon {
			break
		}
		precision = p
	}
	return precision
}

// nearPrefixes - префиксы ячейки точки и ее соседей.
func nearPrefixes(near domain.NearFilter) ([]string, uint) {
	precision := searchPrecision(near.Latitude, near.RadiusKm)
	center := geohash.EncodeWithPrecision(near.Latitude, near.Longitude, precision)
	prefixes := append([]string{center}, geohash.Neighbors(center)...)
	return prefixes, precision
}

// haversineKm - расстояние по большой окружности.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

const haversineSQL = `(2 * %[1]g * asin(least(1, sqrt(
	power(sin(radians(p.latitude - %[2]s) / 2), 2) +
	cos(radians(%[2]s)) * cos(radians(p.latitude)) * power(sin(radians(p.longitude - %[3]s) / 2), 2)))))`

// applyPropertyFilters строит WHERE и ORDER BY для списка объектов.
func applyPropertyFilters(f domain.PropertyFilter) (where string, orderBy string, args []interface{}) {
	qb := newQueryBuilder("p.deleted_at IS NULL")

	if f.OwnerProfile != nil {
		qb.addCondition("%s = %s", "p.owner_profile_id", *f.OwnerProfile)
	}
	if f.Status != nil {
		qb.addCondition("%s = %s", "p.status", string(*f.Status))
	}
	if f.Type != nil {
		qb.addCondition("%s = %s", "p.property_type", string(*f.Type))
	}
	if city := strings.TrimSpace(f.City); city != "" {
		qb.addCondition("lower(%s) = lower(%s)", "p.city", city)
	}
	qb.AddFloatFilter("p.rent_amount", f.MinRent, f.MaxRent)
	if f.MinBedrooms != nil {
		qb.addCondition("%s >= %s", "p.bedrooms", *f.MinBedrooms)
	}
	if f.Furnished != nil {
		qb.addCondition("%s = %s", "p.is_furnished", *f.Furnished)
	}
	if f.PetsAllowed != nil {
		qb.addCondition("%s = %s", "p.pets_allowed", *f.PetsAllowed)
	}
	if amenities := domain.NormalizeAmenities(f.Amenities); len(amenities) > 0 {
		// все запрошенные удобства должны быть у объекта
		qb.addCondition("%s @> %s", "p.amenities", amenities)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		ph := qb.arg("%" + escapeLike(search) + "%")
		qb.conditions = append(qb.conditions, fmt.Sprintf("(p.title ILIKE %[1]s OR p.description ILIKE %[1]s OR p.street ILIKE %[1]s)", ph))
	}

	orderBy = "ORDER BY p.created_at DESC, p.id"
	switch f.Sort {
	case domain.SortPriceAsc:
		orderBy = "ORDER BY p.rent_amount ASC, p.id"
	case domain.SortPriceDesc:
		orderBy = "ORDER BY p.rent_amount DESC, p.id"
	}

	if f.Near != nil {
		prefixes, precision := nearPrefixes(*f.Near)
		qb.conditions = append(qb.conditions, fmt.Sprintf("left(p.geohash, %d) = ANY(%s)", precision, qb.arg(prefixes)))

		lat := qb.arg(f.Near.Latitude)
		lon := qb.arg(f.Near.Longitude)
		distance := fmt.Sprintf(haversineSQL, earthRadiusKm, lat, lon)
		qb.conditions = append(qb.conditions, fmt.Sprintf("%s <= %s", distance, qb.arg(f.Near.RadiusKm)))
		if f.Sort == "" {
			orderBy = "ORDER BY " + distance + " ASC, p.id"
		}
	}

	return qb.where(), orderBy, qb.args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

package rest

import (
	"net/http"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type PropertyHandler struct {
	createUC     usecases_port.CreatePropertyUseCasePort
	getUC        usecases_port.GetPropertyUseCasePort
	listUC       usecases_port.ListPropertiesUseCasePort
	listOwnerUC  usecases_port.ListOwnerPropertiesUseCasePort
	updateUC     usecases_port.UpdatePropertyUseCasePort
	deleteUC     usecases_port.DeletePropertyUseCasePort
	pricingUC    usecases_port.GetPropertyPricingUseCasePort
	recordViewUC usecases_port.RecordPropertyViewUseCasePort
}

func NewPropertyHandler(
	createUC usecases_port.CreatePropertyUseCasePort,
	getUC usecases_port.GetPropertyUseCasePort,
	listUC usecases_port.ListPropertiesUseCasePort,
	listOwnerUC usecases_port.ListOwnerPropertiesUseCasePort,
	updateUC usecases_port.UpdatePropertyUseCasePort,
	deleteUC usecases_port.DeletePropertyUseCasePort,
	pricingUC usecases_port.GetPropertyPricingUseCasePort,
	recordViewUC usecases_port.RecordPropertyViewUseCasePort,
) *PropertyHandler {
	return &PropertyHandler{
		createUC:     createUC,
		getUC:        getUC,
		listUC:       listUC,
		listOwnerUC:  listOwnerUC,
		updateUC:     updateUC,
		deleteUC:     deleteUC,
		pricingUC:    pricingUC,
		recordViewUC: recordViewUC,
	}
}

// parsePropertyFilter собирает фильтры из query-параметров.
func parsePropertyFilter(q *queryParser) domain.PropertyFilter {
	filter := domain.PropertyFilter{
		City:        q.String("city"),
		MinRent:     q.Float("min_rent"),
		MaxRent:     q.Float("max_rent"),
		MinBedrooms: q.Int("bedrooms"),
		Furnished:   q.Bool("furnished"),
		PetsAllowed: q.Bool("pets"),
		Amenities:   q.StringSlice("amenities"),
		Search:      q.String("search"),
		Sort:        domain.PropertySort(q.String("sort")),
	}
	if v := q.String("type"); v != "" {
		t := domain.PropertyType(v)
		filter.Type = &t
	}
	if v := q.String("status"); v != "" {
		s := domain.PropertyStatus(v)
		filter.Status = &s
	}

	lat, lng, radius := q.Float("lat"), q.Float("lng"), q.Float("radius")
	if lat != nil || lng != nil || radius != nil {
		if lat == nil || lng == nil {
			q.errs.Add("near", "lat and lng must be provided together")
		} else {
			near := &domain.NearFilter{Latitude: *lat, Longitude: *lng, RadiusKm: domain.DefaultNearRadiusKm}
			if radius != nil {
				near.RadiusKm = *radius
			}
			filter.Near = near
		}
	}
	return filter
}

// ListProperties обрабатывает GET /api/properties
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListProperties"})

	q := newQueryParser(r)
	filter := parsePropertyFilter(q)
	page := q.Page()
	if err := q.Err(); err != nil {
		WriteError(w, r, err)
		return
	}

	result, err := h.listUC.Execute(r.Context(), filter, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Debug("Properties listed", port.Fields{"total": result.TotalCount})
	RespondWithJSON(w, http.StatusOK, toPaginated(result, toPropertyResponse))
}

// GetProperty обрабатывает GET /api/properties/{propertyID}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "propertyID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	property, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

func (h *PropertyHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "propertyID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	price, err := h.pricingUC.Execute(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, price)
}

// ListAmenities отдает справочник удобств.
func (h *PropertyHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, domain.AmenityCatalog())
}

// CreateProperty обрабатывает POST /api/properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateProperty"})

	var req PropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		WriteError(w, r, err)
		return
	}

	property, err := h.createUC.Execute(r.Context(), profile.ID, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	handlerLogger.Info("Property created", port.Fields{"property_id": property.ID.String()})
	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*property))
}

func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "propertyID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req PropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		WriteError(w, r, err)
		return
	}

	property, err := h.updateUC.Execute(r.Context(), profile.ID, id, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "propertyID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), profile.ID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Property deleted")
}

// ListMyProperties обрабатывает GET /api/properties/owner/me
func (h *PropertyHandler) ListMyProperties(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	q := newQueryParser(r)
	page := q.Page()
	if err := q.Err(); err != nil {
		WriteError(w, r, err)
		return
	}

	result, err := h.listOwnerUC.Execute(r.Context(), profile.ID, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPaginated(result, toPropertyResponse))
}

// RecordView обрабатывает POST /api/properties/{propertyID}/views. Аноним тоже считается.
func (h *PropertyHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "propertyID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var viewer *uuid.UUID
	if profile, ok := contextkeys.ProfileFromContext(r.Context()); ok {
		viewer = &profile.ID
	}

	if err := h.recordViewUC.Execute(r.Context(), viewer, id); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "View recorded")
}

package rest

import (
	"net/http"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type ViewingHandler struct {
	createUC       usecases_port.CreateViewingRequestUseCasePort
	listMineUC     usecases_port.ListMyViewingRequestsUseCasePort
	listPropertyUC usecases_port.ListPropertyViewingRequestsUseCasePort
	getUC          usecases_port.GetViewingRequestUseCasePort
	approveUC      usecases_port.DecideViewingRequestUseCasePort
	declineUC      usecases_port.DecideViewingRequestUseCasePort
	cancelUC       usecases_port.CancelViewingRequestUseCasePort
}

func NewViewingHandler(
	createUC usecases_port.CreateViewingRequestUseCasePort,
	listMineUC usecases_port.ListMyViewingRequestsUseCasePort,
	listPropertyUC usecases_port.ListPropertyViewingRequestsUseCasePort,
	getUC usecases_port.GetViewingRequestUseCasePort,
	approveUC usecases_port.DecideViewingRequestUseCasePort,
	declineUC usecases_port.DecideViewingRequestUseCasePort,
	cancelUC usecases_port.CancelViewingRequestUseCasePort,
) *ViewingHandler {
	return &ViewingHandler{
		createUC:       createUC,
		listMineUC:     listMineUC,
		listPropertyUC: listPropertyUC,
		getUC:          getUC,
		approveUC:      approveUC,
		declineUC:      declineUC,
		cancelUC:       cancelUC,
	}
}

func parseViewingFilter(q *queryParser) domain.ViewingFilter {
	var filter domain.ViewingFilter
	if v := q.String("status"); v != "" {
		status := domain.ViewingStatus(v)
		filter.Status = &status
	}
	return filter
}

func (h *ViewingHandler) CreateViewing(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req CreateViewingRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.PropertyID == uuid.Nil {
		WriteError(w, r, domain.NewValidation("invalid viewing request", map[string]string{
			"property_id": "is required",
		}))
		return
	}

	viewing, err := h.createUC.Execute(r.Context(), profile.ID, req.PropertyID, req.ScheduledAt, req.Message)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	contextkeys.LoggerFromContext(r.Context()).Info("Viewing requested", port.Fields{
		"viewing_id":  viewing.ID.String(),
		"property_id": viewing.PropertyID.String(),
	})
	RespondWithJSON(w, http.StatusCreated, toViewingResponse(*viewing))
}

// ListMyViewings обрабатывает GET /api/viewings/me: заявки, отправленные профилем.
func (h *ViewingHandler) ListMyViewings(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	q := newQueryParser(r)
	filter := parseViewingFilter(q)
	page := q.Page()
	if err := q.Err(); err != nil {
		WriteError(w, r, err)
		return
	}

	result, err := h.listMineUC.Execute(r.Context(), profile.ID, filter, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPaginated(result, toViewingResponse))
}

// ListPropertyViewings обрабатывает GET /api/properties/{propertyID}/viewings (только владелец).
func (h *ViewingHandler) ListPropertyViewings(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	propertyID, err := uuidParam(r, "propertyID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	q := newQueryParser(r)
	filter := parseViewingFilter(q)
	page := q.Page()
	if err := q.Err(); err != nil {
		WriteError(w, r, err)
		return
	}

	result, err := h.listPropertyUC.Execute(r.Context(), profile.ID, propertyID, filter, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPaginated(result, toViewingResponse))
}

func (h *ViewingHandler) GetViewing(w http.ResponseWriter, r *http.Request) {
	h.withViewing(w, r, func(actorID, id uuid.UUID) (*domain.ViewingRequest, error) {
		return h.getUC.Execute(r.Context(), actorID, id)
	})
}

func (h *ViewingHandler) ApproveViewing(w http.ResponseWriter, r *http.Request) {
	var req ViewingDecisionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	h.withViewing(w, r, func(actorID, id uuid.UUID) (*domain.ViewingRequest, error) {
		return h.approveUC.Execute(r.Context(), actorID, id, req.Note)
	})
}

func (h *ViewingHandler) DeclineViewing(w http.ResponseWriter, r *http.Request) {
	var req ViewingDecisionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	h.withViewing(w, r, func(actorID, id uuid.UUID) (*domain.ViewingRequest, error) {
		return h.declineUC.Execute(r.Context(), actorID, id, req.Note)
	})
}

func (h *ViewingHandler) CancelViewing(w http.ResponseWriter, r *http.Request) {
	h.withViewing(w, r, func(actorID, id uuid.UUID) (*domain.ViewingRequest, error) {
		return h.cancelUC.Execute(r.Context(), actorID, id)
	})
}

func (h *ViewingHandler) withViewing(w http.ResponseWriter, r *http.Request, op func(actorID, id uuid.UUID) (*domain.ViewingRequest, error)) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "viewingID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	viewing, err := op(profile.ID, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toViewingResponse(*viewing))
}

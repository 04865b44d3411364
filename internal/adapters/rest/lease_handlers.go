package rest

import (
	"net/http"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type LeaseHandler struct {
	createUC    usecases_port.CreateLeaseUseCasePort
	getUC       usecases_port.GetLeaseUseCasePort
	listUC      usecases_port.ListLeasesUseCasePort
	updateUC    usecases_port.UpdateLeaseUseCasePort
	submitUC    usecases_port.SubmitLeaseUseCasePort
	signUC      usecases_port.SignLeaseUseCasePort
	terminateUC usecases_port.TerminateLeaseUseCasePort
}

func NewLeaseHandler(
	createUC usecases_port.CreateLeaseUseCasePort,
	getUC usecases_port.GetLeaseUseCasePort,
	listUC usecases_port.ListLeasesUseCasePort,
	updateUC usecases_port.UpdateLeaseUseCasePort,
	submitUC usecases_port.SubmitLeaseUseCasePort,
	signUC usecases_port.SignLeaseUseCasePort,
	terminateUC usecases_port.TerminateLeaseUseCasePort,
) *LeaseHandler {
	return &LeaseHandler{
		createUC:    createUC,
		getUC:       getUC,
		listUC:      listUC,
		updateUC:    updateUC,
		submitUC:    submitUC,
		signUC:      signUC,
		terminateUC: terminateUC,
	}
}

func (h *LeaseHandler) CreateLease(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req LeaseRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		WriteError(w, r, err)
		return
	}

	lease, err := h.createUC.Execute(r.Context(), profile.ID, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	contextkeys.LoggerFromContext(r.Context()).Info("Lease drafted", port.Fields{"lease_id": lease.ID.String()})
	RespondWithJSON(w, http.StatusCreated, toLeaseResponse(*lease))
}

// ListLeases обрабатывает GET /api/leases?role=tenant|landlord|any&status=...
func (h *LeaseHandler) ListLeases(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	q := newQueryParser(r)
	filter := domain.LeaseFilter{Role: domain.LeaseRole(q.String("role"))}
	if filter.Role == "" {
		filter.Role = domain.LeaseRoleAny
	}
	if v := q.String("status"); v != "" {
		status := domain.LeaseStatus(v)
		filter.Status = &status
	}
	page := q.Page()
	if err := q.Err(); err != nil {
		WriteError(w, r, err)
		return
	}

	result, err := h.listUC.Execute(r.Context(), profile.ID, filter, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPaginated(result, toLeaseResponse))
}

func (h *LeaseHandler) GetLease(w http.ResponseWriter, r *http.Request) {
	h.withLease(w, r, func(actorID, id uuid.UUID) (*domain.Lease, error) {
		return h.getUC.Execute(r.Context(), actorID, id)
	})
}

func (h *LeaseHandler) UpdateLease(w http.ResponseWriter, r *http.Request) {
	var req LeaseRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		WriteError(w, r, err)
		return
	}

	h.withLease(w, r, func(actorID, id uuid.UUID) (*domain.Lease, error) {
		return h.updateUC.Execute(r.Context(), actorID, id, in)
	})
}

func (h *LeaseHandler) SubmitLease(w http.ResponseWriter, r *http.Request) {
	h.withLease(w, r, func(actorID, id uuid.UUID) (*domain.Lease, error) {
		return h.submitUC.Execute(r.Context(), actorID, id)
	})
}

func (h *LeaseHandler) SignLease(w http.ResponseWriter, r *http.Request) {
	h.withLease(w, r, func(actorID, id uuid.UUID) (*domain.Lease, error) {
		return h.signUC.Execute(r.Context(), actorID, id)
	})
}

func (h *LeaseHandler) TerminateLease(w http.ResponseWriter, r *http.Request) {
	var req TerminateLeaseRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	h.withLease(w, r, func(actorID, id uuid.UUID) (*domain.Lease, error) {
		return h.terminateUC.Execute(r.Context(), actorID, id, req.Reason)
	})
}

// withLease - общий каркас для операций над одним договором.
func (h *LeaseHandler) withLease(w http.ResponseWriter, r *http.Request, op func(actorID, id uuid.UUID) (*domain.Lease, error)) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "leaseID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	lease, err := op(profile.ID, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toLeaseResponse(*lease))
}

package rest

import (
	"net/http"

	"homiio/internal/contextkeys"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"
)

type ProfileHandler struct {
	listUC     usecases_port.ListProfilesUseCasePort
	getUC      usecases_port.GetProfileUseCasePort
	createUC   usecases_port.CreateProfileUseCasePort
	updateUC   usecases_port.UpdateProfileUseCasePort
	activateUC usecases_port.ActivateProfileUseCasePort
	deleteUC   usecases_port.DeleteProfileUseCasePort

	saveUC       usecases_port.SavePropertyUseCasePort
	unsaveUC     usecases_port.UnsavePropertyUseCasePort
	listSavedUC  usecases_port.ListSavedPropertiesUseCasePort
	listRecentUC usecases_port.ListRecentlyViewedUseCasePort
}

func NewProfileHandler(
	listUC usecases_port.ListProfilesUseCasePort,
	getUC usecases_port.GetProfileUseCasePort,
	createUC usecases_port.CreateProfileUseCasePort,
	updateUC usecases_port.UpdateProfileUseCasePort,
	activateUC usecases_port.ActivateProfileUseCasePort,
	deleteUC usecases_port.DeleteProfileUseCasePort,
	saveUC usecases_port.SavePropertyUseCasePort,
	unsaveUC usecases_port.UnsavePropertyUseCasePort,
	listSavedUC usecases_port.ListSavedPropertiesUseCasePort,
	listRecentUC usecases_port.ListRecentlyViewedUseCasePort,
) *ProfileHandler {
	return &ProfileHandler{
		listUC:       listUC,
		getUC:        getUC,
		createUC:     createUC,
		updateUC:     updateUC,
		activateUC:   activateUC,
		deleteUC:     deleteUC,
		saveUC:       saveUC,
		unsaveUC:     unsaveUC,
		listSavedUC:  listSavedUC,
		listRecentUC: listRecentUC,
	}
}

// Me обрабатывает GET /api/users/me: пользователь Oxy и его активный профиль.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, identity, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MeResponse{User: identity, Profile: toProfileResponse(*profile)})
}

func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	_, identity, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	profiles, err := h.listUC.Execute(r.Context(), identity)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, mapSlice(profiles, toProfileResponse))
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "profileID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	profile, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toProfileResponse(*profile))
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	_, identity, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	profile, err := h.createUC.Execute(r.Context(), identity, req.toInput())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	contextkeys.LoggerFromContext(r.Context()).Info("Profile created", port.Fields{
		"new_profile_id": profile.ID.String(),
		"type":           profile.Type,
	})
	RespondWithJSON(w, http.StatusCreated, toProfileResponse(*profile))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, identity, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "profileID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	profile, err := h.updateUC.Execute(r.Context(), identity, id, req.toInput())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toProfileResponse(*profile))
}

func (h *ProfileHandler) ActivateProfile(w http.ResponseWriter, r *http.Request) {
	_, identity, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "profileID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	profile, err := h.activateUC.Execute(r.Context(), identity, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toProfileResponse(*profile))
}

func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	_, identity, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "profileID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), identity, id); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Profile deleted")
}

// ListSaved обрабатывает GET /api/users/me/saved
func (h *ProfileHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.listSavedUC.Execute(r.Context(), profile.ID, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPaginated(result, toPropertyResponse))
}

func (h *ProfileHandler) SaveProperty(w http.ResponseWriter, r *http.Request) {
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

	var req SavePropertyRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.saveUC.Execute(r.Context(), profile.ID, propertyID, req.Notes); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Property saved")
}

func (h *ProfileHandler) UnsaveProperty(w http.ResponseWriter, r *http.Request) {
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

	if err := h.unsaveUC.Execute(r.Context(), profile.ID, propertyID); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Property removed from saved")
}

func (h *ProfileHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	properties, err := h.listRecentUC.Execute(r.Context(), profile.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, mapSlice(properties, toPropertyResponse))
}

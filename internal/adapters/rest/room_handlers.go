package rest

import (
	"net/http"

	"homiio/internal/core/port/usecases_port"
)

type RoomHandler struct {
	createUC usecases_port.CreateRoomUseCasePort
	listUC   usecases_port.ListRoomsUseCasePort
	getUC    usecases_port.GetRoomUseCasePort
	updateUC usecases_port.UpdateRoomUseCasePort
	deleteUC usecases_port.DeleteRoomUseCasePort
}

func NewRoomHandler(
	createUC usecases_port.CreateRoomUseCasePort,
	listUC usecases_port.ListRoomsUseCasePort,
	getUC usecases_port.GetRoomUseCasePort,
	updateUC usecases_port.UpdateRoomUseCasePort,
	deleteUC usecases_port.DeleteRoomUseCasePort,
) *RoomHandler {
	return &RoomHandler{createUC: createUC, listUC: listUC, getUC: getUC, updateUC: updateUC, deleteUC: deleteUC}
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuidParam(r, "propertyID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	rooms, err := h.listUC.Execute(r.Context(), propertyID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, mapSlice(rooms, toRoomResponse))
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
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

	var req RoomRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	room, err := h.createUC.Execute(r.Context(), profile.ID, propertyID, req.toInput())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, toRoomResponse(*room))
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "roomID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	room, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toRoomResponse(*room))
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "roomID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req RoomRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	room, err := h.updateUC.Execute(r.Context(), profile.ID, id, req.toInput())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toRoomResponse(*room))
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "roomID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), profile.ID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Room deleted")
}

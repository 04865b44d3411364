package rest

import (
	"net/http"

	"homiio/internal/core/port/usecases_port"
)

type ChatHandler struct {
	sendUC   usecases_port.SendChatMessageUseCasePort
	listUC   usecases_port.ListConversationsUseCasePort
	getUC    usecases_port.GetConversationUseCasePort
	deleteUC usecases_port.DeleteConversationUseCasePort
}

func NewChatHandler(
	sendUC usecases_port.SendChatMessageUseCasePort,
	listUC usecases_port.ListConversationsUseCasePort,
	getUC usecases_port.GetConversationUseCasePort,
	deleteUC usecases_port.DeleteConversationUseCasePort,
) *ChatHandler {
	return &ChatHandler{sendUC: sendUC, listUC: listUC, getUC: getUC, deleteUC: deleteUC}
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req ChatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	reply, err := h.sendUC.Execute(r.Context(), profile.ID, req.ConversationID, req.Message)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, ChatReplyResponse{
		Conversation: toConversationResponse(*reply.Conversation),
		UserMessage:  toChatMessageResponse(*reply.UserMessage),
		Reply:        toChatMessageResponse(*reply.Reply),
	})
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	conversations, err := h.listUC.Execute(r.Context(), profile.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, mapSlice(conversations, toConversationResponse))
}

func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "conversationID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	conversation, err := h.getUC.Execute(r.Context(), profile.ID, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toConversationResponse(*conversation))
}

func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "conversationID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), profile.ID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Conversation deleted")
}

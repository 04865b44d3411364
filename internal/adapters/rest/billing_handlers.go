package rest

import (
	"io"
	"net/http"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"
)

// maxWebhookBodyBytes - Stripe не присылает события больше 64KB.
const maxWebhookBodyBytes = 64 << 10

type BillingHandler struct {
	checkoutUC usecases_port.CreateCheckoutSessionUseCasePort
	confirmUC  usecases_port.ConfirmCheckoutSessionUseCasePort
	webhookUC  usecases_port.HandleBillingWebhookUseCasePort
	statusUC   usecases_port.GetBillingStatusUseCasePort
}

func NewBillingHandler(
	checkoutUC usecases_port.CreateCheckoutSessionUseCasePort,
	confirmUC usecases_port.ConfirmCheckoutSessionUseCasePort,
	webhookUC usecases_port.HandleBillingWebhookUseCasePort,
	statusUC usecases_port.GetBillingStatusUseCasePort,
) *BillingHandler {
	return &BillingHandler{checkoutUC: checkoutUC, confirmUC: confirmUC, webhookUC: webhookUC, statusUC: statusUC}
}

func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	profile, identity, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	session, err := h.checkoutUC.Execute(r.Context(), profile.ID, identity.Email, req.Product)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

// ConfirmCheckout обрабатывает возврат пользователя со страницы оплаты.
func (h *BillingHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req ConfirmCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.SessionID == "" {
		WriteError(w, r, domain.NewValidation("invalid confirmation", map[string]string{"session_id": "is required"}))
		return
	}

	entitlements, err := h.confirmUC.Execute(r.Context(), profile.ID, req.SessionID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, entitlements)
}

// Webhook принимает события Stripe. Тело читается целиком: подпись
// проверяется по сырым байтам.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Webhook"})

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		logger.Warn("Failed to read webhook body", port.Fields{"error": err.Error()})
		WriteError(w, r, domain.NewValidation("failed to read request body", nil))
		return
	}

	if err := h.webhookUC.Execute(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *BillingHandler) Status(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	entitlements, err := h.statusUC.Execute(r.Context(), profile.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, entitlements)
}

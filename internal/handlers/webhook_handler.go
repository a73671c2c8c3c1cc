package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"whatsapp-support/internal/evolution"
	"whatsapp-support/internal/models"
	"whatsapp-support/internal/services"
	"whatsapp-support/internal/utils"
)

// WebhookHandler recebe os eventos enviados pela Evolution API.
type WebhookHandler struct {
	instances *services.InstanceService
	support   *services.SupportService
	secret    string
}

// NewWebhookHandler exige o segredo em X-Webhook-Token, Authorization: Bearer ou no campo apikey do corpo.
func NewWebhookHandler(instances *services.InstanceService, support *services.SupportService, secret string) *WebhookHandler {
	return &WebhookHandler{instances: instances, support: support, secret: secret}
}

// @Summary Evolution API webhook
// @Description Receives MESSAGES_UPSERT, CONNECTION_UPDATE and QRCODE_UPDATED; other events are acknowledged and ignored
// @Tags webhook
// @Accept json
// @Produce json
// @Param X-Webhook-Token header string false "Segredo registrado em set-webhook"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /webhook/evolution [post]
func (h *WebhookHandler) Evolution(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		fail(w, "/webhook/evolution", models.ConfigError("EVOLUTION_WEBHOOK_SECRET não configurado"))
		return
	}
	provided := requestKey(r, evolution.WebhookTokenHeader)

	var event evolution.WebhookEvent
	decodeErr := decodeAndValidate(r, &event)
	if provided == "" {
		provided = event.APIKey
	}
	if !keyMatches(provided, h.secret) {
		fail(w, "/webhook/evolution", models.ForbiddenError("Token do webhook inválido"))
		return
	}
	if decodeErr != nil {
		fail(w, "/webhook/evolution", decodeErr)
		return
	}

	ctx := r.Context()
	var err error
	switch event.Name() {
	case evolution.EventMessagesUpsert:
		var msg evolution.InboundMessage
		if err = json.Unmarshal(event.Data, &msg); err == nil {
			_, err = h.support.HandleInboundMessage(ctx, &msg)
		}
	case evolution.EventConnectionUpdate:
		var update evolution.ConnectionUpdate
		if err = json.Unmarshal(event.Data, &update); err == nil {
			instance := update.Instance
			if instance == "" {
				instance = event.Instance
			}
			err = h.instances.HandleConnectionUpdate(ctx, instance, update.State)
		}
	case evolution.EventQRCodeUpdated:
		var update evolution.QRCodeUpdate
		if err = json.Unmarshal(event.Data, &update); err == nil {
			instance := event.Instance
			if instance == "" {
				instance = update.QRCode.Instance
			}
			err = h.instances.HandleQRCodeUpdate(ctx, instance, update.QRCode.Base64, update.QRCode.Code)
		}
	default:
		utils.LogDebug("Evento %s ignorado", event.Event)
		ok(w, "Evento ignorado", nil)
		return
	}

	if errors.Is(err, services.ErrUnknownInstance) {
		utils.LogWarning("Evento %s para instância não registrada ignorado", event.Event)
		ok(w, "Evento ignorado", nil)
		return
	}
	if err != nil {
		if _, typed := err.(*models.AppError); !typed {
			err = models.WrapError(models.KindInvalidInput, "Payload do evento inválido", err)
		}
		fail(w, "/webhook/evolution", err)
		return
	}
	ok(w, "Evento processado", nil)
}

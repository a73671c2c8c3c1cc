package handlers

import (
	"net/http"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/services"
)

type InstanceHandler struct {
	instances *services.InstanceService
}

func NewInstanceHandler(instances *services.InstanceService) *InstanceHandler {
	return &InstanceHandler{instances: instances}
}

// @Summary Check connection
// @Description Returns the gateway state of an instance; connected is true only when the state is "open"
// @Tags instances
// @Accept json
// @Produce json
// @Param request body models.InstanceRequest true "Instance"
// @Success 200 {object} models.APIResponse{data=models.ConnectionStatus}
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /check-connection [post]
func (h *InstanceHandler) CheckConnection(w http.ResponseWriter, r *http.Request) {
	var req models.InstanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/check-connection", err)
		return
	}

	status, err := h.instances.CheckConnection(r.Context(), req.InstanceName)
	if err != nil {
		fail(w, "/check-connection", err)
		return
	}
	ok(w, "Status da conexão obtido", status)
}

// @Summary Check numbers on WhatsApp
// @Tags instances
// @Accept json
// @Produce json
// @Param request body models.CheckIsWhatsAppRequest true "Numbers"
// @Success 200 {object} models.APIResponse{data=[]models.NumberCheck}
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /check-is-whatsapp [post]
func (h *InstanceHandler) CheckIsWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req models.CheckIsWhatsAppRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/check-is-whatsapp", err)
		return
	}

	checks, err := h.instances.CheckIsWhatsApp(r.Context(), req.InstanceName, req.Numbers())
	if err != nil {
		fail(w, "/check-is-whatsapp", err)
		return
	}
	ok(w, "Números verificados", checks)
}

// @Summary Delete instance
// @Description Deletes the instance on the gateway, then its local connection record
// @Tags instances
// @Accept json
// @Produce json
// @Param request body models.InstanceRequest true "Instance"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /delete-instance [post]
func (h *InstanceHandler) DeleteInstance(w http.ResponseWriter, r *http.Request) {
	var req models.InstanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/delete-instance", err)
		return
	}

	if err := h.instances.DeleteInstance(r.Context(), req.InstanceName); err != nil {
		fail(w, "/delete-instance", err)
		return
	}
	ok(w, "Instância removida com sucesso", map[string]string{"instanceName": req.InstanceName})
}

type createSessionRequest struct {
	InstanceName string `json:"instanceName"`
}

// @Summary Create session
// @Description Creates a gateway instance and returns its QR code; instanceName defaults to DEFAULT_SESSION_NAME
// @Tags instances
// @Accept json
// @Produce json
// @Param request body models.InstanceRequest false "Instance"
// @Success 200 {object} models.APIResponse{data=models.Session}
// @Failure 500 {object} models.APIResponse
// @Router /create-session [post]
func (h *InstanceHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeOptional(r, &req); err != nil {
		fail(w, "/create-session", err)
		return
	}

	session, err := h.instances.CreateSession(r.Context(), req.InstanceName)
	if err != nil {
		fail(w, "/create-session", err)
		return
	}
	ok(w, "Sessão criada, leia o QR code", session)
}

// @Summary Set webhook
// @Tags instances
// @Accept json
// @Produce json
// @Param request body models.SetWebhookRequest true "Webhook"
// @Success 200 {object} models.APIResponse{data=models.WebhookConfig}
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /set-webhook [post]
func (h *InstanceHandler) SetWebhook(w http.ResponseWriter, r *http.Request) {
	var req models.SetWebhookRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/set-webhook", err)
		return
	}

	webhook, err := h.instances.SetWebhook(r.Context(), req.InstanceName, req.URL, req.Events)
	if err != nil {
		fail(w, "/set-webhook", err)
		return
	}
	ok(w, "Webhook configurado", webhook)
}

// @Summary List contacts
// @Description Contacts with id and pushName, at most 50
// @Tags instances
// @Accept json
// @Produce json
// @Param request body models.InstanceRequest true "Instance"
// @Success 200 {object} models.APIResponse{data=[]models.Contact}
// @Failure 500 {object} models.APIResponse
// @Router /list-contacts [post]
func (h *InstanceHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	var req models.InstanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/list-contacts", err)
		return
	}

	contacts, err := h.instances.ListContacts(r.Context(), req.InstanceName)
	if err != nil {
		fail(w, "/list-contacts", err)
		return
	}
	ok(w, "Contatos encontrados", contacts)
}

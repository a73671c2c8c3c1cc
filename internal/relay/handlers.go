package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"

	"github.com/go-playground/validator/v10"
)

// Messenger é o que as rotas REST do relay precisam da sessão.
type Messenger interface {
	Contacts(ctx context.Context) ([]Contact, error)
	Chats() []Chat
	Send(ctx context.Context, to, text string) (*SentMessage, error)
	Status() Status
}

type Handler struct {
	messenger Messenger
	validate  *validator.Validate
}

func NewHandler(messenger Messenger) *Handler {
	return &Handler{messenger: messenger, validate: validator.New()}
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	utils.LogError("Erro em %s: %v", route, err)
	if errors.Is(err, ErrNotReady) {
		models.RespondWithJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse(err.Error()))
		return
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		err = models.WrapError(models.KindUpstream, "Erro na sessão do WhatsApp", err)
	}
	models.RespondWithError(w, err)
}

// @Summary Relay contacts
// @Tags relay
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]relay.Contact}
// @Router /contacts [get]
func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.messenger.Contacts(r.Context())
	if err != nil {
		h.respondError(w, "/contacts", err)
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Contatos encontrados", contacts))
}

// @Summary Relay chats
// @Tags relay
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]relay.Chat}
// @Router /chats [get]
func (h *Handler) Chats(w http.ResponseWriter, r *http.Request) {
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Conversas encontradas", h.messenger.Chats()))
}

// @Summary Relay send
// @Tags relay
// @Accept json
// @Produce json
// @Param request body relay.SendRequest true "Message"
// @Success 200 {object} models.APIResponse{data=relay.SentMessage}
// @Failure 400 {object} models.APIResponse
// @Router /send [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "/send", models.WrapError(models.KindInvalidInput, "Erro ao decodificar requisição", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		h.respondError(w, "/send", models.InvalidInputError("to e message são obrigatórios"))
		return
	}
	if _, err := ParseRecipient(req.To); err != nil {
		h.respondError(w, "/send", models.WrapError(models.KindInvalidInput, "Destinatário inválido", err))
		return
	}

	sent, err := h.messenger.Send(r.Context(), req.To, req.Message)
	if err != nil {
		h.respondError(w, "/send", err)
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Mensagem enviada com sucesso", sent))
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("", h.messenger.Status()))
}

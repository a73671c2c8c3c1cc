package handlers

import (
	"io"
	"net/http"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/services"
)

const maxUploadSize = 10 << 20

type SupportHandler struct {
	support *services.SupportService
}

func NewSupportHandler(support *services.SupportService) *SupportHandler {
	return &SupportHandler{support: support}
}

// @Summary Send a text message
// @Description Sends a text to the attendance client through the gateway and stores it
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.SendMessageRequest true "Message"
// @Success 200 {object} models.APIResponse{data=models.Message}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /send-message [post]
func (h *SupportHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/send-message", err)
		return
	}

	message, err := h.support.SendMessage(r.Context(), req)
	if err != nil {
		fail(w, "/send-message", err)
		return
	}
	ok(w, "Mensagem enviada com sucesso", message)
}

// @Summary Upload and send attachment
// @Tags support
// @Accept multipart/form-data
// @Produce json
// @Param attendance_id formData string true "Attendance"
// @Param agent_id formData string true "Agent"
// @Param instanceName formData string false "Instance"
// @Param caption formData string false "Caption"
// @Param file formData file true "File"
// @Success 200 {object} models.APIResponse{data=models.Message}
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /upload-attachment [post]
func (h *SupportHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		fail(w, "/upload-attachment", models.InvalidInputError("Arquivo muito grande. Limite de 10MB"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, "/upload-attachment", models.InvalidInputError("Erro ao processar arquivo"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, "/upload-attachment", models.InternalError("Erro ao ler arquivo", err))
		return
	}

	req := models.SendAttachmentRequest{
		AttendanceID: r.FormValue("attendance_id"),
		AgentID:      r.FormValue("agent_id"),
		InstanceName: r.FormValue("instanceName"),
		Caption:      r.FormValue("caption"),
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Data:         data,
	}
	if req.AttendanceID == "" || req.AgentID == "" {
		fail(w, "/upload-attachment", models.InvalidInputError("attendance_id e agent_id são obrigatórios"))
		return
	}

	message, err := h.support.SendAttachment(r.Context(), req)
	if err != nil {
		fail(w, "/upload-attachment", err)
		return
	}
	ok(w, "Arquivo enviado com sucesso", message)
}

// @Summary List attendances
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.ListAttendancesRequest true "Filter"
// @Success 200 {object} models.APIResponse{data=[]models.Attendance}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /list-attendances [post]
func (h *SupportHandler) ListAttendances(w http.ResponseWriter, r *http.Request) {
	var req models.ListAttendancesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/list-attendances", err)
		return
	}

	attendances, err := h.support.ListAttendances(r.Context(), req)
	if err != nil {
		fail(w, "/list-attendances", err)
		return
	}
	ok(w, "Atendimentos encontrados", attendances)
}

// @Summary List messages
// @Description Messages of an attendance in creation order
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.ListMessagesRequest true "Attendance"
// @Success 200 {object} models.APIResponse{data=[]models.Message}
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /list-messages [post]
func (h *SupportHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	var req models.ListMessagesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/list-messages", err)
		return
	}

	messages, err := h.support.ListMessages(r.Context(), req.AttendanceID, req.AgentID)
	if err != nil {
		fail(w, "/list-messages", err)
		return
	}
	ok(w, "Mensagens encontradas", messages)
}

// @Summary Start bot chat
// @Description Idempotent per room and support user
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.StartBotChatRequest true "Room and user"
// @Success 200 {object} models.APIResponse{data=models.BotChat}
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /start-bot-chat [post]
func (h *SupportHandler) StartBotChat(w http.ResponseWriter, r *http.Request) {
	var req models.StartBotChatRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/start-bot-chat", err)
		return
	}

	chat, err := h.support.StartBotChat(r.Context(), req)
	if err != nil {
		fail(w, "/start-bot-chat", err)
		return
	}

	message := "Conversa com o bot já existente"
	if chat.Created {
		message = "Conversa com o bot iniciada"
	}
	ok(w, message, chat)
}

// @Summary Support login
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.SupportLoginRequest true "Matricula"
// @Success 200 {object} models.APIResponse{data=models.LoginResult}
// @Failure 404 {object} models.APIResponse
// @Router /support-login [post]
func (h *SupportHandler) SupportLogin(w http.ResponseWriter, r *http.Request) {
	var req models.SupportLoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/support-login", err)
		return
	}

	result, err := h.support.SupportLogin(r.Context(), req.Matricula)
	if err != nil {
		fail(w, "/support-login", err)
		return
	}
	ok(w, "Login realizado com sucesso", result)
}

// @Summary Update attendance
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.UpdateAttendanceRequest true "Changes"
// @Success 200 {object} models.APIResponse{data=models.Attendance}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /update-attendance [post]
func (h *SupportHandler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAttendanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/update-attendance", err)
		return
	}

	attendance, err := h.support.UpdateAttendance(r.Context(), req)
	if err != nil {
		fail(w, "/update-attendance", err)
		return
	}
	ok(w, "Atendimento atualizado", attendance)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"whatsapp-support/internal/evolution"
	"whatsapp-support/internal/models"
	"whatsapp-support/internal/repositories"
	"whatsapp-support/internal/utils"
	"whatsapp-support/internal/wsnotify"

	"github.com/google/uuid"
)

const defaultBotGreeting = "Olá! Sou o assistente virtual. Em que posso ajudar?"

// SupportService reúne as operações do console de atendimento.
type SupportService struct {
	repos     Repositories
	instances *InstanceService
	uploader  Uploader
	notifier  Notifier
	now       func() time.Time
}

func NewSupportService(repos Repositories, instances *InstanceService, uploader Uploader, notifier Notifier) *SupportService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &SupportService{
		repos:     repos,
		instances: instances,
		uploader:  uploader,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *SupportService) supportUser(ctx context.Context, id string) (*models.SupportUser, error) {
	user, err := s.repos.SupportUsers.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("buscar usuário de suporte", err)
	}
	if user == nil || !user.Active {
		return nil, models.NotFoundError("Usuário de suporte não encontrado")
	}
	return user, nil
}

// ownedAttendance carrega o atendimento e confere se o agente pode operá-lo.
func (s *SupportService) ownedAttendance(ctx context.Context, attendanceID, agentID string) (*models.Attendance, error) {
	attendance, err := s.repos.Attendances.GetByID(ctx, attendanceID)
	if err != nil {
		return nil, storeError("buscar atendimento", err)
	}
	if attendance == nil {
		return nil, models.NotFoundError("Atendimento não encontrado")
	}
	if !attendance.OwnedBy(agentID) {
		return nil, models.ForbiddenError("Atendimento pertence a outro agente")
	}
	return attendance, nil
}

// ListAttendances lista os atendimentos de uma sala do agente ou, sem sala, os dele e a fila sem agente.
func (s *SupportService) ListAttendances(ctx context.Context, req models.ListAttendancesRequest) ([]*models.Attendance, error) {
	if _, err := s.supportUser(ctx, req.SupportUserID); err != nil {
		return nil, err
	}

	filter := models.AttendanceFilter{
		Statuses: req.Status,
		Limit:    req.Limit,
	}
	if req.RoomID != "" {
		room, err := s.repos.Rooms.GetByID(ctx, req.RoomID)
		if err != nil {
			return nil, storeError("buscar sala", err)
		}
		if room == nil {
			return nil, models.NotFoundError("Sala de suporte não encontrada")
		}
		if room.SupportUserID != req.SupportUserID {
			return nil, models.ForbiddenError("Sala pertence a outro usuário de suporte")
		}
		filter.RoomID = room.ID
	} else {
		filter.AgentID = req.SupportUserID
		filter.IncludeUnassigned = true
	}

	attendances, err := s.repos.Attendances.List(ctx, filter)
	if err != nil {
		return nil, storeError("listar atendimentos", err)
	}
	return attendances, nil
}

// ListMessages devolve o histórico do atendimento em ordem de criação.
func (s *SupportService) ListMessages(ctx context.Context, attendanceID, agentID string) ([]*models.Message, error) {
	if _, err := s.ownedAttendance(ctx, attendanceID, agentID); err != nil {
		return nil, err
	}
	messages, err := s.repos.Messages.GetByAttendance(ctx, attendanceID)
	if err != nil {
		return nil, storeError("listar mensagens", err)
	}
	return messages, nil
}

// claim atribui o atendimento ao agente e tira da espera.
func (s *SupportService) claim(ctx context.Context, attendance *models.Attendance, agentID string) {
	if attendance.AgentID == agentID && attendance.Status != models.AttendanceWaiting {
		return
	}
	attendance.AgentID = agentID
	if attendance.Status == models.AttendanceWaiting {
		attendance.Status = models.AttendanceInProgress
	}
	if err := s.repos.Attendances.Update(ctx, attendance); err != nil {
		utils.LogWarning("Erro ao atualizar atendimento %s: %v", attendance.ID, err)
		return
	}
	s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventAttendance, Payload: attendance})
}

func (s *SupportService) deliverable(attendance *models.Attendance) (string, error) {
	if attendance.Status == models.AttendanceFinished || attendance.Status == models.AttendanceCancelled {
		return "", models.InvalidInputError("Atendimento encerrado")
	}
	number := utils.NormalizePhone(attendance.ClientPhone)
	if number == "" {
		return "", models.InvalidInputError("Atendimento sem telefone do cliente")
	}
	return number, nil
}

// SendMessage envia texto ao cliente pela instância informada ou pela conexão ativa.
func (s *SupportService) SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.Message, error) {
	defer utils.TimeTrack(time.Now(), "SendMessage")
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, models.InvalidInputError("message é obrigatório")
	}

	attendance, err := s.ownedAttendance(ctx, req.AttendanceID, req.AgentID)
	if err != nil {
		return nil, err
	}
	number, err := s.deliverable(attendance)
	if err != nil {
		return nil, err
	}

	gw, err := s.instances.Gateway()
	if err != nil {
		return nil, err
	}
	instance, err := s.instances.ResolveInstance(ctx, req.InstanceName)
	if err != nil {
		return nil, err
	}

	utils.LogDebug("Enviando mensagem para %s pela instância %s", utils.PhoneToJID(number), instance)
	resp, err := gw.SendText(ctx, instance, number, text)
	if err != nil {
		return nil, upstreamError("enviar mensagem", err)
	}

	message := &models.Message{
		AttendanceID:      attendance.ID,
		SenderType:        models.SenderAgent,
		SenderID:          req.AgentID,
		Content:           text,
		WhatsAppMessageID: resp.Key.ID,
		CreatedAt:         s.now(),
	}
	if err := s.repos.Messages.Save(ctx, message); err != nil {
		return nil, storeError("salvar mensagem", err)
	}

	s.claim(ctx, attendance, req.AgentID)
	s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventMessage, Payload: message})
	return message, nil
}

// SendAttachment envia o arquivo para o bucket e depois para o cliente pela Evolution API.
func (s *SupportService) SendAttachment(ctx context.Context, req models.SendAttachmentRequest) (*models.Message, error) {
	defer utils.TimeTrack(time.Now(), "SendAttachment")
	if s.uploader == nil {
		return nil, models.ConfigError("Armazenamento de anexos não configurado")
	}
	if len(req.Data) == 0 {
		return nil, models.InvalidInputError("Arquivo vazio")
	}

	attendance, err := s.ownedAttendance(ctx, req.AttendanceID, req.AgentID)
	if err != nil {
		return nil, err
	}
	number, err := s.deliverable(attendance)
	if err != nil {
		return nil, err
	}

	gw, err := s.instances.Gateway()
	if err != nil {
		return nil, err
	}
	instance, err := s.instances.ResolveInstance(ctx, req.InstanceName)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ext := filepath.Ext(req.FileName)
	if ext == "" {
		ext = "." + utils.GetExtensionFromMime(contentType)
	}
	key := fmt.Sprintf("attendances/%s/%s%s", attendance.ID, uuid.NewString(), ext)

	url, err := s.uploader.UploadBytes(ctx, req.Data, key, contentType)
	if err != nil {
		return nil, models.InternalError("Erro ao enviar anexo", err)
	}

	resp, err := gw.SendMedia(ctx, instance, evolution.SendMediaRequest{
		Number:    number,
		MediaType: utils.MediaTypeFromMime(contentType),
		MimeType:  contentType,
		Caption:   req.Caption,
		Media:     url,
		FileName:  req.FileName,
	})
	if err != nil {
		return nil, upstreamError("enviar anexo", err)
	}

	content := req.Caption
	if content == "" {
		content = req.FileName
	}
	message := &models.Message{
		AttendanceID:      attendance.ID,
		SenderType:        models.SenderAgent,
		SenderID:          req.AgentID,
		Content:           content,
		MediaURL:          url,
		WhatsAppMessageID: resp.Key.ID,
		CreatedAt:         s.now(),
	}
	if err := s.repos.Messages.Save(ctx, message); err != nil {
		return nil, storeError("salvar mensagem", err)
	}

	s.claim(ctx, attendance, req.AgentID)
	s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventMessage, Payload: message})
	return message, nil
}

// StartBotChat abre a conversa de bot do par sala/usuário. Chamadas repetidas devolvem o mesmo atendimento.
func (s *SupportService) StartBotChat(ctx context.Context, req models.StartBotChatRequest) (*models.BotChat, error) {
	room, err := s.repos.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, storeError("buscar sala", err)
	}
	if room == nil {
		return nil, models.NotFoundError("Sala de suporte não encontrada")
	}
	if room.SupportUserID != req.SupportUserID {
		return nil, models.ForbiddenError("Sala pertence a outro usuário de suporte")
	}

	key := models.BotChatKey(req.RoomID, req.SupportUserID)
	existing, err := s.repos.Attendances.GetByBotKey(ctx, key)
	if err != nil {
		return nil, storeError("buscar conversa do bot", err)
	}
	if existing != nil {
		return &models.BotChat{Attendance: existing, Created: false}, nil
	}

	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		name = "Chat com bot"
	}
	attendance := &models.Attendance{
		RoomID:      req.RoomID,
		AgentID:     req.SupportUserID,
		ClientName:  name,
		ClientPhone: utils.NormalizePhone(req.ClientPhone),
		Status:      models.AttendanceActive,
		Channel:     models.ChannelBot,
		BotKey:      key,
		CreatedAt:   s.now(),
	}

	err = s.repos.Attendances.Save(ctx, attendance)
	if errors.Is(err, repositories.ErrDuplicate) {
		// outra chamada criou a conversa primeiro
		existing, err := s.repos.Attendances.GetByBotKey(ctx, key)
		if err != nil {
			return nil, storeError("buscar conversa do bot", err)
		}
		if existing == nil {
			return nil, models.InternalError("Conversa do bot não encontrada após conflito", nil)
		}
		return &models.BotChat{Attendance: existing, Created: false}, nil
	}
	if err != nil {
		return nil, storeError("criar conversa do bot", err)
	}

	greeting := strings.TrimSpace(req.Greeting)
	if greeting == "" {
		greeting = defaultBotGreeting
	}
	message := &models.Message{
		AttendanceID: attendance.ID,
		SenderType:   models.SenderBot,
		Content:      greeting,
		CreatedAt:    s.now(),
	}
	if err := s.repos.Messages.Save(ctx, message); err != nil {
		utils.LogWarning("Erro ao salvar saudação do bot no atendimento %s: %v", attendance.ID, err)
	}

	s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventAttendance, Payload: attendance})
	return &models.BotChat{Attendance: attendance, Created: true}, nil
}

// SupportLogin autentica pela matrícula. Matrícula desconhecida ou inativa devolve 404 sem sessão.
func (s *SupportService) SupportLogin(ctx context.Context, matricula string) (*models.LoginResult, error) {
	matricula = strings.TrimSpace(matricula)
	if matricula == "" {
		return nil, models.InvalidInputError("matricula é obrigatória")
	}

	user, err := s.repos.SupportUsers.GetByMatricula(ctx, matricula)
	if err != nil {
		return nil, storeError("buscar usuário de suporte", err)
	}
	if user == nil || !user.Active {
		return nil, models.NotFoundError("Matrícula não encontrada ou inativa")
	}

	rooms, err := s.repos.Rooms.GetBySupportUser(ctx, user.ID)
	if err != nil {
		return nil, storeError("buscar salas", err)
	}

	now := s.now()
	if err := s.repos.SupportUsers.TouchLogin(ctx, user.ID, now); err != nil {
		utils.LogWarning("Erro ao registrar login de %s: %v", user.Matricula, err)
	} else {
		user.LastLoginAt = &now
	}

	return &models.LoginResult{
		Session: &models.LoginSession{
			SupportUserID: user.ID,
			Matricula:     user.Matricula,
			LoggedAt:      now,
		},
		User:  user,
		Rooms: rooms,
	}, nil
}

// UpdateAttendance altera status e observações de um atendimento do agente.
func (s *SupportService) UpdateAttendance(ctx context.Context, req models.UpdateAttendanceRequest) (*models.Attendance, error) {
	if req.Status == "" && req.Observations == nil {
		return nil, models.InvalidInputError("Nada para atualizar")
	}
	if req.Status != "" && !models.IsValidAttendanceStatus(req.Status) {
		return nil, models.InvalidInputError("status inválido")
	}

	attendance, err := s.ownedAttendance(ctx, req.AttendanceID, req.AgentID)
	if err != nil {
		return nil, err
	}

	attendance.AgentID = req.AgentID
	if req.Status != "" {
		attendance.Status = req.Status
		switch req.Status {
		case models.AttendanceFinished, models.AttendanceCancelled:
			now := s.now()
			attendance.FinishedAt = &now
		default:
			attendance.FinishedAt = nil
		}
	}
	if req.Observations != nil {
		attendance.Observations = *req.Observations
	}

	if err := s.repos.Attendances.Update(ctx, attendance); err != nil {
		return nil, storeError("atualizar atendimento", err)
	}

	s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventAttendance, Payload: attendance})
	return attendance, nil
}

// HandleInboundMessage grava a mensagem do cliente no atendimento aberto do telefone,
// abrindo um novo atendimento na fila quando não houver.
func (s *SupportService) HandleInboundMessage(ctx context.Context, msg *evolution.InboundMessage) (*models.Message, error) {
	if msg == nil || msg.Key.FromMe || utils.IsGroupJID(msg.Key.RemoteJID) {
		return nil, nil
	}
	phone := utils.NormalizePhone(utils.PhoneFromJID(msg.Key.RemoteJID))
	if phone == "" {
		return nil, models.InvalidInputError("Mensagem sem remetente")
	}
	text := msg.Text()
	if text == "" {
		return nil, nil
	}

	attendance, err := s.repos.Attendances.FindOpenByPhone(ctx, phone)
	if err != nil {
		return nil, storeError("buscar atendimento", err)
	}
	if attendance == nil {
		name := strings.TrimSpace(msg.PushName)
		if name == "" {
			name = phone
		}
		attendance = &models.Attendance{
			ClientName:  name,
			ClientPhone: phone,
			Status:      models.AttendanceWaiting,
			Channel:     models.ChannelWhatsApp,
			CreatedAt:   s.now(),
		}
		if err := s.repos.Attendances.Save(ctx, attendance); err != nil {
			return nil, storeError("abrir atendimento", err)
		}
		s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventAttendance, Payload: attendance})
	}

	createdAt := s.now()
	if ts := msg.Timestamp(); ts > 0 {
		createdAt = time.Unix(ts, 0).UTC()
	}
	message := &models.Message{
		AttendanceID:      attendance.ID,
		SenderType:        models.SenderClient,
		SenderID:          phone,
		Content:           text,
		WhatsAppMessageID: msg.Key.ID,
		CreatedAt:         createdAt,
	}
	if err := s.repos.Messages.Save(ctx, message); err != nil {
		return nil, storeError("salvar mensagem", err)
	}

	s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventMessage, Payload: message})
	return message, nil
}

package services

import (
	"context"
	"strings"

	"whatsapp-support/config"
	"whatsapp-support/internal/evolution"
	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"
	"whatsapp-support/internal/wsnotify"
)

// InstanceService cuida das instâncias da Evolution API e do registro em whatsapp_connections.
type InstanceService struct {
	cfg         *config.Config
	gateway     Gateway
	connections models.ConnectionRepository
	notifier    Notifier
}

// NewInstanceService aceita gateway nil: as operações que dependem dele respondem erro de configuração.
func NewInstanceService(cfg *config.Config, gateway Gateway, connections models.ConnectionRepository, notifier Notifier) *InstanceService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &InstanceService{
		cfg:         cfg,
		gateway:     gateway,
		connections: connections,
		notifier:    notifier,
	}
}

func (s *InstanceService) client() (Gateway, error) {
	if s.gateway == nil {
		return nil, errGatewayNotConfigured
	}
	return s.gateway, nil
}

func requireInstance(instance string) (string, error) {
	instance = strings.TrimSpace(instance)
	if instance == "" {
		return "", models.InvalidInputError("instanceName é obrigatório")
	}
	return instance, nil
}

// CheckConnection consulta o estado da instância; connected só é verdadeiro quando o estado é "open".
func (s *InstanceService) CheckConnection(ctx context.Context, instance string) (*models.ConnectionStatus, error) {
	instance, err := requireInstance(instance)
	if err != nil {
		return nil, err
	}
	gw, err := s.client()
	if err != nil {
		return nil, err
	}

	resp, err := gw.ConnectionState(ctx, instance)
	if err != nil {
		return nil, upstreamError("verificar conexão", err)
	}

	status := models.StateToStatus(resp.Instance.State)
	if err := s.connections.UpdateStatus(ctx, instance, status); err != nil {
		utils.LogWarning("Erro ao atualizar status da conexão %s: %v", instance, err)
	}

	return &models.ConnectionStatus{
		InstanceName: instance,
		State:        resp.Instance.State,
		Connected:    resp.Connected(),
	}, nil
}

func (s *InstanceService) CheckIsWhatsApp(ctx context.Context, instance string, phones []string) ([]models.NumberCheck, error) {
	instance, err := requireInstance(instance)
	if err != nil {
		return nil, err
	}

	numbers := make([]string, 0, len(phones))
	for _, phone := range phones {
		if digits := utils.NormalizePhone(phone); digits != "" {
			numbers = append(numbers, digits)
		}
	}
	if len(numbers) == 0 {
		return nil, models.InvalidInputError("Informe ao menos um telefone válido")
	}

	gw, err := s.client()
	if err != nil {
		return nil, err
	}

	results, err := gw.CheckIsWhatsApp(ctx, instance, numbers)
	if err != nil {
		return nil, upstreamError("verificar números", err)
	}

	checks := make([]models.NumberCheck, 0, len(results))
	for _, r := range results {
		checks = append(checks, models.NumberCheck{
			Number: utils.NormalizePhone(r.Number),
			Exists: r.Exists,
			JID:    r.JID,
		})
	}
	return checks, nil
}

// DeleteInstance remove a instância no gateway e, só depois do sucesso, o registro local.
func (s *InstanceService) DeleteInstance(ctx context.Context, instance string) error {
	instance, err := requireInstance(instance)
	if err != nil {
		return err
	}
	gw, err := s.client()
	if err != nil {
		return err
	}

	if err := gw.DeleteInstance(ctx, instance); err != nil {
		return upstreamError("remover instância", err)
	}

	if err := s.connections.DeleteByInstance(ctx, instance); err != nil {
		return storeError("remover conexão", err)
	}

	utils.LogInfo("Instância %s removida", instance)
	s.notifier.Broadcast(wsnotify.Event{
		Type: wsnotify.EventConnection,
		Payload: models.ConnectionStatus{
			InstanceName: instance,
			State:        "close",
		},
	})
	return nil
}

// CreateSession cria a instância no gateway e registra a conexão aguardando leitura do QR code.
func (s *InstanceService) CreateSession(ctx context.Context, instance string) (*models.Session, error) {
	instance = strings.TrimSpace(instance)
	if instance == "" {
		instance = s.cfg.Relay.SessionName
	}
	if _, err := requireInstance(instance); err != nil {
		return nil, err
	}
	gw, err := s.client()
	if err != nil {
		return nil, err
	}

	resp, err := gw.CreateInstance(ctx, instance)
	if err != nil {
		return nil, upstreamError("criar sessão", err)
	}

	qr := resp.QRCode.Base64
	if qr == "" && resp.QRCode.Code != "" {
		if qr, err = utils.QRCodeDataURL(resp.QRCode.Code); err != nil {
			utils.LogWarning("Erro ao gerar QR code da instância %s: %v", instance, err)
		}
	}

	conn := &models.WhatsAppConnection{
		InstanceName: instance,
		Status:       models.ConnectionConnecting,
		QRCodeBase64: qr,
	}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		return nil, storeError("registrar conexão", err)
	}

	return &models.Session{
		InstanceName: instance,
		Status:       conn.Status,
		QRCodeBase64: qr,
		PairingCode:  resp.QRCode.PairingCode,
	}, nil
}

// SetWebhook registra o webhook; sem URL usa WEBHOOK_PUBLIC_URL e sem eventos usa os padrões.
func (s *InstanceService) SetWebhook(ctx context.Context, instance, url string, events []string) (*models.WebhookConfig, error) {
	instance, err := requireInstance(instance)
	if err != nil {
		return nil, err
	}

	url = strings.TrimSpace(url)
	if url == "" {
		url = s.cfg.Evolution.WebhookPublicURL
	}
	if url == "" {
		return nil, models.InvalidInputError("url do webhook é obrigatória")
	}
	if !utils.IsURL(url) {
		return nil, models.InvalidInputError("url do webhook inválida")
	}
	if len(events) == 0 {
		events = evolution.DefaultWebhookEvents
	}

	gw, err := s.client()
	if err != nil {
		return nil, err
	}

	var headers map[string]string
	if secret := s.cfg.Evolution.WebhookSecret; secret != "" {
		headers = map[string]string{evolution.WebhookTokenHeader: secret}
	}
	resp, err := gw.SetWebhook(ctx, instance, url, events, headers)
	if err != nil {
		return nil, upstreamError("configurar webhook", err)
	}

	result := &models.WebhookConfig{
		InstanceName: instance,
		URL:          url,
		Enabled:      resp.Enabled,
		Events:       events,
	}
	if resp.URL != "" {
		result.URL = resp.URL
	}
	if len(resp.Events) > 0 {
		result.Events = resp.Events
	}
	return result, nil
}

func (s *InstanceService) ListContacts(ctx context.Context, instance string) ([]models.Contact, error) {
	instance, err := requireInstance(instance)
	if err != nil {
		return nil, err
	}
	gw, err := s.client()
	if err != nil {
		return nil, err
	}

	raw, err := gw.FindContacts(ctx, instance)
	if err != nil {
		return nil, upstreamError("buscar contatos", err)
	}
	return evolution.FilterContacts(raw), nil
}

// ActiveInstance devolve a conexão marcada como connected mais recente.
func (s *InstanceService) ActiveInstance(ctx context.Context) (*models.WhatsAppConnection, error) {
	conn, err := s.connections.GetActive(ctx)
	if err != nil {
		return nil, storeError("buscar conexão ativa", err)
	}
	if conn == nil {
		return nil, models.NotFoundError("Nenhuma conexão WhatsApp ativa")
	}
	return conn, nil
}

// ResolveInstance usa a instância pedida ou, na falta dela, a conexão ativa.
func (s *InstanceService) ResolveInstance(ctx context.Context, requested string) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested, nil
	}
	conn, err := s.ActiveInstance(ctx)
	if err != nil {
		return "", err
	}
	return conn.InstanceName, nil
}

// Gateway expõe o cliente para os outros serviços; nil vira erro de configuração.
func (s *InstanceService) Gateway() (Gateway, error) {
	return s.client()
}

// knownConnection só aceita instâncias criadas por create-session.
func (s *InstanceService) knownConnection(ctx context.Context, instance string) (*models.WhatsAppConnection, error) {
	conn, err := s.connections.GetByInstance(ctx, instance)
	if err != nil {
		return nil, storeError("buscar conexão", err)
	}
	if conn == nil {
		return nil, ErrUnknownInstance
	}
	return conn, nil
}

// HandleConnectionUpdate trata o evento CONNECTION_UPDATE do webhook.
func (s *InstanceService) HandleConnectionUpdate(ctx context.Context, instance, state string) error {
	instance, err := requireInstance(instance)
	if err != nil {
		return err
	}

	current, err := s.knownConnection(ctx, instance)
	if err != nil {
		return err
	}

	status := models.StateToStatus(state)
	conn := &models.WhatsAppConnection{InstanceName: instance, Status: status}
	if status == models.ConnectionConnecting {
		conn.QRCodeBase64 = current.QRCodeBase64
	}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		return storeError("atualizar conexão", err)
	}

	utils.LogInfo("Instância %s mudou para %s", instance, status)
	s.notifier.Broadcast(wsnotify.Event{
		Type: wsnotify.EventConnection,
		Payload: models.ConnectionStatus{
			InstanceName: instance,
			State:        state,
			Connected:    state == "open",
		},
	})
	return nil
}

// HandleQRCodeUpdate trata o evento QRCODE_UPDATED do webhook.
func (s *InstanceService) HandleQRCodeUpdate(ctx context.Context, instance, base64, code string) error {
	instance, err := requireInstance(instance)
	if err != nil {
		return err
	}
	if base64 == "" && code != "" {
		if base64, err = utils.QRCodeDataURL(code); err != nil {
			return models.InternalError("Erro ao gerar QR code", err)
		}
	}
	if base64 == "" {
		return models.InvalidInputError("QR code vazio")
	}
	if _, err := s.knownConnection(ctx, instance); err != nil {
		return err
	}

	if err := s.connections.UpdateQRCode(ctx, instance, base64); err != nil {
		return storeError("salvar QR code", err)
	}

	s.notifier.Broadcast(wsnotify.Event{
		Type: wsnotify.EventQR,
		Payload: models.Session{
			InstanceName: instance,
			Status:       models.ConnectionConnecting,
			QRCodeBase64: base64,
		},
	})
	return nil
}

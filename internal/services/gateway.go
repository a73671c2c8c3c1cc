package services

import (
	"context"
	"errors"

	"whatsapp-support/internal/evolution"
	"whatsapp-support/internal/models"
	"whatsapp-support/internal/wsnotify"
)

// Gateway é o subconjunto da Evolution API usado pelos serviços.
type Gateway interface {
	ConnectionState(ctx context.Context, instance string) (*evolution.ConnectionStateResponse, error)
	CheckIsWhatsApp(ctx context.Context, instance string, numbers []string) ([]evolution.NumberResult, error)
	DeleteInstance(ctx context.Context, instance string) error
	CreateInstance(ctx context.Context, instance string) (*evolution.CreateInstanceResponse, error)
	SendText(ctx context.Context, instance, number, text string) (*evolution.SendMessageResponse, error)
	SendMedia(ctx context.Context, instance string, media evolution.SendMediaRequest) (*evolution.SendMessageResponse, error)
	SetWebhook(ctx context.Context, instance, url string, events []string, headers map[string]string) (*evolution.WebhookResponse, error)
	FindContacts(ctx context.Context, instance string) ([]evolution.RawContact, error)
}

// Notifier publica eventos para o console em tempo real.
type Notifier interface {
	Broadcast(event wsnotify.Event)
}

// Uploader guarda anexos e devolve a URL pública.
type Uploader interface {
	UploadBytes(ctx context.Context, data []byte, fileName string, contentType string) (string, error)
}

type Repositories struct {
	Attendances  models.AttendanceRepository
	Messages     models.MessageRepository
	Rooms        models.RoomRepository
	SupportUsers models.SupportUserRepository
	Admins       models.AdminRepository
	Connections  models.ConnectionRepository
}

// ErrUnknownInstance indica evento de webhook para instância sem registro em whatsapp_connections.
var ErrUnknownInstance = errors.New("instância não registrada")

var errGatewayNotConfigured = models.ConfigError("Evolution API não configurada: defina EVOLUTION_API_URL e EVOLUTION_API_KEY")

// upstreamError classifica a falha do gateway; a mensagem final inclui o texto devolvido por ele.
func upstreamError(action string, err error) error {
	var upstream *evolution.UpstreamError
	if errors.As(err, &upstream) {
		return models.WrapError(models.KindUpstream, "Erro da Evolution API ao "+action, err)
	}
	return models.WrapError(models.KindUpstream, "Falha ao contatar a Evolution API ao "+action, err)
}

func storeError(action string, err error) error {
	return models.InternalError("Erro no banco de dados ao "+action, err)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(wsnotify.Event) {}

// Package relay mantém uma sessão WhatsApp por processo e republica os eventos
// dela para todos os clientes websocket conectados.
package relay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"whatsapp-support/config"
	"whatsapp-support/internal/utils"
	"whatsapp-support/internal/wsnotify"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

var ErrNotReady = errors.New("sessão do WhatsApp ainda não está pronta")

type Notifier interface {
	Broadcast(event wsnotify.Event)
}

// Session é a única sessão WhatsApp do relay.
//
// Todo evento vai para todos os assinantes, sem separar por usuário. Quem
// estiver conectado no websocket recebe as mensagens de todas as conversas.
type Session struct {
	name     string
	dataDir  string
	notifier Notifier

	client *whatsmeow.Client
	chats  *chatIndex

	mu     sync.RWMutex
	ready  bool
	lastQR string
}

func NewSession(cfg *config.RelayConfig, notifier Notifier) *Session {
	return &Session{
		name:     cfg.SessionName,
		dataDir:  cfg.DataDir,
		notifier: notifier,
		chats:    newChatIndex(),
	}
}

func (s *Session) dbPath() string {
	return filepath.Join(s.dataDir, s.name+".db")
}

// Start abre o device store, registra os handlers e conecta. Sem login salvo, os QR codes
// chegam pelo evento "qr".
func (s *Session) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("erro ao criar diretório para banco de dados: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)", s.dbPath())
	container, err := sqlstore.New("sqlite", dsn, waLog.Stdout("Database", "WARN", true))
	if err != nil {
		return fmt.Errorf("erro ao criar device store: %v", err)
	}

	device, err := container.GetFirstDevice()
	if err != nil {
		return fmt.Errorf("erro ao obter device: %v", err)
	}

	client := whatsmeow.NewClient(device, waLog.Stdout("Client", "INFO", true))
	client.AddEventHandler(s.handleEvent)
	s.client = client

	if client.Store.ID == nil {
		qrChan, err := client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("erro ao abrir canal do QR code: %v", err)
		}
		go s.watchQR(qrChan)
	}

	utils.LogInfo("Conectando sessão %s ao WhatsApp", s.name)
	if err := client.Connect(); err != nil {
		return fmt.Errorf("erro ao conectar: %v", err)
	}
	return nil
}

func (s *Session) Stop() {
	if s.client != nil {
		s.client.Disconnect()
	}
}

func (s *Session) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			s.publishQR(evt.Code)
		case "success":
			utils.LogInfo("QR code lido para a sessão %s", s.name)
		default:
			utils.LogWarning("Canal do QR code da sessão %s: %s", s.name, evt.Event)
		}
	}
}

func (s *Session) publishQR(code string) {
	payload := QRPayload{Code: code}
	if png, err := utils.QRCodeDataURL(code); err != nil {
		utils.LogError("Erro ao gerar imagem do QR code: %v", err)
	} else {
		payload.Base64 = png
	}

	s.mu.Lock()
	s.lastQR = payload.Base64
	s.mu.Unlock()

	s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventQR, Payload: payload})
}

func (s *Session) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		s.setReady(true)
		payload := ReadyPayload{Session: s.name}
		if s.client != nil && s.client.Store.ID != nil {
			payload.JID = s.client.Store.ID.ToNonAD().String()
		}
		utils.LogInfo("Sessão %s pronta", s.name)
		s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventReady, Payload: payload})
	case *events.Disconnected:
		s.setReady(false)
		utils.LogWarning("Sessão %s desconectada", s.name)
	case *events.LoggedOut:
		s.setReady(false)
		utils.LogWarning("Sessão %s deslogada", s.name)
	case *events.Message:
		payload, ok := messagePayload(v)
		if !ok {
			return
		}
		s.chats.observe(payload)
		s.notifier.Broadcast(wsnotify.Event{Type: wsnotify.EventMessage, Payload: payload})
	}
}

func (s *Session) setReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
	if ready {
		s.lastQR = ""
	}
}

func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Session: s.name, Ready: s.ready, QRCode: s.lastQR}
}

// messagePayload extrai o texto do evento; mensagens sem conteúdo visível são ignoradas.
func messagePayload(evt *events.Message) (MessagePayload, bool) {
	body := messageText(evt.Message)
	if body == "" {
		return MessagePayload{}, false
	}
	return MessagePayload{
		ID:        evt.Info.ID,
		Chat:      evt.Info.Chat.String(),
		From:      evt.Info.Sender.ToNonAD().String(),
		PushName:  evt.Info.PushName,
		Body:      body,
		Timestamp: evt.Info.Timestamp,
		FromMe:    evt.Info.IsFromMe,
		IsGroup:   evt.Info.IsGroup,
	}, true
}

func messageText(msg *waProto.Message) string {
	switch {
	case msg == nil:
		return ""
	case msg.GetConversation() != "":
		return msg.GetConversation()
	case msg.GetExtendedTextMessage().GetText() != "":
		return msg.GetExtendedTextMessage().GetText()
	case msg.GetImageMessage().GetCaption() != "":
		return msg.GetImageMessage().GetCaption()
	case msg.GetVideoMessage().GetCaption() != "":
		return msg.GetVideoMessage().GetCaption()
	case msg.GetDocumentMessage() != nil:
		return "[documento] " + msg.GetDocumentMessage().GetFileName()
	case msg.GetAudioMessage() != nil:
		return "[áudio]"
	case msg.GetImageMessage() != nil:
		return "[imagem]"
	}
	return ""
}

func (s *Session) Chats() []Chat {
	return s.chats.list()
}

func (s *Session) Contacts(ctx context.Context) ([]Contact, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}

	all, err := s.client.Store.Contacts.GetAllContacts()
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar contatos: %v", err)
	}

	contacts := make([]Contact, 0, len(all))
	for jid, info := range all {
		if jid.Server != types.DefaultUserServer {
			continue
		}
		name := info.FullName
		if name == "" {
			name = info.FirstName
		}
		if name == "" {
			name = info.PushName
		}
		contacts = append(contacts, Contact{
			ID:       jid.String(),
			Name:     name,
			Phone:    jid.User,
			PushName: info.PushName,
			Business: info.BusinessName,
		})
	}
	sort.Slice(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
	return contacts, nil
}

// ParseRecipient aceita JID completo ou telefone em qualquer formato.
func ParseRecipient(to string) (types.JID, error) {
	to = strings.TrimSpace(to)
	if strings.Contains(to, "@") {
		jid, err := types.ParseJID(to)
		if err != nil {
			return types.JID{}, fmt.Errorf("destinatário inválido: %v", err)
		}
		return jid, nil
	}
	digits := utils.NormalizePhone(to)
	if digits == "" {
		return types.JID{}, fmt.Errorf("destinatário inválido: %q", to)
	}
	return types.NewJID(digits, types.DefaultUserServer), nil
}

func (s *Session) Send(ctx context.Context, to, text string) (*SentMessage, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	jid, err := ParseRecipient(to)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.SendMessage(ctx, jid, &waProto.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao enviar mensagem: %v", err)
	}

	sentAt := resp.Timestamp
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	var from string
	if s.client.Store.ID != nil {
		from = s.client.Store.ID.ToNonAD().String()
	}
	s.chats.observe(MessagePayload{
		ID:        resp.ID,
		Chat:      jid.String(),
		From:      from,
		Body:      text,
		Timestamp: sentAt,
		FromMe:    true,
		IsGroup:   jid.Server == types.GroupServer,
	})
	return &SentMessage{ID: resp.ID, To: jid.String(), Timestamp: sentAt}, nil
}

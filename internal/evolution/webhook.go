package evolution

import (
	"encoding/json"
	"strconv"
	"strings"
)

// WebhookTokenHeader carrega o segredo registrado em SetWebhook.
const WebhookTokenHeader = "X-Webhook-Token"

// Eventos que o receptor de webhook trata; os demais são ignorados.
const (
	EventMessagesUpsert   = "MESSAGES_UPSERT"
	EventConnectionUpdate = "CONNECTION_UPDATE"
	EventQRCodeUpdated    = "QRCODE_UPDATED"
)

type WebhookEvent struct {
	Event    string          `json:"event"`
	Instance string          `json:"instance"`
	Data     json.RawMessage `json:"data"`
	// APIKey vem no corpo quando a Evolution usa a chave global.
	APIKey string `json:"apikey"`
}

// Name normaliza "messages.upsert" e "MESSAGES_UPSERT" para o mesmo valor.
func (e *WebhookEvent) Name() string {
	return strings.ToUpper(strings.ReplaceAll(e.Event, ".", "_"))
}

type InboundMessage struct {
	Key      MessageKey `json:"key"`
	PushName string     `json:"pushName"`
	Message  struct {
		Conversation        string `json:"conversation"`
		ExtendedTextMessage struct {
			Text string `json:"text"`
		} `json:"extendedTextMessage"`
		ImageMessage struct {
			Caption string `json:"caption"`
		} `json:"imageMessage"`
		VideoMessage struct {
			Caption string `json:"caption"`
		} `json:"videoMessage"`
		DocumentMessage struct {
			FileName string `json:"fileName"`
		} `json:"documentMessage"`
	} `json:"message"`
	MessageType      string          `json:"messageType"`
	MessageTimestamp json.RawMessage `json:"messageTimestamp"`
}

// Text devolve o texto visível da mensagem ou um marcador do tipo de mídia.
func (m *InboundMessage) Text() string {
	switch {
	case m.Message.Conversation != "":
		return m.Message.Conversation
	case m.Message.ExtendedTextMessage.Text != "":
		return m.Message.ExtendedTextMessage.Text
	case m.Message.ImageMessage.Caption != "":
		return m.Message.ImageMessage.Caption
	case m.Message.VideoMessage.Caption != "":
		return m.Message.VideoMessage.Caption
	case m.Message.DocumentMessage.FileName != "":
		return "[documento] " + m.Message.DocumentMessage.FileName
	case m.MessageType != "":
		return "[" + m.MessageType + "]"
	}
	return ""
}

// Timestamp aceita o horário em segundos como número ou string.
func (m *InboundMessage) Timestamp() int64 {
	raw := strings.Trim(string(m.MessageTimestamp), `"`)
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

type ConnectionUpdate struct {
	Instance     string `json:"instance"`
	State        string `json:"state"`
	StatusReason int    `json:"statusReason"`
}

type QRCodeUpdate struct {
	QRCode struct {
		Instance    string `json:"instance"`
		PairingCode string `json:"pairingCode"`
		Code        string `json:"code"`
		Base64      string `json:"base64"`
	} `json:"qrcode"`
}

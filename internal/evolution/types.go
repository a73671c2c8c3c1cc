package evolution

import "encoding/json"

type ConnectionStateResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		State        string `json:"state"`
	} `json:"instance"`
}

// Connected informa se o estado do gateway é "open".
func (r *ConnectionStateResponse) Connected() bool {
	return r != nil && r.Instance.State == "open"
}

type NumberResult struct {
	Exists bool   `json:"exists"`
	JID    string `json:"jid"`
	Number string `json:"number"`
}

type CreateInstanceRequest struct {
	InstanceName string `json:"instanceName"`
	QRCode       bool   `json:"qrcode"`
	Integration  string `json:"integration"`
}

type CreateInstanceResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		InstanceID   string `json:"instanceId"`
		Status       string `json:"status"`
	} `json:"instance"`
	Hash   json.RawMessage `json:"hash,omitempty"`
	QRCode struct {
		PairingCode string `json:"pairingCode"`
		Code        string `json:"code"`
		Base64      string `json:"base64"`
	} `json:"qrcode"`
}

type SendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type SendMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	MimeType  string `json:"mimetype,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Media     string `json:"media"`
	FileName  string `json:"fileName,omitempty"`
}

type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

type SendMessageResponse struct {
	Key    MessageKey `json:"key"`
	Status string     `json:"status,omitempty"`
}

type WebhookSettings struct {
	Enabled  bool     `json:"enabled"`
	URL      string   `json:"url"`
	ByEvents bool     `json:"webhookByEvents"`
	Base64   bool     `json:"webhookBase64"`
	Events   []string `json:"events"`
	// Headers são repetidos pela Evolution em cada POST do webhook.
	Headers map[string]string `json:"headers,omitempty"`
}

type SetWebhookRequest struct {
	Webhook WebhookSettings `json:"webhook"`
}

type WebhookResponse struct {
	ID      string   `json:"id,omitempty"`
	URL     string   `json:"url"`
	Enabled bool     `json:"enabled"`
	Events  []string `json:"events"`
}

type RawContact struct {
	ID            string `json:"id"`
	RemoteJID     string `json:"remoteJid"`
	PushName      string `json:"pushName"`
	ProfilePicURL string `json:"profilePicUrl"`
	UpdatedAt     string `json:"updatedAt"`
}

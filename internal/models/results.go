package models

import "time"

type ConnectionStatus struct {
	InstanceName string `json:"instanceName"`
	State        string `json:"state"`
	Connected    bool   `json:"connected"`
}

type NumberCheck struct {
	Number string `json:"number"`
	Exists bool   `json:"exists"`
	JID    string `json:"jid,omitempty"`
}

type Session struct {
	InstanceName string `json:"instanceName"`
	Status       string `json:"status"`
	QRCodeBase64 string `json:"qrcode,omitempty"`
	PairingCode  string `json:"pairingCode,omitempty"`
}

// Contact é o contato já filtrado para o console.
type Contact struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	ProfilePicURL string `json:"profilePicUrl,omitempty"`
	IsGroup       bool   `json:"isGroup"`
	LastSeen      string `json:"lastSeen,omitempty"`
}

type BotChat struct {
	Attendance *Attendance `json:"attendance"`
	Created    bool        `json:"created"`
}

type LoginSession struct {
	SupportUserID string    `json:"support_user_id"`
	Matricula     string    `json:"matricula"`
	LoggedAt      time.Time `json:"logged_at"`
}

type LoginResult struct {
	Session *LoginSession  `json:"session"`
	User    *SupportUser   `json:"user"`
	Rooms   []*SupportRoom `json:"rooms"`
}

type WebhookConfig struct {
	InstanceName string   `json:"instanceName"`
	URL          string   `json:"url"`
	Enabled      bool     `json:"enabled"`
	Events       []string `json:"events"`
}

package relay

import "time"

type QRPayload struct {
	Code   string `json:"code"`
	Base64 string `json:"base64,omitempty"`
}

type ReadyPayload struct {
	Session string `json:"session"`
	JID     string `json:"jid,omitempty"`
}

type MessagePayload struct {
	ID        string    `json:"id"`
	Chat      string    `json:"chat"`
	From      string    `json:"from"`
	PushName  string    `json:"pushName,omitempty"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	FromMe    bool      `json:"fromMe"`
	IsGroup   bool      `json:"isGroup"`
}

type Chat struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	IsGroup       bool      `json:"isGroup"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}

type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	PushName string `json:"pushName,omitempty"`
	Business string `json:"businessName,omitempty"`
}

type SentMessage struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

type Status struct {
	Session string `json:"session"`
	Ready   bool   `json:"ready"`
	QRCode  string `json:"qrcode,omitempty"`
}

type SendRequest struct {
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

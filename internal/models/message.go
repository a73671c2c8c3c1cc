package models

import (
	"context"
	"time"
)

// Quem enviou a mensagem
const (
	SenderClient = "client"
	SenderAgent  = "agent"
	SenderBot    = "bot"
	SenderSystem = "system"
)

type Message struct {
	ID                string    `json:"id"`
	AttendanceID      string    `json:"attendance_id"`
	SenderType        string    `json:"sender_type"`
	SenderID          string    `json:"sender_id,omitempty"`
	Content           string    `json:"content"`
	MediaURL          string    `json:"media_url,omitempty"`
	WhatsAppMessageID string    `json:"whatsapp_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type MessageRepository interface {
	Save(ctx context.Context, message *Message) error
	GetByAttendance(ctx context.Context, attendanceID string) ([]*Message, error)
}

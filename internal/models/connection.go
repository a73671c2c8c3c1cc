package models

import (
	"context"
	"time"
)

// Status da conexão WhatsApp
const (
	ConnectionConnecting   = "connecting"
	ConnectionConnected    = "connected"
	ConnectionDisconnected = "disconnected"
)

type WhatsAppConnection struct {
	ID           string    `json:"id"`
	InstanceName string    `json:"instance_name"`
	Status       string    `json:"status"`
	QRCodeBase64 string    `json:"qrcode_base64,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *WhatsAppConnection) error
	GetByInstance(ctx context.Context, instanceName string) (*WhatsAppConnection, error)
	GetActive(ctx context.Context) (*WhatsAppConnection, error)
	UpdateStatus(ctx context.Context, instanceName string, status string) error
	UpdateQRCode(ctx context.Context, instanceName string, qrcode string) error
	DeleteByInstance(ctx context.Context, instanceName string) error
}

// StateToStatus converte o estado da Evolution API ("open", "connecting", "close")
// para o status guardado no banco.
func StateToStatus(state string) string {
	switch state {
	case "open":
		return ConnectionConnected
	case "connecting":
		return ConnectionConnecting
	default:
		return ConnectionDisconnected
	}
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"

	"github.com/google/uuid"
)

type MySQLConnectionRepository struct {
	db *sql.DB
}

func NewMySQLConnectionRepository(db *sql.DB) *MySQLConnectionRepository {
	return &MySQLConnectionRepository{db: db}
}

// Upsert cria a conexão ou atualiza status e QR code quando instance_name já existe.
func (r *MySQLConnectionRepository) Upsert(ctx context.Context, conn *models.WhatsAppConnection) error {
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now

	query := `
		INSERT INTO whatsapp_connections (id, instance_name, status, qrcode_base64, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			qrcode_base64 = VALUES(qrcode_base64),
			updated_at = VALUES(updated_at)`

	_, err := r.db.ExecContext(ctx, query,
		conn.ID,
		conn.InstanceName,
		conn.Status,
		utils.NullString(conn.QRCodeBase64),
		conn.CreatedAt,
		conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving whatsapp connection: %w", err)
	}
	return nil
}

func (r *MySQLConnectionRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.WhatsAppConnection, error) {
	conn := &models.WhatsAppConnection{}
	var qrcode sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&conn.ID,
		&conn.InstanceName,
		&conn.Status,
		&qrcode,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting whatsapp connection: %w", err)
	}
	conn.QRCodeBase64 = qrcode.String
	return conn, nil
}

func (r *MySQLConnectionRepository) GetByInstance(ctx context.Context, instanceName string) (*models.WhatsAppConnection, error) {
	query := `
		SELECT id, instance_name, status, qrcode_base64, created_at, updated_at
		FROM whatsapp_connections
		WHERE instance_name = ?`
	return r.getOne(ctx, query, instanceName)
}

// GetActive devolve a conexão conectada atualizada mais recentemente.
func (r *MySQLConnectionRepository) GetActive(ctx context.Context) (*models.WhatsAppConnection, error) {
	query := `
		SELECT id, instance_name, status, qrcode_base64, created_at, updated_at
		FROM whatsapp_connections
		WHERE status = ?
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.getOne(ctx, query, models.ConnectionConnected)
}

func (r *MySQLConnectionRepository) UpdateStatus(ctx context.Context, instanceName string, status string) error {
	query := `UPDATE whatsapp_connections SET status = ?, updated_at = ? WHERE instance_name = ?`
	if _, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), instanceName); err != nil {
		return fmt.Errorf("error updating whatsapp connection status: %w", err)
	}
	return nil
}

func (r *MySQLConnectionRepository) UpdateQRCode(ctx context.Context, instanceName string, qrcode string) error {
	query := `UPDATE whatsapp_connections SET qrcode_base64 = ?, updated_at = ? WHERE instance_name = ?`
	if _, err := r.db.ExecContext(ctx, query, utils.NullString(qrcode), time.Now().UTC(), instanceName); err != nil {
		return fmt.Errorf("error updating whatsapp connection qrcode: %w", err)
	}
	return nil
}

func (r *MySQLConnectionRepository) DeleteByInstance(ctx context.Context, instanceName string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM whatsapp_connections WHERE instance_name = ?`, instanceName); err != nil {
		return fmt.Errorf("error deleting whatsapp connection: %w", err)
	}
	return nil
}

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

type MySQLMessageRepository struct {
	db *sql.DB
}

func NewMySQLMessageRepository(db *sql.DB) *MySQLMessageRepository {
	return &MySQLMessageRepository{db: db}
}

func (r *MySQLMessageRepository) Save(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (
			id, attendance_id, sender_type, sender_id, content,
			media_url, whatsapp_message_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.AttendanceID,
		message.SenderType,
		utils.NullString(message.SenderID),
		message.Content,
		utils.NullString(message.MediaURL),
		utils.NullString(message.WhatsAppMessageID),
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %w", err)
	}
	return nil
}

// GetByAttendance devolve as mensagens em ordem cronológica.
func (r *MySQLMessageRepository) GetByAttendance(ctx context.Context, attendanceID string) ([]*models.Message, error) {
	query := `
		SELECT
			id, attendance_id, sender_type, sender_id, content,
			media_url, whatsapp_message_id, created_at
		FROM messages
		WHERE attendance_id = ?
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		message := &models.Message{}
		var senderID, mediaURL, whatsappMessageID sql.NullString

		err := rows.Scan(
			&message.ID,
			&message.AttendanceID,
			&message.SenderType,
			&senderID,
			&message.Content,
			&mediaURL,
			&whatsappMessageID,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}

		message.SenderID = senderID.String
		message.MediaURL = mediaURL.String
		message.WhatsAppMessageID = whatsappMessageID.String
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

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

type MySQLRoomRepository struct {
	db *sql.DB
}

func NewMySQLRoomRepository(db *sql.DB) *MySQLRoomRepository {
	return &MySQLRoomRepository{db: db}
}

func (r *MySQLRoomRepository) Save(ctx context.Context, room *models.SupportRoom) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO support_rooms (id, name, support_user_id, created_by, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.SupportUserID,
		utils.NullString(room.CreatedBy),
		room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving support room: %w", err)
	}
	return nil
}

func (r *MySQLRoomRepository) GetByID(ctx context.Context, id string) (*models.SupportRoom, error) {
	query := `SELECT id, name, support_user_id, created_by, created_at FROM support_rooms WHERE id = ?`

	room := &models.SupportRoom{}
	var createdBy sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.SupportUserID,
		&createdBy,
		&room.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting support room: %w", err)
	}

	room.CreatedBy = createdBy.String
	return room, nil
}

func (r *MySQLRoomRepository) GetBySupportUser(ctx context.Context, supportUserID string) ([]*models.SupportRoom, error) {
	query := `
		SELECT id, name, support_user_id, created_by, created_at
		FROM support_rooms
		WHERE support_user_id = ?
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, supportUserID)
	if err != nil {
		return nil, fmt.Errorf("error querying support rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]*models.SupportRoom, 0)
	for rows.Next() {
		room := &models.SupportRoom{}
		var createdBy sql.NullString
		if err := rows.Scan(&room.ID, &room.Name, &room.SupportUserID, &createdBy, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning support room: %w", err)
		}
		room.CreatedBy = createdBy.String
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating support rooms: %w", err)
	}
	return rooms, nil
}

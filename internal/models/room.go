package models

import (
	"context"
	"time"
)

type SupportRoom struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SupportUserID string    `json:"support_user_id"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type RoomRepository interface {
	Save(ctx context.Context, room *SupportRoom) error
	GetByID(ctx context.Context, id string) (*SupportRoom, error)
	GetBySupportUser(ctx context.Context, supportUserID string) ([]*SupportRoom, error)
}

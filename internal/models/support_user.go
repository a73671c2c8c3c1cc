package models

import (
	"context"
	"time"
)

type SupportUser struct {
	ID          string     `json:"id"`
	Matricula   string     `json:"matricula"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SupportUserRepository interface {
	GetByID(ctx context.Context, id string) (*SupportUser, error)
	GetByMatricula(ctx context.Context, matricula string) (*SupportUser, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

type Admin struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*Admin, error)
	Delete(ctx context.Context, id string) error
}

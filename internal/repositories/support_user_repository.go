package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"
)

type MySQLSupportUserRepository struct {
	db *sql.DB
}

func NewMySQLSupportUserRepository(db *sql.DB) *MySQLSupportUserRepository {
	return &MySQLSupportUserRepository{db: db}
}

func (r *MySQLSupportUserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.SupportUser, error) {
	query := `
		SELECT id, matricula, name, email, active, last_login_at, created_at
		FROM support_users
		WHERE ` + where

	user := &models.SupportUser{}
	var email sql.NullString
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Matricula,
		&user.Name,
		&email,
		&user.Active,
		&lastLogin,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting support user: %w", err)
	}

	user.Email = email.String
	user.LastLoginAt = utils.TimePtr(lastLogin)
	return user, nil
}

func (r *MySQLSupportUserRepository) GetByID(ctx context.Context, id string) (*models.SupportUser, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *MySQLSupportUserRepository) GetByMatricula(ctx context.Context, matricula string) (*models.SupportUser, error) {
	return r.getOne(ctx, "matricula = ?", matricula)
}

func (r *MySQLSupportUserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE support_users SET last_login_at = ? WHERE id = ?`, at, id); err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

type MySQLAdminRepository struct {
	db *sql.DB
}

func NewMySQLAdminRepository(db *sql.DB) *MySQLAdminRepository {
	return &MySQLAdminRepository{db: db}
}

func (r *MySQLAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `SELECT id, name, email, created_at FROM admins WHERE id = ?`

	admin := &models.Admin{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting admin: %w", err)
	}
	return admin, nil
}

// Delete remove o admin; as salas criadas por ele ficam com created_by nulo.
func (r *MySQLAdminRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting admin: %w", err)
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"

	"github.com/google/uuid"
)

const attendanceColumns = `
	id, room_id, agent_id, client_name, client_phone, status, channel,
	observations, bot_key, created_at, updated_at, finished_at`

type MySQLAttendanceRepository struct {
	db *sql.DB
}

func NewMySQLAttendanceRepository(db *sql.DB) *MySQLAttendanceRepository {
	return &MySQLAttendanceRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttendance(row rowScanner) (*models.Attendance, error) {
	attendance := &models.Attendance{}
	var roomID, agentID, observations, botKey sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(
		&attendance.ID,
		&roomID,
		&agentID,
		&attendance.ClientName,
		&attendance.ClientPhone,
		&attendance.Status,
		&attendance.Channel,
		&observations,
		&botKey,
		&attendance.CreatedAt,
		&attendance.UpdatedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	attendance.RoomID = roomID.String
	attendance.AgentID = agentID.String
	attendance.Observations = observations.String
	attendance.BotKey = botKey.String
	attendance.FinishedAt = utils.TimePtr(finishedAt)
	return attendance, nil
}

// Save insere o atendimento. Um bot_key repetido devolve ErrDuplicate.
func (r *MySQLAttendanceRepository) Save(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = now
	}
	attendance.UpdatedAt = now

	query := `
		INSERT INTO attendances (
			id, room_id, agent_id, client_name, client_phone, status, channel,
			observations, bot_key, created_at, updated_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		attendance.ID,
		utils.NullString(attendance.RoomID),
		utils.NullString(attendance.AgentID),
		attendance.ClientName,
		attendance.ClientPhone,
		attendance.Status,
		attendance.Channel,
		utils.NullString(attendance.Observations),
		utils.NullString(attendance.BotKey),
		attendance.CreatedAt,
		attendance.UpdatedAt,
		utils.NullTime(attendance.FinishedAt),
	)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("error saving attendance: %w", err)
	}
	return nil
}

func (r *MySQLAttendanceRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Attendance, error) {
	attendance, err := scanAttendance(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting attendance: %w", err)
	}
	return attendance, nil
}

func (r *MySQLAttendanceRepository) GetByID(ctx context.Context, id string) (*models.Attendance, error) {
	return r.getOne(ctx, `SELECT`+attendanceColumns+` FROM attendances WHERE id = ?`, id)
}

func (r *MySQLAttendanceRepository) GetByBotKey(ctx context.Context, botKey string) (*models.Attendance, error) {
	return r.getOne(ctx, `SELECT`+attendanceColumns+` FROM attendances WHERE bot_key = ?`, botKey)
}

// FindOpenByPhone devolve o atendimento aberto mais recente do telefone.
func (r *MySQLAttendanceRepository) FindOpenByPhone(ctx context.Context, phone string) (*models.Attendance, error) {
	query := `SELECT` + attendanceColumns + `
		FROM attendances
		WHERE client_phone = ? AND status IN (?, ?, ?)
		ORDER BY created_at DESC
		LIMIT 1`
	return r.getOne(ctx, query, phone,
		models.AttendanceWaiting, models.AttendanceActive, models.AttendanceInProgress)
}

func (r *MySQLAttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, error) {
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.AgentID != "" {
		if filter.IncludeUnassigned {
			conditions = append(conditions, "(agent_id = ? OR agent_id IS NULL)")
		} else {
			conditions = append(conditions, "agent_id = ?")
		}
		args = append(args, filter.AgentID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		conditions = append(conditions, "status IN ("+placeholders+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}

	query := `SELECT` + attendanceColumns + ` FROM attendances`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying attendances: %w", err)
	}
	defer rows.Close()

	attendances := make([]*models.Attendance, 0)
	for rows.Next() {
		attendance, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		attendances = append(attendances, attendance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendances: %w", err)
	}
	return attendances, nil
}

// Update grava status, observações e a data de encerramento.
func (r *MySQLAttendanceRepository) Update(ctx context.Context, attendance *models.Attendance) error {
	attendance.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE attendances
		SET agent_id = ?, status = ?, observations = ?, updated_at = ?, finished_at = ?
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		utils.NullString(attendance.AgentID),
		attendance.Status,
		utils.NullString(attendance.Observations),
		attendance.UpdatedAt,
		utils.NullTime(attendance.FinishedAt),
		attendance.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating attendance: %w", err)
	}
	return nil
}

package models

import (
	"context"
	"time"
)

// Status do atendimento
const (
	AttendanceWaiting    = "waiting"
	AttendanceActive     = "active"
	AttendanceInProgress = "in_progress"
	AttendanceFinished   = "finished"
	AttendanceCancelled  = "cancelled"
)

const (
	ChannelWhatsApp = "whatsapp"
	ChannelBot      = "bot"
)

var attendanceStatuses = map[string]bool{
	AttendanceWaiting:    true,
	AttendanceActive:     true,
	AttendanceInProgress: true,
	AttendanceFinished:   true,
	AttendanceCancelled:  true,
}

// OpenAttendanceStatuses são os status em que o atendimento ainda recebe mensagens.
var OpenAttendanceStatuses = []string{AttendanceWaiting, AttendanceActive, AttendanceInProgress}

func IsValidAttendanceStatus(status string) bool {
	return attendanceStatuses[status]
}

type Attendance struct {
	ID           string     `json:"id"`
	RoomID       string     `json:"room_id,omitempty"`
	AgentID      string     `json:"agent_id,omitempty"`
	ClientName   string     `json:"client_name"`
	ClientPhone  string     `json:"client_phone"`
	Status       string     `json:"status"`
	Channel      string     `json:"channel"`
	Observations string     `json:"observations,omitempty"`
	BotKey       string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// BotChatKey identifica o atendimento de bot de um par sala/usuário.
func BotChatKey(roomID, supportUserID string) string {
	return roomID + ":" + supportUserID
}

type AttendanceFilter struct {
	RoomID   string
	AgentID  string
	Statuses []string
	Limit    int
	// IncludeUnassigned traz também a fila sem agente junto com AgentID.
	IncludeUnassigned bool
}

type AttendanceRepository interface {
	Save(ctx context.Context, attendance *Attendance) error
	GetByID(ctx context.Context, id string) (*Attendance, error)
	GetByBotKey(ctx context.Context, botKey string) (*Attendance, error)
	FindOpenByPhone(ctx context.Context, phone string) (*Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]*Attendance, error)
	Update(ctx context.Context, attendance *Attendance) error
}

// OwnedBy informa se o agente pode ler ou responder o atendimento.
// Atendimentos sem agente estão na fila e podem ser assumidos.
func (a *Attendance) OwnedBy(agentID string) bool {
	return a.AgentID == "" || a.AgentID == agentID
}

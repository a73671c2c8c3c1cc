package models

type InstanceRequest struct {
	InstanceName string `json:"instanceName" validate:"required" example:"support-session"`
}

type CheckIsWhatsAppRequest struct {
	InstanceName string   `json:"instanceName" validate:"required"`
	Phone        string   `json:"phone"`
	Phones       []string `json:"phones" validate:"omitempty,max=50,dive,required"`
}

// Numbers junta phone e phones numa só lista.
func (r *CheckIsWhatsAppRequest) Numbers() []string {
	numbers := make([]string, 0, len(r.Phones)+1)
	if r.Phone != "" {
		numbers = append(numbers, r.Phone)
	}
	return append(numbers, r.Phones...)
}

type SetWebhookRequest struct {
	InstanceName string   `json:"instanceName" validate:"required"`
	URL          string   `json:"url" validate:"omitempty,url"`
	Events       []string `json:"events"`
}

type SendMessageRequest struct {
	AttendanceID string `json:"attendance_id" validate:"required"`
	AgentID      string `json:"agent_id" validate:"required"`
	Message      string `json:"message" validate:"required"`
	InstanceName string `json:"instanceName"`
}

type SendAttachmentRequest struct {
	AttendanceID string
	AgentID      string
	InstanceName string
	FileName     string
	ContentType  string
	Caption      string
	Data         []byte
}

type ListAttendancesRequest struct {
	SupportUserID string   `json:"support_user_id" validate:"required"`
	RoomID        string   `json:"room_id"`
	Status        []string `json:"status" validate:"omitempty,dive,oneof=waiting active in_progress finished cancelled"`
	Limit         int      `json:"limit" validate:"omitempty,min=1,max=500"`
}

type ListMessagesRequest struct {
	AttendanceID string `json:"attendance_id" validate:"required"`
	AgentID      string `json:"agent_id" validate:"required"`
}

type StartBotChatRequest struct {
	RoomID        string `json:"room_id" validate:"required"`
	SupportUserID string `json:"support_user_id" validate:"required"`
	ClientName    string `json:"client_name"`
	ClientPhone   string `json:"client_phone"`
	Greeting      string `json:"greeting"`
}

type SupportLoginRequest struct {
	Matricula string `json:"matricula" validate:"required"`
}

type DeleteAdminRequest struct {
	AdminID     string `json:"admin_id" validate:"required"`
	RequesterID string `json:"requester_id" validate:"required"`
}

type UpdateAttendanceRequest struct {
	AttendanceID string  `json:"attendance_id" validate:"required"`
	AgentID      string  `json:"agent_id" validate:"required"`
	Status       string  `json:"status" validate:"omitempty,oneof=waiting active in_progress finished cancelled"`
	Observations *string `json:"observations"`
}

type CreateSupportRoomRequest struct {
	RequesterID   string `json:"requester_id" validate:"required"`
	Name          string `json:"name" validate:"required,max=255"`
	SupportUserID string `json:"support_user_id" validate:"required"`
}

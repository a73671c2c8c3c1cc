package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"whatsapp-support/config"
	"whatsapp-support/internal/evolution"
	"whatsapp-support/internal/models"
	"whatsapp-support/internal/repositories"
	"whatsapp-support/internal/wsnotify"
)

type sentText struct {
	Instance, Number, Text string
}

type fakeGateway struct {
	mu sync.Mutex

	state       string
	stateErr    error
	deleteErr   error
	checked     []string
	createResp  *evolution.CreateInstanceResponse
	sendErr     error
	sent        []sentText
	media       []evolution.SendMediaRequest
	webhookURL  string
	webhookEvts []string
	webhookHdrs map[string]string
	contacts    []evolution.RawContact
	calls       []string
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) ConnectionState(ctx context.Context, instance string) (*evolution.ConnectionStateResponse, error) {
	g.record("connectionState")
	if g.stateErr != nil {
		return nil, g.stateErr
	}
	resp := &evolution.ConnectionStateResponse{}
	resp.Instance.InstanceName = instance
	resp.Instance.State = g.state
	return resp, nil
}

func (g *fakeGateway) CheckIsWhatsApp(ctx context.Context, instance string, numbers []string) ([]evolution.NumberResult, error) {
	g.record("checkIsWhatsapp")
	g.checked = numbers
	results := make([]evolution.NumberResult, 0, len(numbers))
	for _, n := range numbers {
		results = append(results, evolution.NumberResult{Number: n, Exists: true, JID: n + "@s.whatsapp.net"})
	}
	return results, nil
}

func (g *fakeGateway) DeleteInstance(ctx context.Context, instance string) error {
	g.record("deleteInstance")
	return g.deleteErr
}

func (g *fakeGateway) CreateInstance(ctx context.Context, instance string) (*evolution.CreateInstanceResponse, error) {
	g.record("createInstance")
	if g.createResp != nil {
		return g.createResp, nil
	}
	return &evolution.CreateInstanceResponse{}, nil
}

func (g *fakeGateway) SendText(ctx context.Context, instance, number, text string) (*evolution.SendMessageResponse, error) {
	g.record("sendText")
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.sent = append(g.sent, sentText{Instance: instance, Number: number, Text: text})
	return &evolution.SendMessageResponse{Key: evolution.MessageKey{ID: "WA-TEXT"}}, nil
}

func (g *fakeGateway) SendMedia(ctx context.Context, instance string, media evolution.SendMediaRequest) (*evolution.SendMessageResponse, error) {
	g.record("sendMedia")
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.media = append(g.media, media)
	return &evolution.SendMessageResponse{Key: evolution.MessageKey{ID: "WA-MEDIA"}}, nil
}

func (g *fakeGateway) SetWebhook(ctx context.Context, instance, url string, events []string, headers map[string]string) (*evolution.WebhookResponse, error) {
	g.record("setWebhook")
	g.webhookURL = url
	g.webhookEvts = events
	g.webhookHdrs = headers
	return &evolution.WebhookResponse{URL: url, Enabled: true, Events: events}, nil
}

func (g *fakeGateway) FindContacts(ctx context.Context, instance string) ([]evolution.RawContact, error) {
	g.record("findContacts")
	return g.contacts, nil
}

type memoryStore struct {
	mu sync.Mutex

	attendances map[string]*models.Attendance
	messages    []*models.Message
	rooms       map[string]*models.SupportRoom
	users       map[string]*models.SupportUser
	admins      map[string]*models.Admin
	connections map[string]*models.WhatsAppConnection

	// forceDuplicate faz o próximo Save de atendimento simular corrida no bot_key
	forceDuplicate *models.Attendance
	deletedConns   []string
	seq            int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		attendances: map[string]*models.Attendance{},
		rooms:       map[string]*models.SupportRoom{},
		users:       map[string]*models.SupportUser{},
		admins:      map[string]*models.Admin{},
		connections: map[string]*models.WhatsAppConnection{},
	}
}

func (m *memoryStore) repos() Repositories {
	return Repositories{
		Attendances:  attendanceRepo{m},
		Messages:     messageRepo{m},
		Rooms:        roomRepo{m},
		SupportUsers: supportUserRepo{m},
		Admins:       adminRepo{m},
		Connections:  connectionRepo{m},
	}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func copyAttendance(a *models.Attendance) *models.Attendance {
	c := *a
	return &c
}

type attendanceRepo struct{ m *memoryStore }

func (r attendanceRepo) Save(ctx context.Context, a *models.Attendance) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.forceDuplicate != nil {
		winner := r.m.forceDuplicate
		r.m.forceDuplicate = nil
		r.m.attendances[winner.ID] = winner
		return repositories.ErrDuplicate
	}
	if a.BotKey != "" {
		for _, existing := range r.m.attendances {
			if existing.BotKey == a.BotKey {
				return repositories.ErrDuplicate
			}
		}
	}
	if a.ID == "" {
		a.ID = r.m.nextID("att")
	}
	r.m.attendances[a.ID] = copyAttendance(a)
	return nil
}

func (r attendanceRepo) GetByID(ctx context.Context, id string) (*models.Attendance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if a, ok := r.m.attendances[id]; ok {
		return copyAttendance(a), nil
	}
	return nil, nil
}

func (r attendanceRepo) GetByBotKey(ctx context.Context, key string) (*models.Attendance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.attendances {
		if a.BotKey == key {
			return copyAttendance(a), nil
		}
	}
	return nil, nil
}

func (r attendanceRepo) FindOpenByPhone(ctx context.Context, phone string) (*models.Attendance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.attendances {
		if a.ClientPhone != phone {
			continue
		}
		for _, status := range models.OpenAttendanceStatuses {
			if a.Status == status {
				return copyAttendance(a), nil
			}
		}
	}
	return nil, nil
}

func (r attendanceRepo) List(ctx context.Context, f models.AttendanceFilter) ([]*models.Attendance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Attendance
	for _, a := range r.m.attendances {
		if f.RoomID != "" && a.RoomID != f.RoomID {
			continue
		}
		if f.AgentID != "" && a.AgentID != f.AgentID && !(f.IncludeUnassigned && a.AgentID == "") {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, s := range f.Statuses {
				match = match || a.Status == s
			}
			if !match {
				continue
			}
		}
		out = append(out, copyAttendance(a))
	}
	return out, nil
}

func (r attendanceRepo) Update(ctx context.Context, a *models.Attendance) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.attendances[a.ID] = copyAttendance(a)
	return nil
}

type messageRepo struct{ m *memoryStore }

func (r messageRepo) Save(ctx context.Context, msg *models.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = r.m.nextID("msg")
	}
	c := *msg
	r.m.messages = append(r.m.messages, &c)
	return nil
}

func (r messageRepo) GetByAttendance(ctx context.Context, attendanceID string) ([]*models.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Message, 0)
	for _, msg := range r.m.messages {
		if msg.AttendanceID == attendanceID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type roomRepo struct{ m *memoryStore }

func (r roomRepo) Save(ctx context.Context, room *models.SupportRoom) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if room.ID == "" {
		room.ID = r.m.nextID("room")
	}
	c := *room
	r.m.rooms[room.ID] = &c
	return nil
}

func (r roomRepo) GetByID(ctx context.Context, id string) (*models.SupportRoom, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.rooms[id], nil
}

func (r roomRepo) GetBySupportUser(ctx context.Context, userID string) ([]*models.SupportRoom, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.SupportRoom, 0)
	for _, room := range r.m.rooms {
		if room.SupportUserID == userID {
			out = append(out, room)
		}
	}
	return out, nil
}

type supportUserRepo struct{ m *memoryStore }

func (r supportUserRepo) GetByID(ctx context.Context, id string) (*models.SupportUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.users[id], nil
}

func (r supportUserRepo) GetByMatricula(ctx context.Context, matricula string) (*models.SupportUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Matricula == matricula {
			return u, nil
		}
	}
	return nil, nil
}

func (r supportUserRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if u, ok := r.m.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type adminRepo struct{ m *memoryStore }

func (r adminRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.admins[id], nil
}

func (r adminRepo) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.admins, id)
	return nil
}

type connectionRepo struct{ m *memoryStore }

func (r connectionRepo) Upsert(ctx context.Context, c *models.WhatsAppConnection) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *c
	r.m.connections[c.InstanceName] = &cp
	return nil
}

func (r connectionRepo) GetByInstance(ctx context.Context, name string) (*models.WhatsAppConnection, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.connections[name], nil
}

func (r connectionRepo) GetActive(ctx context.Context) (*models.WhatsAppConnection, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.connections {
		if c.Status == models.ConnectionConnected {
			return c, nil
		}
	}
	return nil, nil
}

func (r connectionRepo) UpdateStatus(ctx context.Context, name, status string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if c, ok := r.m.connections[name]; ok {
		c.Status = status
	}
	return nil
}

func (r connectionRepo) UpdateQRCode(ctx context.Context, name, qr string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if c, ok := r.m.connections[name]; ok {
		c.QRCodeBase64 = qr
	}
	return nil
}

func (r connectionRepo) DeleteByInstance(ctx context.Context, name string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.deletedConns = append(r.m.deletedConns, name)
	delete(r.m.connections, name)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []wsnotify.Event
}

func (n *recordingNotifier) Broadcast(event wsnotify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeUploader struct {
	keys []string
	err  error
}

func (u *fakeUploader) UploadBytes(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.keys = append(u.keys, fileName)
	return "https://bucket.test/" + fileName, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Evolution: &config.EvolutionConfig{
			WebhookPublicURL: "https://api.test/api/v1/webhook/evolution",
			WebhookSecret:    "segredo",
		},
		Store:     &config.StoreConfig{},
		Relay:     &config.RelayConfig{SessionName: "support-session"},
		S3Config:  &config.S3Config{},
	}
}

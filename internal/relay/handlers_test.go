package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	contacts []Contact
	chats    []Chat
	sendErr  error
	sentTo   string
	sentText string
}

func (f *fakeMessenger) Contacts(ctx context.Context) ([]Contact, error) {
	if f.contacts == nil {
		return nil, ErrNotReady
	}
	return f.contacts, nil
}

func (f *fakeMessenger) Chats() []Chat { return f.chats }

func (f *fakeMessenger) Send(ctx context.Context, to, text string) (*SentMessage, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentTo, f.sentText = to, text
	return &SentMessage{ID: "3EB0", To: to, Timestamp: time.Now()}, nil
}

func (f *fakeMessenger) Status() Status { return Status{Session: "support-session"} }

func serve(h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestContactsHandler(t *testing.T) {
	messenger := &fakeMessenger{contacts: []Contact{{ID: "5511@s.whatsapp.net", Name: "Ana", Phone: "5511"}}}
	h := NewHandler(messenger)

	rec := serve(h.Contacts, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Success bool      `json:"success"`
		Data    []Contact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Ana", env.Data[0].Name)

	rec = serve(NewHandler(&fakeMessenger{}).Contacts, http.MethodGet, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChatsHandler(t *testing.T) {
	h := NewHandler(&fakeMessenger{chats: []Chat{{ID: "a@s.whatsapp.net"}}})

	rec := serve(h.Chats, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@s.whatsapp.net")
}

func TestSendHandler(t *testing.T) {
	messenger := &fakeMessenger{}
	h := NewHandler(messenger)

	rec := serve(h.Send, http.MethodPost, `{"to":"+55 11 99999-0000","message":"Olá"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+55 11 99999-0000", messenger.sentTo)
	assert.Equal(t, "Olá", messenger.sentText)

	rec = serve(h.Send, http.MethodPost, `{"to":"5511999990000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.Send, http.MethodPost, `{"to":"---","message":"oi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	messenger.sendErr = errors.New("websocket not connected")
	rec = serve(h.Send, http.MethodPost, `{"to":"5511999990000","message":"oi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "websocket not connected")
}

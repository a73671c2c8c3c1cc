package evolution

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/", "secret-key")
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient("", "key")
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewClient("http://gateway", " ")
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestConnectionState(t *testing.T) {
	for _, tc := range []struct {
		state     string
		connected bool
	}{
		{"open", true},
		{"connecting", false},
		{"close", false},
	} {
		t.Run(tc.state, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/instance/connectionState/suporte", r.URL.Path)
				assert.Equal(t, "secret-key", r.Header.Get("apikey"))
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"instance": map[string]string{"instanceName": "suporte", "state": tc.state},
				})
			})

			resp, err := client.ConnectionState(context.Background(), "suporte")
			require.NoError(t, err)
			assert.Equal(t, tc.state, resp.Instance.State)
			assert.Equal(t, tc.connected, resp.Connected())
		})
	}
}

func TestUpstreamErrorCarriesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"instance not found"}`, http.StatusNotFound)
	})

	err := client.DeleteInstance(context.Background(), "missing")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.Status)
	assert.Contains(t, err.Error(), "instance not found")
}

func TestDeleteInstance(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/instance/delete/suporte", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"status": "SUCCESS"})
	})

	require.NoError(t, client.DeleteInstance(context.Background(), "suporte"))
	assert.True(t, called)
}

func TestCheckIsWhatsApp(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/checkIsWhatsapp/suporte", r.URL.Path)
		var body struct {
			Numbers []string `json:"numbers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"5511999990000"}, body.Numbers)
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"exists": true, "jid": "5511999990000@s.whatsapp.net", "number": "5511999990000"},
		})
	})

	results, err := client.CheckIsWhatsApp(context.Background(), "suporte", []string{"5511999990000"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Exists)
}

func TestCreateInstance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/instance/create", r.URL.Path)
		var body CreateInstanceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nova", body.InstanceName)
		assert.True(t, body.QRCode)
		assert.Equal(t, "WHATSAPP-BAILEYS", body.Integration)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"instance": map[string]string{"instanceName": "nova", "status": "connecting"},
			"qrcode":   map[string]string{"base64": "data:image/png;base64,AAA", "code": "2@abc"},
		})
	})

	resp, err := client.CreateInstance(context.Background(), "nova")
	require.NoError(t, err)
	assert.Equal(t, "connecting", resp.Instance.Status)
	assert.Equal(t, "data:image/png;base64,AAA", resp.QRCode.Base64)
}

func TestSendText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/message/sendText/suporte", r.URL.Path)
		var body SendTextRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "5511999990000", body.Number)
		assert.Equal(t, "Olá!", body.Text)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"key":    map[string]interface{}{"remoteJid": "5511999990000@s.whatsapp.net", "fromMe": true, "id": "ABC123"},
			"status": "PENDING",
		})
	})

	resp, err := client.SendText(context.Background(), "suporte", "5511999990000", "Olá!")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", resp.Key.ID)
}

func TestSetWebhookUsesDefaultEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/set/suporte", r.URL.Path)
		var body SetWebhookRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Webhook.Enabled)
		assert.Equal(t, "https://example.com/hook", body.Webhook.URL)
		assert.Equal(t, DefaultWebhookEvents, body.Webhook.Events)
		assert.Equal(t, "segredo", body.Webhook.Headers[WebhookTokenHeader])
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"url": body.Webhook.URL, "enabled": true, "events": body.Webhook.Events,
		})
	})

	resp, err := client.SetWebhook(context.Background(), "suporte", "https://example.com/hook", nil,
		map[string]string{WebhookTokenHeader: "segredo"})
	require.NoError(t, err)
	assert.True(t, resp.Enabled)
}

func TestFindContacts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/chat/findContacts/suporte", r.URL.Path)
		writeJSON(w, http.StatusOK, []map[string]string{
			{"id": "c1", "remoteJid": "5511988887777@s.whatsapp.net", "pushName": "Maria"},
		})
	})

	raw, err := client.FindContacts(context.Background(), "suporte")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "Maria", raw[0].PushName)
}

func TestNewClientLeavesTimeoutToContext(t *testing.T) {
	client, err := NewClient("https://evolution.test", "key")
	require.NoError(t, err)
	assert.Zero(t, client.http.GetClient().Timeout)
}

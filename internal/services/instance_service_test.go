package services

import (
	"context"
	"testing"

	"whatsapp-support/internal/evolution"
	"whatsapp-support/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstanceService(gw Gateway) (*InstanceService, *memoryStore, *recordingNotifier) {
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	return NewInstanceService(testConfig(), gw, store.repos().Connections, notifier), store, notifier
}

func TestCheckConnectionConnectedOnlyWhenOpen(t *testing.T) {
	for state, want := range map[string]bool{"open": true, "connecting": false, "close": false, "": false} {
		gw := &fakeGateway{state: state}
		svc, store, _ := newInstanceService(gw)
		store.connections["suporte"] = &models.WhatsAppConnection{InstanceName: "suporte", Status: "disconnected"}

		status, err := svc.CheckConnection(context.Background(), "suporte")
		require.NoError(t, err)
		assert.Equal(t, want, status.Connected, "state %q", state)
		assert.Equal(t, models.StateToStatus(state), store.connections["suporte"].Status)
	}
}

func TestCheckConnectionWithoutGateway(t *testing.T) {
	svc, _, _ := newInstanceService(nil)

	_, err := svc.CheckConnection(context.Background(), "suporte")
	require.Error(t, err)
	assert.Equal(t, models.KindConfig, models.KindOf(err))
	assert.Equal(t, 500, models.StatusFor(err))
}

func TestCheckConnectionRequiresInstance(t *testing.T) {
	svc, _, _ := newInstanceService(&fakeGateway{})

	_, err := svc.CheckConnection(context.Background(), "  ")
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))
}

func TestCheckConnectionUpstreamFailure(t *testing.T) {
	gw := &fakeGateway{stateErr: &evolution.UpstreamError{Status: 404, Body: "instance does not exist"}}
	svc, _, _ := newInstanceService(gw)

	_, err := svc.CheckConnection(context.Background(), "suporte")
	require.Error(t, err)
	assert.Equal(t, 500, models.StatusFor(err))
	assert.Contains(t, models.PublicMessage(err), "instance does not exist")
}

func TestCheckIsWhatsAppNormalizesNumbers(t *testing.T) {
	gw := &fakeGateway{}
	svc, _, _ := newInstanceService(gw)

	checks, err := svc.CheckIsWhatsApp(context.Background(), "suporte", []string{"+55 11 99999-0000", "--"})
	require.NoError(t, err)
	assert.Equal(t, []string{"5511999990000"}, gw.checked)
	require.Len(t, checks, 1)
	assert.True(t, checks[0].Exists)

	_, err = svc.CheckIsWhatsApp(context.Background(), "suporte", []string{"abc"})
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))
}

func TestDeleteInstanceUpstreamFailureKeepsStore(t *testing.T) {
	gw := &fakeGateway{deleteErr: &evolution.UpstreamError{Status: 500, Body: "boom"}}
	svc, store, _ := newInstanceService(gw)
	store.connections["suporte"] = &models.WhatsAppConnection{InstanceName: "suporte", Status: "connected"}

	err := svc.DeleteInstance(context.Background(), "suporte")
	require.Error(t, err)
	assert.Equal(t, models.KindUpstream, models.KindOf(err))
	assert.Empty(t, store.deletedConns)
	assert.Contains(t, store.connections, "suporte")
}

func TestDeleteInstanceRemovesAfterUpstream(t *testing.T) {
	gw := &fakeGateway{}
	svc, store, notifier := newInstanceService(gw)
	store.connections["suporte"] = &models.WhatsAppConnection{InstanceName: "suporte", Status: "connected"}

	require.NoError(t, svc.DeleteInstance(context.Background(), "suporte"))
	assert.Equal(t, []string{"deleteInstance"}, gw.calls)
	assert.Equal(t, []string{"suporte"}, store.deletedConns)
	assert.Equal(t, []string{"connection"}, notifier.types())
}

func TestCreateSessionDefaultsAndRendersQRCode(t *testing.T) {
	resp := &evolution.CreateInstanceResponse{}
	resp.QRCode.Code = "2@abcdef"
	resp.QRCode.PairingCode = "WZYEH1YY"
	gw := &fakeGateway{createResp: resp}
	svc, store, _ := newInstanceService(gw)

	session, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "support-session", session.InstanceName)
	assert.Equal(t, models.ConnectionConnecting, session.Status)
	assert.Contains(t, session.QRCodeBase64, "data:image/png;base64,")
	assert.Equal(t, "WZYEH1YY", session.PairingCode)
	require.Contains(t, store.connections, "support-session")
	assert.Equal(t, session.QRCodeBase64, store.connections["support-session"].QRCodeBase64)
}

func TestSetWebhookDefaults(t *testing.T) {
	gw := &fakeGateway{}
	svc, _, _ := newInstanceService(gw)

	result, err := svc.SetWebhook(context.Background(), "suporte", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.test/api/v1/webhook/evolution", gw.webhookURL)
	assert.Equal(t, evolution.DefaultWebhookEvents, gw.webhookEvts)
	assert.Equal(t, map[string]string{evolution.WebhookTokenHeader: "segredo"}, gw.webhookHdrs)
	assert.True(t, result.Enabled)

	_, err = svc.SetWebhook(context.Background(), "suporte", "not a url", nil)
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))
}

func TestListContactsFilters(t *testing.T) {
	gw := &fakeGateway{contacts: []evolution.RawContact{
		{ID: "1", RemoteJID: "5511911112222@s.whatsapp.net", PushName: "Ana"},
		{ID: "2", RemoteJID: "5511933334444@s.whatsapp.net"},
	}}
	svc, _, _ := newInstanceService(gw)

	contacts, err := svc.ListContacts(context.Background(), "suporte")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Ana", contacts[0].Name)
}

func TestActiveInstance(t *testing.T) {
	svc, store, _ := newInstanceService(&fakeGateway{})

	_, err := svc.ActiveInstance(context.Background())
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	store.connections["suporte"] = &models.WhatsAppConnection{InstanceName: "suporte", Status: models.ConnectionConnected}
	name, err := svc.ResolveInstance(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "suporte", name)

	name, err = svc.ResolveInstance(context.Background(), "outra")
	require.NoError(t, err)
	assert.Equal(t, "outra", name)
}

func TestWebhookUpdates(t *testing.T) {
	svc, store, notifier := newInstanceService(&fakeGateway{})
	store.connections["suporte"] = &models.WhatsAppConnection{InstanceName: "suporte", Status: models.ConnectionDisconnected}

	require.NoError(t, svc.HandleConnectionUpdate(context.Background(), "suporte", "connecting"))
	require.NoError(t, svc.HandleQRCodeUpdate(context.Background(), "suporte", "", "2@qr"))
	assert.Contains(t, store.connections["suporte"].QRCodeBase64, "data:image/png;base64,")

	require.NoError(t, svc.HandleConnectionUpdate(context.Background(), "suporte", "open"))
	assert.Equal(t, models.ConnectionConnected, store.connections["suporte"].Status)
	assert.Empty(t, store.connections["suporte"].QRCodeBase64)

	assert.Equal(t, []string{"connection", "qr", "connection"}, notifier.types())
}

func TestWebhookUpdatesIgnoreUnknownInstance(t *testing.T) {
	svc, store, notifier := newInstanceService(&fakeGateway{})

	err := svc.HandleConnectionUpdate(context.Background(), "intruso", "open")
	assert.ErrorIs(t, err, ErrUnknownInstance)
	err = svc.HandleQRCodeUpdate(context.Background(), "intruso", "", "2@qr")
	assert.ErrorIs(t, err, ErrUnknownInstance)

	assert.NotContains(t, store.connections, "intruso")
	assert.Empty(t, notifier.types())
	_, err = svc.ResolveInstance(context.Background(), "")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

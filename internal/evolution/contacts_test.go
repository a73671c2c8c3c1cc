package evolution

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterContactsDropsIncompleteEntries(t *testing.T) {
	raw := []RawContact{
		{ID: "1", RemoteJID: "5511911112222@s.whatsapp.net", PushName: "Ana", ProfilePicURL: "https://pic/1", UpdatedAt: "2024-05-01T10:00:00Z"},
		{ID: "", RemoteJID: "5511933334444@s.whatsapp.net", PushName: "Sem id"},
		{ID: "3", RemoteJID: "5511955556666@s.whatsapp.net", PushName: ""},
		{ID: "4", RemoteJID: "120363000000000000@g.us", PushName: "Grupo Suporte"},
	}

	contacts := FilterContacts(raw)

	assert.Len(t, contacts, 2)
	assert.Equal(t, "Ana", contacts[0].Name)
	assert.Equal(t, "5511911112222", contacts[0].Phone)
	assert.Equal(t, "https://pic/1", contacts[0].ProfilePicURL)
	assert.Equal(t, "2024-05-01T10:00:00Z", contacts[0].LastSeen)
	assert.False(t, contacts[0].IsGroup)
	assert.True(t, contacts[1].IsGroup)
}

func TestFilterContactsCapsAtFifty(t *testing.T) {
	raw := make([]RawContact, 0, 80)
	for i := 0; i < 80; i++ {
		raw = append(raw, RawContact{ID: fmt.Sprint(i), PushName: fmt.Sprintf("Contato %d", i)})
	}

	contacts := FilterContacts(raw)

	assert.Len(t, contacts, MaxContacts)
	assert.Equal(t, "Contato 49", contacts[49].Name)
}

func TestFilterContactsUsesIDAsJIDFallback(t *testing.T) {
	contacts := FilterContacts([]RawContact{{ID: "5511977776666@s.whatsapp.net", PushName: "João"}})

	assert.Len(t, contacts, 1)
	assert.Equal(t, "5511977776666", contacts[0].Phone)
}

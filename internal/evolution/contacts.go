package evolution

import (
	"strings"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"
)

const MaxContacts = 50

// FilterContacts descarta contatos sem id ou pushName e limita a lista a MaxContacts.
func FilterContacts(raw []RawContact) []models.Contact {
	contacts := make([]models.Contact, 0, min(len(raw), MaxContacts))
	for _, c := range raw {
		if len(contacts) == MaxContacts {
			break
		}
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.PushName) == "" {
			continue
		}

		jid := c.RemoteJID
		if jid == "" {
			jid = c.ID
		}

		contacts = append(contacts, models.Contact{
			ID:            c.ID,
			Name:          c.PushName,
			Phone:         utils.PhoneFromJID(jid),
			ProfilePicURL: c.ProfilePicURL,
			IsGroup:       utils.IsGroupJID(jid),
			LastSeen:      c.UpdatedAt,
		})
	}
	return contacts
}

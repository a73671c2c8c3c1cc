package relay

import (
	"sort"
	"sync"
)

// chatIndex guarda as conversas vistas pela sessão desde que o processo subiu.
type chatIndex struct {
	chats map[string]*Chat
	lock  sync.RWMutex
}

func newChatIndex() *chatIndex {
	return &chatIndex{chats: make(map[string]*Chat)}
}

func (c *chatIndex) observe(msg MessagePayload) {
	c.lock.Lock()
	defer c.lock.Unlock()

	chat, ok := c.chats[msg.Chat]
	if !ok {
		chat = &Chat{ID: msg.Chat, IsGroup: msg.IsGroup}
		c.chats[msg.Chat] = chat
	}
	if chat.Name == "" && !msg.FromMe && !msg.IsGroup && msg.PushName != "" {
		chat.Name = msg.PushName
	}
	if msg.Timestamp.Before(chat.LastMessageAt) {
		return
	}
	chat.LastMessage = msg.Body
	chat.LastMessageAt = msg.Timestamp
	if msg.FromMe {
		chat.UnreadCount = 0
	} else {
		chat.UnreadCount++
	}
}

// list devolve cópias ordenadas da conversa mais recente para a mais antiga.
func (c *chatIndex) list() []Chat {
	c.lock.RLock()
	defer c.lock.RUnlock()

	chats := make([]Chat, 0, len(c.chats))
	for _, chat := range c.chats {
		chats = append(chats, *chat)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastMessageAt.After(chats[j].LastMessageAt)
	})
	return chats
}

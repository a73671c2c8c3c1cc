package utils

import (
	"strings"
	"unicode"
)

const (
	UserServer  = "s.whatsapp.net"
	GroupServer = "g.us"
)

// NormalizePhone remove tudo que não for dígito: "+55 11 99999-0000" -> "5511999990000".
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneToJID monta o JID de usuário a partir de um telefone em qualquer formato.
func PhoneToJID(phone string) string {
	digits := NormalizePhone(phone)
	if digits == "" {
		return ""
	}
	return digits + "@" + UserServer
}

// PhoneFromJID devolve a parte do usuário de um JID ("5511...@s.whatsapp.net" -> "5511...").
func PhoneFromJID(jid string) string {
	user := jid
	if i := strings.IndexByte(user, '@'); i >= 0 {
		user = user[:i]
	}
	if i := strings.IndexByte(user, ':'); i >= 0 {
		user = user[:i]
	}
	return user
}

func IsGroupJID(jid string) bool {
	return strings.HasSuffix(jid, "@"+GroupServer)
}

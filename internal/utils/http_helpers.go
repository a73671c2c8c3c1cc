package utils

import (
	"net/url"
	"strings"
)

// IsURL returns true if the given string appears to be an absolute http(s) URL
func IsURL(str string) bool {
	u, err := url.Parse(strings.TrimSpace(str))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// JoinURL junta a base e o caminho sem barras duplicadas.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

package handlers

import (
	"net/http"

	"whatsapp-support/internal/utils"
	"whatsapp-support/internal/wsnotify"
)

// WebSocketHandler registra o console no manager e mantém a conexão até o cliente sair.
func WebSocketHandler(manager *wsnotify.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := manager.Serve(w, r); err != nil {
			utils.LogWarning("Erro ao abrir websocket: %v", err)
		}
	}
}

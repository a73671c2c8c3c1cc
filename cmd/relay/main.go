package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-support/config"
	"whatsapp-support/internal/handlers"
	"whatsapp-support/internal/relay"
	"whatsapp-support/internal/utils"
	"whatsapp-support/internal/wsnotify"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	utils.SetupLogger(cfg.DebugMode)

	notifications := wsnotify.NewManager()
	session := relay.NewSession(cfg.Relay, notifications)

	ctx, cancelSession := context.WithCancel(context.Background())
	defer cancelSession()
	if err := session.Start(ctx); err != nil {
		log.Fatalf("Error starting WhatsApp session: %v", err)
	}

	relayHandler := relay.NewHandler(session)

	router := mux.NewRouter()
	router.HandleFunc("/contacts", relayHandler.Contacts).Methods("GET")
	router.HandleFunc("/chats", relayHandler.Chats).Methods("GET")
	router.HandleFunc("/send", handlers.Preflight(relayHandler.Send)).Methods("POST", "OPTIONS")
	router.HandleFunc("/status", relayHandler.Status).Methods("GET")
	router.HandleFunc("/ws", handlers.WebSocketHandler(notifications))

	c := cors.New(cors.Options{
		AllowedOrigins:       cfg.CORSOrigins,
		AllowedMethods:       []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:       []string{"Accept", "Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	})

	server := &http.Server{
		Addr:    ":" + cfg.RelayPort,
		Handler: c.Handler(router),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		utils.LogInfo("Relay is running on http://localhost:%s", cfg.RelayPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting relay: %v", err)
		}
	}()

	<-stop
	utils.LogInfo("Shutting down relay...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogError("Error shutting down relay: %v", err)
	}
	session.Stop()

	utils.LogInfo("Relay stopped successfully")
}

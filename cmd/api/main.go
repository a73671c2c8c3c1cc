package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-support/config"
	_ "whatsapp-support/docs"
	"whatsapp-support/internal/evolution"
	"whatsapp-support/internal/handlers"
	"whatsapp-support/internal/repositories"
	"whatsapp-support/internal/services"
	"whatsapp-support/internal/utils"
	"whatsapp-support/internal/wsnotify"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title WhatsApp Support API
// @version 1.0
// @description Backend do console de atendimento: instâncias na Evolution API, atendimentos e mensagens
// @host localhost:8081
// @BasePath /api/v1
// @securityDefinitions.apikey ServiceRole
// @in header
// @name apikey
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	utils.SetupLogger(cfg.DebugMode)

	db, err := config.ConnectDatabase(cfg.Store)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	repos := services.Repositories{
		Attendances:  repositories.NewMySQLAttendanceRepository(db),
		Messages:     repositories.NewMySQLMessageRepository(db),
		Rooms:        repositories.NewMySQLRoomRepository(db),
		SupportUsers: repositories.NewMySQLSupportUserRepository(db),
		Admins:       repositories.NewMySQLAdminRepository(db),
		Connections:  repositories.NewMySQLConnectionRepository(db),
	}

	var gateway services.Gateway
	client, err := evolution.NewClient(cfg.Evolution.BaseURL, cfg.Evolution.APIKey)
	switch {
	case errors.Is(err, evolution.ErrMissingConfig):
		utils.LogWarning("EVOLUTION_API_URL/EVOLUTION_API_KEY não configurados, rotas da Evolution vão responder 500")
	case err != nil:
		log.Fatalf("Error creating Evolution client: %v", err)
	default:
		gateway = client
	}

	var uploader services.Uploader
	if storage, err := services.NewS3Service(cfg.S3Config); err != nil {
		utils.LogWarning("Upload de anexos desabilitado: %v", err)
	} else {
		uploader = storage
	}

	notifications := wsnotify.NewManager()
	instances := services.NewInstanceService(cfg, gateway, repos.Connections, notifications)
	support := services.NewSupportService(repos, instances, uploader, notifications)
	admin := services.NewAdminService(repos)

	instanceHandler := handlers.NewInstanceHandler(instances)
	supportHandler := handlers.NewSupportHandler(support)
	adminHandler := handlers.NewAdminHandler(admin)
	webhookHandler := handlers.NewWebhookHandler(instances, support, cfg.Evolution.WebhookSecret)
	serviceRole := handlers.ServiceRoleAuth(cfg.Store.ServiceRoleKey)

	router := mux.NewRouter().PathPrefix("/api/v1").Subrouter()

	// Rotas da Evolution API
	router.HandleFunc("/check-connection", handlers.Preflight(instanceHandler.CheckConnection)).Methods("POST", "OPTIONS")
	router.HandleFunc("/check-is-whatsapp", handlers.Preflight(instanceHandler.CheckIsWhatsApp)).Methods("POST", "OPTIONS")
	router.HandleFunc("/delete-instance", handlers.Preflight(instanceHandler.DeleteInstance)).Methods("POST", "OPTIONS")
	router.HandleFunc("/create-session", handlers.Preflight(instanceHandler.CreateSession)).Methods("POST", "OPTIONS")
	router.HandleFunc("/set-webhook", handlers.Preflight(instanceHandler.SetWebhook)).Methods("POST", "OPTIONS")
	router.HandleFunc("/list-contacts", handlers.Preflight(instanceHandler.ListContacts)).Methods("POST", "OPTIONS")

	// Rotas de atendimento
	router.HandleFunc("/send-message", handlers.Preflight(supportHandler.SendMessage)).Methods("POST", "OPTIONS")
	router.HandleFunc("/upload-attachment", handlers.Preflight(supportHandler.UploadAttachment)).Methods("POST", "OPTIONS")
	router.HandleFunc("/list-attendances", handlers.Preflight(supportHandler.ListAttendances)).Methods("POST", "OPTIONS")
	router.HandleFunc("/list-messages", handlers.Preflight(supportHandler.ListMessages)).Methods("POST", "OPTIONS")
	router.HandleFunc("/start-bot-chat", handlers.Preflight(supportHandler.StartBotChat)).Methods("POST", "OPTIONS")
	router.HandleFunc("/support-login", handlers.Preflight(supportHandler.SupportLogin)).Methods("POST", "OPTIONS")
	router.HandleFunc("/update-attendance", handlers.Preflight(supportHandler.UpdateAttendance)).Methods("POST", "OPTIONS")

	// Rotas administrativas
	router.HandleFunc("/delete-admin", handlers.Preflight(serviceRole(adminHandler.DeleteAdmin))).Methods("POST", "OPTIONS")
	router.HandleFunc("/create-support-room", handlers.Preflight(serviceRole(adminHandler.CreateSupportRoom))).Methods("POST", "OPTIONS")

	router.HandleFunc("/webhook/evolution", handlers.Preflight(webhookHandler.Evolution)).Methods("POST", "OPTIONS")
	router.HandleFunc("/health", handlers.Health).Methods("GET")

	// Rota WebSocket
	router.HandleFunc("/ws", handlers.WebSocketHandler(notifications))

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/api/v1/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
	))

	mainRouter := mux.NewRouter()
	mainRouter.PathPrefix("/api/v1").Handler(router)

	c := cors.New(cors.Options{
		AllowedOrigins:       cfg.CORSOrigins,
		AllowedMethods:       []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:       []string{"Accept", "Authorization", "Content-Type", "apikey", "x-client-info"},
		ExposedHeaders:       []string{"Link"},
		MaxAge:               300,
		OptionsSuccessStatus: http.StatusOK,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(mainRouter),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		utils.LogInfo("Server is running on http://localhost:%s", cfg.Port)
		utils.LogInfo("Swagger UI available at: http://localhost:%s/api/v1/swagger/index.html", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-stop
	utils.LogInfo("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		utils.LogError("Error shutting down server: %v", err)
	}

	utils.LogInfo("Server stopped successfully")
}

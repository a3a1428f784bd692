package bootstrap

import (
	"log"

	"ai-webchat-be/internal/config"
	"ai-webchat-be/internal/controller"
	"ai-webchat-be/internal/events"
	"ai-webchat-be/internal/pkg/logger"
	"ai-webchat-be/internal/pkg/mailer"
	"ai-webchat-be/internal/repository/memory"
	"ai-webchat-be/internal/repository/unitofwork"
	"ai-webchat-be/internal/service"
	"ai-webchat-be/pkg/database/gateway"
	"ai-webchat-be/pkg/llm/factory"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController
	DbController   controller.IDbController

	// Exposed for main.go lifecycle management
	Bus          *events.Bus
	Orchestrator service.IChatOrchestrator
	Logger       logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	bus := events.NewBus()

	// 3. Completion Provider
	llmProvider, err := factory.NewProvider(cfg.Completion)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize completion provider: %v", err)
	}
	log.Printf("[INFO] Using completion provider: %s", cfg.Completion.Provider)

	// In-memory transcript storage for connected sessions
	transcripts := memory.NewTranscriptRepository()

	// 4. Services
	authService := service.NewAuthService(uowFactory, emailService, cfg.Auth, sysLogger)
	sessionService := service.NewChatSessionService(uowFactory, bus, sysLogger)
	messageService := service.NewMessageService(uowFactory, sysLogger)
	orchestrator := service.NewChatOrchestrator(
		transcripts,
		messageService,
		llmProvider,
		bus,
		sysLogger,
		cfg.App.SessionPollInterval,
	)

	gw := gateway.New(db)

	// 5. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(sessionService, messageService, orchestrator, llmProvider),
		DbController:   controller.NewDbController(gw, db),

		Bus:          bus,
		Orchestrator: orchestrator,
		Logger:       sysLogger,
	}
}

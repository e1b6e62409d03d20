package bootstrap

import (
	"context"
	"fmt"

	"notekeeper-be/internal/config"
	"notekeeper-be/internal/controller"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/mailer"
	"notekeeper-be/internal/pkg/metrics"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/pkg/token"
	"notekeeper-be/internal/repository/memory"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/internal/service"

	pktNats "notekeeper-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	UserController controller.IUserController
	NoteController controller.INoteController

	AuthMiddleware fiber.Handler
	Metrics        *metrics.Collector
	Registry       *prometheus.Registry
	Logger         logger.ILogger

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.ILogger) (*Container, error) {
	return Build(ctx, unitofwork.NewRepositoryFactory(db), cfg, log)
}

// Build wires every component on top of uowFactory. Tests pass an in-memory factory.
func Build(ctx context.Context, uowFactory unitofwork.RepositoryFactory, cfg *config.Config, log logger.ILogger) (*Container, error) {
	// 1. Auth
	tokenCache := memory.NewTokenCache(cfg.Auth.TokenCacheTTL)
	tokenManager, err := token.NewManager(cfg.Auth.AccessTokenSecret, cfg.Auth.AccessTokenTTL, tokenCache)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		log,
	)

	// 2. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NopLogger{},
	)

	var natsPub *pktNats.Publisher
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(ctx, cfg.App.NatsURL)
		if err != nil {
			log.Warn("bootstrap", "NATS unavailable, activity stays in-process", map[string]interface{}{"error": err})
		} else {
			forwarder = natsPub
		}
	}

	activity := service.NewActivityPublisher(pubSub, cfg.App.ActivityTopic, log)
	consumerService := service.NewActivityConsumer(pubSub, cfg.App.ActivityTopic, forwarder, log)

	// 4. Services
	authService := service.NewAuthService(uowFactory, tokenManager, emailService, activity, log, cfg.Auth.BcryptCost)
	userService := service.NewUserService(uowFactory, log)
	noteService := service.NewNoteService(uowFactory, activity, log)

	// 5. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		UserController: controller.NewUserController(userService),
		NoteController: controller.NewNoteController(noteService),

		AuthMiddleware: serverutils.JwtMiddleware(tokenManager, log, collector),
		Metrics:        collector,
		Registry:       registry,
		Logger:         log,

		ConsumerService: consumerService,

		pubSub:  pubSub,
		natsPub: natsPub,
	}, nil
}

// Close releases the event bus and the NATS connection.
func (c *Container) Close() error {
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	return c.pubSub.Close()
}

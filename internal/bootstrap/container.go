package bootstrap

import (
	"context"
	"log"
	"time"

	"family-stories-be/internal/config"
	"family-stories-be/internal/controller"
	"family-stories-be/internal/handler"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/pkg/mailer"
	"family-stories-be/internal/repository/implementation"
	"family-stories-be/internal/repository/unitofwork"
	"family-stories-be/internal/service"
	"family-stories-be/internal/websocket"

	pktNats "family-stories-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	ProjectController  controller.IProjectController
	StoryController    controller.IStoryController
	DeliveryController controller.IDeliveryController
	CatalogController  controller.ICatalogController
	AdminController    controller.IAdminController
	PaymentController  controller.IPaymentController

	// Background workers, run by main.go
	ConsumerService service.IConsumerService

	// WebSockets & notifications
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// In-process bus for follow-up conversion
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// NATS event stream
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS subscriber: %v", err)
	}

	// Redis for websocket fan-out across instances
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Services
	publisherService := service.NewPublisherService(cfg.Delivery.FollowUpTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Delivery.FollowUpTopic, uowFactory, natsPub, sysLogger)

	authService := service.NewAuthService(uowFactory, emailService, sysLogger)
	projectService := service.NewProjectService(uowFactory, emailService, natsPub, sysLogger)
	storyService := service.NewStoryService(uowFactory, natsPub, sysLogger)
	interactionService := service.NewInteractionService(uowFactory, publisherService, sysLogger)
	deliveryService := service.NewDeliveryService(uowFactory, sysLogger)
	catalogService := service.NewCatalogService(uowFactory, time.Duration(cfg.Delivery.CatalogCacheTTLSeconds)*time.Second)
	paymentService := service.NewPaymentService(uowFactory, cfg.Payment, natsPub, sysLogger)

	// Notification worker
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	return &Container{
		AuthController:     controller.NewAuthController(authService),
		ProjectController:  controller.NewProjectController(projectService),
		StoryController:    controller.NewStoryController(storyService, interactionService),
		DeliveryController: controller.NewDeliveryController(deliveryService),
		CatalogController:  controller.NewCatalogController(catalogService),
		AdminController:    controller.NewAdminController(catalogService),
		PaymentController:  controller.NewPaymentController(paymentService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}

package bootstrap

import (
	"context"
	"log"
	"time"

	"elasticquest-be/internal/config"
	"elasticquest-be/internal/controller"
	"elasticquest-be/internal/handler"
	"elasticquest-be/internal/pkg/logger"
	"elasticquest-be/internal/repository/contract"
	"elasticquest-be/internal/repository/implementation"
	"elasticquest-be/internal/repository/memory"
	"elasticquest-be/internal/service"
	"elasticquest-be/internal/websocket"
	"elasticquest-be/pkg/highlight"
	"elasticquest-be/pkg/llm/openai"
	"elasticquest-be/pkg/rag"

	pkgNats "elasticquest-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RAGChatController   controller.IRAGChatController
	ExamController      controller.IExamController
	ESClusterController controller.IESClusterController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

// NewContainer wires the whole application. db may be nil, in which case
// progress lives in process memory. NATS and Redis are optional too; a
// failed connection logs a warning and disables the dependent feature.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Storage
	var progressRepo contract.ProgressRepository
	if db != nil {
		progressRepo = implementation.NewProgressRepository(db)
		log.Println("[INFO] Using Postgres progress repository")
	} else {
		progressRepo = memory.NewProgressRepository()
		log.Println("[INFO] Using in-memory progress repository")
	}

	// 4. LLM + Highlighting
	llmProvider := openai.NewOpenAIProvider(
		cfg.LLM.APIURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		time.Duration(cfg.LLM.TimeoutMs)*time.Millisecond,
	)
	highlighter := highlight.NewHighlighter(highlight.UnisegTokenizer{})
	pipeline := rag.NewPipeline(
		llmProvider,
		highlighter,
		cfg.LLM.SystemPrompt,
		time.Duration(cfg.LLM.TimeoutMs)*time.Millisecond,
		sysLogger,
	)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Topics.ChallengeResult)
	examService := service.NewExamService(progressRepo, publisherService, sysLogger)
	leaderboardService := service.NewLeaderboardService(rdb, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Topics.ChallengeResult,
		leaderboardService,
		natsPub,
	)
	esClusterService := service.NewESClusterService(sysLogger)

	// 6. Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		RAGChatController:   controller.NewRAGChatController(pipeline),
		ExamController:      controller.NewExamController(examService, leaderboardService),
		ESClusterController: controller.NewESClusterController(esClusterService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}

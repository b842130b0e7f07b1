package bootstrap

import (
	"context"
	"log"
	"time"

	"tourism-chat-be/internal/config"
	"tourism-chat-be/internal/controller"
	"tourism-chat-be/internal/pkg/logger"
	"tourism-chat-be/internal/repository/unitofwork"
	"tourism-chat-be/internal/service"
	"tourism-chat-be/pkg/cache"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController
	UserController controller.IUserController
	AuthController controller.IAuthController

	// Background services, exposed for main.go to run
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Shared-session cache. Redis is optional; without it reads fall
	// through to the store.
	var redisClient *redis.Client
	if opts, err := redis.ParseURL(cfg.App.RedisURL); err != nil {
		log.Printf("[WARN] Invalid REDIS_URL, shared-session cache disabled: %v", err)
	} else {
		redisClient = redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("[WARN] Redis unreachable, shared-session cache disabled: %v", err)
			redisClient = nil
		}
		cancel()
	}
	shareCache := cache.NewRedisShareCache(redisClient, time.Duration(cfg.App.ShareCacheTTLSecs)*time.Second)

	// In-process cache for user-existence checks on the AI create path.
	userCache := gocache.New(5*time.Minute, 10*time.Minute)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Events.ActivityTopic)
	consumerService := service.NewConsumerService(pubSub, cfg.Events.ActivityTopic, uowFactory, sysLogger)

	sessionService := service.NewChatSessionService(uowFactory, publisherService, shareCache, userCache, sysLogger)
	messageService := service.NewChatMessageService(uowFactory, publisherService, shareCache, sysLogger)
	shareService := service.NewChatShareService(uowFactory, publisherService, shareCache, cfg.App.ClientURL, sysLogger)
	userService := service.NewUserService(uowFactory)
	authService := service.NewAuthService(uowFactory, cfg.Auth.JwtSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// 5. Controllers
	chatController := controller.NewChatController(sessionService, messageService, shareService)
	userController := controller.NewUserController(userService)
	authController := controller.NewAuthController(authService)

	return &Container{
		ChatController:  chatController,
		UserController:  userController,
		AuthController:  authController,
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}

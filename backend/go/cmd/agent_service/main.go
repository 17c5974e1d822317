package main

import (
	"context"
	"log"

	"github.com/sirupsen/logrus"

	"Aivatar/backend/go/internal/agent_service/api"
	"Aivatar/backend/go/internal/agent_service/service"
	"Aivatar/backend/go/internal/agent_service/store"
	"Aivatar/backend/go/internal/apitools"
	"Aivatar/backend/go/internal/calendar"
	"Aivatar/backend/go/internal/config"
	"Aivatar/backend/go/internal/database/kafka"
	"Aivatar/backend/go/internal/database/milvus"
	"Aivatar/backend/go/internal/database/mongo"
	"Aivatar/backend/go/internal/database/mysql"
	"Aivatar/backend/go/internal/database/redis"
	"Aivatar/backend/go/internal/embedding"
	"Aivatar/backend/go/internal/llm"
	"Aivatar/backend/go/internal/mcpclient"
	"Aivatar/backend/go/internal/toolcache"
	"Aivatar/backend/go/internal/toolselect"
	"Aivatar/backend/go/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("agent_service", "", "")

	ctx := context.Background()

	// Required backends. The service cannot run without its relational
	// store, its history store and a language model.
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		appLogger.Fatal("mysql: " + err.Error())
	}
	if err := store.AutoMigrate(db); err != nil {
		appLogger.Fatal("migration: " + err.Error())
	}

	mongoClient, err := mongo.GetClient(&cfg.Databases.MongoDB)
	if err != nil {
		appLogger.Fatal("mongo: " + err.Error())
	}

	model, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		appLogger.Fatal("llm: " + err.Error())
	}

	// Optional backends. Each missing one degrades the matching pipeline
	// stage instead of blocking startup.
	var vectors service.VectorSearcher
	embedder, err := embedding.NewModel(cfg.Embedding)
	if err != nil {
		appLogger.WithError(err).Warn("embedding model unavailable, retrieval disabled")
		embedder = nil
	}
	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		appLogger.WithError(err).Warn("milvus unavailable, retrieval disabled")
	} else {
		if err := milvusClient.EnsureCollection(ctx); err != nil {
			appLogger.WithError(err).Warn("milvus collection setup failed")
		}
		vectors = milvusClient
	}

	var cache toolcache.Cache
	redisClient, err := redis.GetClient(&cfg.Databases.Redis)
	if err != nil {
		appLogger.WithError(err).Warn("redis unavailable, using in-memory tool cache")
		cache = toolcache.NewMemoryCache(toolcache.DefaultTTL)
	} else {
		cache = toolcache.NewRedisCache(redisClient, toolcache.DefaultTTL)
	}

	var events service.EventPublisher
	if len(cfg.Databases.Kafka.Brokers) > 0 {
		publisher, err := kafka.NewChatEventPublisher(&cfg.Databases.Kafka)
		if err != nil {
			appLogger.WithError(err).Warn("kafka unavailable, chat events disabled")
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	agentStore := store.NewAgentStore(db)
	conversations := store.NewConversationStore(mongoClient, cfg.Databases.MongoDB.Database)

	mcp := mcpclient.New()
	discovery := toolcache.NewDiscovery(cache, mcp.Discover, appLogger)

	chatService := service.NewService(service.Deps{
		Agents:        agentStore,
		Conversations: conversations,
		Embedder:      embedder,
		Vectors:       vectors,
		Model:         model,
		Discovery:     discovery,
		Selector:      toolselect.NewRunner(model, mcp, appLogger),
		Invoker:       apitools.NewInvoker(model, appLogger),
		Calendar:      calendar.NewService(cfg.Calendar, agentStore, appLogger),
		Events:        events,
		Logger:        appLogger,
	})
	manageService := service.NewManageService(agentStore, conversations, appLogger)

	handler := api.NewHandler(chatService, manageService)
	router := api.NewRouter(handler, cfg.Auth, cfg.RateLimiter)

	listen := cfg.App.Listen
	if listen == "" {
		listen = ":8080"
	}
	appLogger.Info("starting agent service on " + listen)
	if err := router.Run(listen); err != nil {
		appLogger.Fatal("server exited: " + err.Error())
	}
}

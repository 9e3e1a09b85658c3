package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"greatlibrary/internal/cache"
	"greatlibrary/internal/config"
	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
	"greatlibrary/internal/pkg/logger"
	mysqlClient "greatlibrary/internal/platform/mysql"
	rabbitmqClient "greatlibrary/internal/platform/rabbitmq"
	redisClient "greatlibrary/internal/platform/redis"
	"greatlibrary/internal/repository"
	"greatlibrary/internal/worker"
)

// App holds every long-lived dependency of the server process.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Search            *filesearch.Client
	DocumentCache     *cache.DocumentCache
	ConversationCache *cache.ConversationCache

	QAWorker *worker.QAPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(cfg.App.LogFile, cfg.App.Env == "prod")

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), cfg.App.Env != "prod")
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.QARecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.QAPersistQueue)
	if err != nil {
		return nil, err
	}

	searchClient := filesearch.NewClient(filesearch.Config{
		BaseURL:      cfg.FileSearch.BaseURL,
		APIKey:       cfg.FileSearch.APIKey,
		Model:        cfg.FileSearch.Model,
		PollInterval: time.Duration(cfg.FileSearch.PollIntervalSeconds) * time.Second,
		PollTimeout:  time.Duration(cfg.FileSearch.PollTimeoutSeconds) * time.Second,
	})

	qaRepo := repository.NewQARecordRepository(mysqlDB)
	qaWorker := worker.NewQAPersistWorker(mqConn, qaRepo, cfg.RabbitMQ.QAPersistQueue, log)
	if err := qaWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start qa persist worker failed: %w", err)
	}

	return &App{
		Config:            cfg,
		Logger:            log,
		MySQL:             mysqlDB,
		Redis:             redisCli,
		MQConn:            mqConn,
		Search:            searchClient,
		DocumentCache:     cache.NewDocumentCache(redisCli, cfg.Redis.DocumentCacheKey),
		ConversationCache: cache.NewConversationCache(redisCli, time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second),
		QAWorker:          qaWorker,
		StartedAt:         time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.QAWorker != nil {
		a.QAWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}

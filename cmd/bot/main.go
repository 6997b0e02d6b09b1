package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/strazhbot/strazh/internal/ai"
	"github.com/strazhbot/strazh/internal/audit"
	"github.com/strazhbot/strazh/internal/caslist"
	"github.com/strazhbot/strazh/internal/config"
	"github.com/strazhbot/strazh/internal/logx"
	"github.com/strazhbot/strazh/internal/service"
	"github.com/strazhbot/strazh/internal/storage"
	"github.com/strazhbot/strazh/internal/telegram"
)

func main() {
	// Русский комментарий: Главная точка входа бота.
	// 1. Загружаем конфиг
	// 2. Инициализируем логгер
	// 3. Открываем durable-хранилище (sqlite или PostgreSQL)
	// 4. Создаём Telegram-клиента
	// 5. Создаём AI-провайдера (OpenRouter)
	// 6. Создаём audit-паблишер (Kafka, если настроена)
	// 7. Собираем сервис (восстановление снапшота внутри)
	// 8. Запускаем таймеры и polling либо webhook
	// 9. Ждём SIGINT/SIGTERM для graceful shutdown

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Загружаем конфигурацию из окружения
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализируем structured logger (zap)
	logger, err := logx.New(cfg.LogLevel, cfg.LogPretty, logx.DefaultRotation())
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting strazh bot",
		zap.String("version", service.Version),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("webhook_mode", cfg.WebhookActive()),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
	)

	// Открываем durable-хранилище снапшотов
	var store storage.Store
	if cfg.PostgresDSN != "" {
		store, err = storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to open postgres store: %w", err)
		}
		logger.Info("durable store ready", zap.String("backend", "postgres"))
	} else {
		store, err = storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("durable store ready",
			zap.String("backend", "sqlite"),
			zap.String("path", cfg.DBPath),
		)
	}
	defer store.Close()

	// Создаём Telegram-клиента (валидация токена внутри)
	bot, err := telegram.New(cfg.TelegramBotToken, logger)
	if err != nil {
		return err
	}

	// Создаём AI-провайдера
	provider := ai.NewOpenRouter(ai.OpenRouterOptions{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	})
	logger.Info("classifier ready", zap.String("model", provider.Model()))

	// Создаём audit-паблишер
	var publisher audit.Publisher = audit.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := audit.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kafka.Close()
		publisher = kafka
		logger.Info("audit publisher ready",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	// Собираем сервис
	svc, err := service.New(service.Options{
		Config:   cfg,
		Bot:      bot,
		Provider: provider,
		Fetcher:  caslist.NewClient(cfg.CASBaseURL, logger),
		Store:    store,
		Audit:    publisher,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	// Слушаем сигналы для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil {
		return err
	}

	logger.Info("bot shutdown complete")
	return nil
}

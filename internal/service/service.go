package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/strazhbot/strazh/internal/ai"
	"github.com/strazhbot/strazh/internal/audit"
	"github.com/strazhbot/strazh/internal/caslist"
	"github.com/strazhbot/strazh/internal/config"
	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/service/commands"
	"github.com/strazhbot/strazh/internal/service/updates"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/storage"
	"github.com/strazhbot/strazh/internal/telegram"
)

// Version — версия бота, показывается в /help.
const Version = "0.4.0"

// Ключ снапшота в durable-хранилище. Всё состояние сервиса лежит одним
// JSON-значением: объём маленький, а атомарность записи получается даром.
const stateKey = "service_state"

// Bot — операции Telegram, которые нужны ядру сервиса поверх хендлерных.
type Bot interface {
	telegram.API
	Updates(offset int, timeout int) ([]tgbotapi.Update, error)
	SetWebhook(url string, allowedUpdates []string, secret string) error
	DeleteWebhook() error
}

// CASFetcher загружает полный CAS-список.
type CASFetcher interface {
	FetchFullList(ctx context.Context) (caslist.Set, error)
}

// Options — зависимости сервиса.
type Options struct {
	Config   *config.Config
	Bot      Bot
	Provider ai.Provider
	Fetcher  CASFetcher
	Store    storage.Store
	Audit    audit.Publisher
	Logger   *zap.Logger
}

// Service связывает всё вместе: приём обновлений, цепочку хендлеров,
// реестр команд, таймеры и персистентность.
type Service struct {
	cfg      *config.Config
	bot      Bot
	fetcher  CASFetcher
	store    storage.Store
	aud      audit.Publisher
	logger   *zap.Logger
	chats    *state.Store
	cache    *caslist.Cache
	chain    []updates.Handler
	registry *commands.Registry
}

// New собирает сервис: восстанавливает состояние из durable-хранилища и
// строит цепочку хендлеров и реестр команд поверх него.
func New(opts Options) (*Service, error) {
	msgs, err := moderation.NewMessages()
	if err != nil {
		return nil, err
	}
	prompts, err := moderation.NewPrompts()
	if err != nil {
		return nil, err
	}

	chats, banned := loadSnapshot(opts.Store, opts.Logger)
	cache := caslist.NewCache()
	if len(banned) > 0 {
		cache.Replace(banned)
	}

	s := &Service{
		cfg:     opts.Config,
		bot:     opts.Bot,
		fetcher: opts.Fetcher,
		store:   opts.Store,
		aud:     opts.Audit,
		logger:  opts.Logger,
		chats:   chats,
		cache:   cache,
	}

	// Порядок цепочки значим: дешёвая проверка по CAS-списку идёт раньше
	// дорогого карантинного классификатора.
	s.chain = []updates.Handler{
		updates.NewCASBan(opts.Bot, cache, chats, msgs, opts.Audit, opts.Logger),
		updates.NewQuarantine(opts.Bot, opts.Provider, chats, prompts, msgs, opts.Audit, opts.Logger, updates.DefaultThreshold),
	}

	s.registry = commands.NewRegistry(
		commands.NewHelp(opts.Bot, chats, msgs, Version),
		commands.NewSetMode(opts.Bot, chats, msgs),
		commands.NewSetLang(opts.Bot, chats, msgs),
		commands.NewInject(opts.Bot, chats, msgs),
		commands.NewToggleInject(opts.Bot, chats, msgs),
		commands.NewClearInjects(opts.Bot, chats, msgs),
		commands.NewStatus(opts.Bot, chats, cache, msgs),
	)

	return s, nil
}

// Run запускает таймеры и выбранный режим доставки обновлений и блокируется
// до отмены ctx. На выходе пишет финальный снапшот.
func (s *Service) Run(ctx context.Context) error {
	s.refreshCAS(ctx)

	timers := cron.New()
	if _, err := timers.AddFunc(every(s.cfg.CASRefreshInterval), func() { s.refreshCAS(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule CAS refresh: %w", err)
	}
	if _, err := timers.AddFunc(every(s.cfg.SnapshotInterval), s.saveSnapshot); err != nil {
		return fmt.Errorf("failed to schedule snapshots: %w", err)
	}
	timers.Start()
	defer func() {
		<-timers.Stop().Done()
		s.saveSnapshot()
	}()

	if s.cfg.WebhookActive() {
		return s.runWebhook(ctx)
	}
	return s.runPolling(ctx)
}

// runPolling крутит getUpdates с возрастающим offset-курсором.
func (s *Service) runPolling(ctx context.Context) error {
	if err := s.bot.DeleteWebhook(); err != nil {
		s.logger.Warn("failed to delete webhook before polling", zap.Error(err))
	}
	s.logger.Info("polling started", zap.Duration("interval", s.cfg.PollInterval))

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	offset := 0
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("polling stopped")
			return nil
		case <-ticker.C:
		}

		batch, err := s.bot.Updates(offset, s.cfg.PollTimeout)
		if err != nil {
			s.logger.Warn("getUpdates failed", zap.Error(err))
			continue
		}
		for _, u := range batch {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			go s.Dispatch(ctx, u)
		}
	}
}

// runWebhook регистрирует webhook у Telegram и поднимает HTTP-сервер.
func (s *Service) runWebhook(ctx context.Context) error {
	if err := s.bot.SetWebhook(s.cfg.WebhookURL, []string{"message"}, s.cfg.WebhookSecret); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.WebhookPath, s.webhookHandler(ctx))
	srv := &http.Server{Addr: s.cfg.WebhookListenAddr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("webhook server started",
			zap.String("addr", s.cfg.WebhookListenAddr),
			zap.String("path", s.cfg.WebhookPath),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("webhook server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("webhook server shutdown failed", zap.Error(err))
	}
	if err := s.bot.DeleteWebhook(); err != nil {
		s.logger.Warn("failed to delete webhook", zap.Error(err))
	}
	return nil
}

// refreshCAS атомарно заменяет CAS-кэш свежим полным списком.
// Любая ошибка логируется и не мешает работе: старый список остаётся в силе.
func (s *Service) refreshCAS(ctx context.Context) {
	set, err := s.fetcher.FetchFullList(ctx)
	if err != nil {
		s.logger.Warn("CAS list refresh failed", zap.Error(err))
		return
	}
	s.cache.Replace(set)
	s.logger.Info("CAS list refreshed", zap.Int("size", len(set)))
}

// saveSnapshot пишет текущее состояние сервиса в durable-хранилище.
func (s *Service) saveSnapshot() {
	snap := state.Snapshot{Chats: s.chats.Export()}
	for id := range s.cache.Current() {
		snap.BannedIDs = append(snap.BannedIDs, id)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("failed to encode snapshot", zap.Error(err))
		return
	}
	if err := s.store.Put(stateKey, raw); err != nil {
		s.logger.Error("failed to persist snapshot", zap.Error(err))
		return
	}
	if err := s.store.Flush(); err != nil {
		s.logger.Warn("failed to flush snapshot", zap.Error(err))
		return
	}
	s.logger.Debug("snapshot persisted",
		zap.Int("chats", s.chats.Len()),
		zap.Int("banned_ids", len(snap.BannedIDs)),
	)
}

// loadSnapshot читает снапшот из durable-хранилища. Отсутствие или
// повреждение снапшота никогда не фатально: сервис стартует с пустым
// состоянием.
func loadSnapshot(store storage.Store, logger *zap.Logger) (*state.Store, caslist.Set) {
	raw, err := store.Get(stateKey)
	if err != nil {
		logger.Warn("failed to read snapshot, starting fresh", zap.Error(err))
		return state.NewStore(), nil
	}
	if raw == nil {
		logger.Info("no snapshot found, starting fresh")
		return state.NewStore(), nil
	}

	var snap state.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.Warn("snapshot corrupted, starting fresh", zap.Error(err))
		return state.NewStore(), nil
	}

	banned := make(caslist.Set, len(snap.BannedIDs))
	for _, id := range snap.BannedIDs {
		banned[id] = struct{}{}
	}
	chats := state.RestoreStore(snap.Chats)
	logger.Info("state restored from snapshot",
		zap.Int("chats", chats.Len()),
		zap.Int("banned_ids", len(banned)),
	)
	return chats, banned
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}

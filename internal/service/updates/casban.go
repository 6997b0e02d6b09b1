package updates

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/strazhbot/strazh/internal/audit"
	"github.com/strazhbot/strazh/internal/caslist"
	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// CASBan банит отправителей из CAS-списка известных спамеров.
// Русский комментарий: Одна атомарная загрузка снапшота списка на сообщение,
// никакой конкуренции с фоновым обновлением.
type CASBan struct {
	bot    telegram.API
	cache  *caslist.Cache
	chats  *state.Store
	msgs   *moderation.Messages
	aud    audit.Publisher
	logger *zap.Logger
}

// NewCASBan создаёт проверку по CAS-списку.
func NewCASBan(
	bot telegram.API,
	cache *caslist.Cache,
	chats *state.Store,
	msgs *moderation.Messages,
	aud audit.Publisher,
	logger *zap.Logger,
) *CASBan {
	return &CASBan{bot: bot, cache: cache, chats: chats, msgs: msgs, aud: aud, logger: logger}
}

func (h *CASBan) Name() string { return "casban" }

func (h *CASBan) Handle(_ context.Context, msg *tgbotapi.Message) (Flow, error) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !h.cache.Current().Contains(userID) {
		return FlowContinue, nil
	}

	h.logger.Info("banning CAS-listed user",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
	)

	// Пользователь мог уже покинуть чат — бан тогда падает с ошибкой API.
	// Это не повод прерывать обработку: сообщение всё равно убираем.
	if err := h.bot.BanUser(chatID, userID); err != nil {
		h.logger.Warn("failed to ban CAS-listed user",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	} else {
		h.aud.Publish(audit.Event{ChatID: chatID, UserID: userID, Source: "cas", Event: "ban"})
	}

	// Удаление best-effort: сообщение могло быть уже удалено.
	if err := h.bot.DeleteMessage(chatID, msg.MessageID); err != nil {
		h.logger.Debug("failed to delete message of CAS-listed user", zap.Error(err))
	} else {
		h.aud.Publish(audit.Event{ChatID: chatID, UserID: userID, Source: "cas", Event: "delete"})
	}

	cs := h.chats.Get(chatID)
	cs.DropUser(userID)

	lang := cs.Language()
	casText, err := h.msgs.CAS(lang)
	if err != nil {
		return FlowBreak, err
	}
	notification, err := h.msgs.Antispam(lang, userID, "CAS Ban", casText)
	if err != nil {
		return FlowBreak, err
	}
	if err := h.bot.SendMessage(chatID, notification); err != nil {
		h.logger.Warn("failed to send CAS notification", zap.Error(err))
	} else {
		h.aud.Publish(audit.Event{ChatID: chatID, UserID: userID, Source: "cas", Event: "notify"})
	}

	return FlowBreak, nil
}

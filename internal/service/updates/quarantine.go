package updates

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/strazhbot/strazh/internal/ai"
	"github.com/strazhbot/strazh/internal/audit"
	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// DefaultThreshold — сколько первых сообщений пользователя проверяется.
const DefaultThreshold = 3

// Quarantine прогоняет первые сообщения новичков через AI-классификатор.
//
// Русский комментарий: Карантинный переход (read-increment-compare-delete)
// атомарен под счётчиковой блокировкой чата, но сам вызов классификатора
// выполняется уже после её отпускания: медленная модель не должна блокировать
// подсчёт сообщений других пользователей этого чата.
//
// Политика fail-open: флагуем только по явному разобранному вердикту FLAG.
// Ошибка транспорта, кривой JSON, явный PASS — всё это "пропустить дальше".
type Quarantine struct {
	bot       telegram.API
	provider  ai.Provider
	chats     *state.Store
	prompts   *moderation.Prompts
	msgs      *moderation.Messages
	aud       audit.Publisher
	logger    *zap.Logger
	threshold int
}

// NewQuarantine создаёт карантинную проверку. threshold <= 0 означает
// DefaultThreshold.
func NewQuarantine(
	bot telegram.API,
	provider ai.Provider,
	chats *state.Store,
	prompts *moderation.Prompts,
	msgs *moderation.Messages,
	aud audit.Publisher,
	logger *zap.Logger,
	threshold int,
) *Quarantine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Quarantine{
		bot:       bot,
		provider:  provider,
		chats:     chats,
		prompts:   prompts,
		msgs:      msgs,
		aud:       aud,
		logger:    logger,
		threshold: threshold,
	}
}

func (h *Quarantine) Name() string { return "quarantine" }

func (h *Quarantine) Handle(ctx context.Context, msg *tgbotapi.Message) (Flow, error) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	cs := h.chats.Get(chatID)

	count, classify := cs.Admit(userID, h.threshold)
	if !classify {
		return FlowContinue, nil
	}

	h.logger.Debug("user in quarantine",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
		zap.Int("message", count),
		zap.Int("threshold", h.threshold),
	)

	report, err := h.analyze(ctx, msg, cs)
	if err != nil {
		// Fail-open: ошибка классификатора сама по себе никогда не
		// приводит к модерационному действию.
		if moderation.IsMalformedVerdict(err) {
			h.logger.Warn("malformed classifier verdict", zap.Error(err))
		} else {
			h.logger.Warn("classifier call failed", zap.Error(err))
		}
		return FlowContinue, nil
	}
	if !report.Flagged() {
		return FlowContinue, nil
	}

	h.logger.Info("classifier flagged message",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
		zap.String("reason", report.PrimaryReason),
		zap.Int("confidence", report.ConfidenceScore),
		zap.String("suggested_action", string(report.SuggestedAction)),
	)
	h.aud.Publish(audit.Event{
		ChatID: chatID, UserID: userID,
		Source: "quarantine", Event: "flag", Details: report.PrimaryReason,
	})

	cs.DropUser(userID)

	// Бан строго по режиму чата: notify-режим никогда не банит.
	if cs.Mode() == state.ModeBan {
		if err := h.bot.BanUser(chatID, userID); err != nil {
			h.logger.Warn("failed to ban flagged user",
				zap.Int64("user_id", userID),
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		} else {
			h.aud.Publish(audit.Event{ChatID: chatID, UserID: userID, Source: "quarantine", Event: "ban"})
		}
	}

	if err := h.bot.DeleteMessage(chatID, msg.MessageID); err != nil {
		h.logger.Debug("failed to delete flagged message", zap.Error(err))
	} else {
		h.aud.Publish(audit.Event{ChatID: chatID, UserID: userID, Source: "quarantine", Event: "delete"})
	}

	reason := report.PrimaryReason
	if reason == "" {
		reason = "AI Spam Filter"
	}
	details := report.DetailedReasoning
	if details == "" {
		details = "No details provided."
	}
	notification, err := h.msgs.Antispam(cs.Language(), userID, reason, details)
	if err != nil {
		return FlowBreak, err
	}
	if err := h.bot.SendMessage(chatID, notification); err != nil {
		h.logger.Warn("failed to send antispam notification", zap.Error(err))
	} else {
		h.aud.Publish(audit.Event{ChatID: chatID, UserID: userID, Source: "quarantine", Event: "notify"})
	}

	return FlowBreak, nil
}

// analyze собирает промпт и спрашивает классификатор.
func (h *Quarantine) analyze(ctx context.Context, msg *tgbotapi.Message, cs *state.ChatState) (*moderation.AnalysisReport, error) {
	system, err := h.prompts.ModeratorSystem()
	if err != nil {
		return nil, err
	}
	turns := []ai.ChatMessage{{Role: ai.RoleSystem, Content: system}}

	if cs.InjectionsActive() {
		if directives := cs.Directives(); len(directives) > 0 {
			injection, err := h.prompts.AdminInjection(directives)
			if err != nil {
				return nil, err
			}
			turns = append(turns, ai.ChatMessage{Role: ai.RoleUser, Content: injection})
		}
	}

	check, err := h.prompts.CheckMessage(moderation.AnalysisContext{
		MessageText:     msg.Text,
		AccountName:     telegram.DisplayName(msg.From),
		AccountUsername: msg.From.UserName,
		OutputLanguage:  string(cs.Language()),
	})
	if err != nil {
		return nil, err
	}
	turns = append(turns, ai.ChatMessage{Role: ai.RoleUser, Content: check})

	raw, err := h.provider.Chat(ctx, turns)
	if err != nil {
		return nil, err
	}
	return moderation.ParseReport(raw)
}

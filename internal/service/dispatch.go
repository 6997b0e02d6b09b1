package service

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/strazhbot/strazh/internal/audit"
	"github.com/strazhbot/strazh/internal/service/commands"
	"github.com/strazhbot/strazh/internal/service/updates"
	"github.com/strazhbot/strazh/internal/telegram"
)

// Dispatch разбирает одно обновление Telegram: сначала цепочка модерационных
// проверок, затем, если цепочка не прервала обработку, разбор команды.
//
// Русский комментарий: Диспетчеризация идёт в отдельной горутине на каждое
// обновление, поэтому паника одного сообщения не должна ронять сервис.
func (s *Service) Dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while dispatching update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r),
			)
		}
	}()

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	// Цепочка проверок идёт раньше разбора команд: слэш в начале текста не
	// освобождает отправителя от модерации.
	for _, h := range s.chain {
		flow, err := h.Handle(ctx, msg)
		if err != nil {
			s.logger.Error("handler failed",
				zap.String("handler", h.Name()),
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Error(err),
			)
			return
		}
		if flow == updates.FlowBreak {
			return
		}
	}

	if name, args, ok := parseCommand(msg.Text); ok {
		if cmd, found := s.registry.Lookup(name); found {
			s.runCommand(ctx, cmd, commands.Invocation{Message: msg, Args: args})
		}
		// Незнакомые команды молча игнорируются: в группе может жить
		// несколько ботов.
	}
}

// runCommand применяет пермишен-гейт и выполняет команду.
// Команды без прав молча игнорируются, как и ошибки самого гейта.
func (s *Service) runCommand(ctx context.Context, cmd commands.Command, inv commands.Invocation) {
	if cmd.Permission() == commands.PermissionAdmin {
		admins, err := s.bot.GetChatAdmins(inv.Message.Chat.ID)
		if err != nil {
			s.logger.Warn("failed to fetch chat admins",
				zap.Int64("chat_id", inv.Message.Chat.ID),
				zap.String("command", cmd.Name()),
				zap.Error(err),
			)
			return
		}
		if !telegram.IsAdmin(admins, inv.Message.From.ID) {
			s.logger.Debug("command denied",
				zap.Int64("chat_id", inv.Message.Chat.ID),
				zap.Int64("user_id", inv.Message.From.ID),
				zap.String("command", cmd.Name()),
			)
			return
		}
	}

	if err := cmd.Execute(ctx, inv); err != nil {
		s.logger.Error("command failed",
			zap.String("command", cmd.Name()),
			zap.Int64("chat_id", inv.Message.Chat.ID),
			zap.Error(err),
		)
		return
	}
	s.aud.Publish(audit.Event{
		ChatID:  inv.Message.Chat.ID,
		UserID:  inv.Message.From.ID,
		Source:  "command",
		Event:   cmd.Name(),
		Details: inv.Args,
	})
}

// parseCommand выделяет имя команды и хвост аргументов.
// Суффикс @botname после имени отбрасывается: в группах Telegram подставляет
// его при выборе команды из меню.
func parseCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, tail, _ := strings.Cut(text[1:], " ")
	if head == "" {
		return "", "", false
	}
	head, _, _ = strings.Cut(head, "@")
	return head, strings.TrimSpace(tail), head != ""
}

package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Русский комментарий: Тонкая обёртка над Telegram Bot API.
// Абстракций по минимуму — пакет только упрощает API библиотеки до тех
// операций, которые нужны модерации. Хендлеры зависят от интерфейса API,
// чтобы в тестах можно было подставить фейк.

// API — операции Telegram, которые используют хендлеры и команды.
type API interface {
	SendMessage(chatID int64, text string) error
	Reply(chatID int64, messageID int, text string) error
	// DeleteMessage — best-effort: сообщение могло быть уже удалено.
	DeleteMessage(chatID int64, messageID int) error
	BanUser(chatID int64, userID int64) error
	GetChatAdmins(chatID int64) ([]tgbotapi.ChatMember, error)
}

// Client реализует API поверх go-telegram-bot-api.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// New создаёт клиента и проверяет токен запросом getMe.
func New(token string, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	logger.Info("telegram client ready",
		zap.String("bot_username", api.Self.UserName),
		zap.Int64("bot_id", api.Self.ID),
	)

	return &Client{api: api, logger: logger}, nil
}

// Updates запрашивает порцию обновлений начиная с offset.
// timeout — long-poll таймаут в секундах (0 = короткий опрос).
func (c *Client) Updates(offset int, timeout int) ([]tgbotapi.Update, error) {
	updates, err := c.api.GetUpdates(tgbotapi.UpdateConfig{
		Offset:  offset,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("getUpdates failed: %w", err)
	}
	return updates, nil
}

// SendMessage отправляет сообщение в чат. Parse mode — HTML, как и во всех
// пользовательских текстах бота.
func (c *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("sendMessage failed: %w", err)
	}
	return nil
}

// Reply отправляет ответ на конкретное сообщение.
func (c *Client) Reply(chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = messageID
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("reply failed: %w", err)
	}
	return nil
}

// DeleteMessage удаляет сообщение из чата.
func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("deleteMessage failed: %w", err)
	}
	return nil
}

// BanUser банит пользователя в чате.
func (c *Client) BanUser(chatID int64, userID int64) error {
	ban := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
	}
	if _, err := c.api.Request(ban); err != nil {
		return fmt.Errorf("banChatMember failed: %w", err)
	}
	return nil
}

// GetChatAdmins возвращает актуальный список администраторов чата.
// Русский комментарий: Без локального кэша — устаревший список админов
// это дыра в безопасности, поэтому каждый вызов идёт в Telegram.
func (c *Client) GetChatAdmins(chatID int64) ([]tgbotapi.ChatMember, error) {
	admins, err := c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, fmt.Errorf("getChatAdministrators failed: %w", err)
	}
	return admins, nil
}

// SetWebhook регистрирует webhook-эндпоинт у Telegram.
// secret передаётся Telegram'ом обратно в заголовке
// X-Telegram-Bot-Api-Secret-Token каждого webhook-запроса.
func (c *Client) SetWebhook(url string, allowedUpdates []string, secret string) error {
	params := tgbotapi.Params{}
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)
	if len(allowedUpdates) > 0 {
		allowed, err := json.Marshal(allowedUpdates)
		if err != nil {
			return fmt.Errorf("failed to encode allowed_updates: %w", err)
		}
		params["allowed_updates"] = string(allowed)
	}

	if _, err := c.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("setWebhook failed: %w", err)
	}
	return nil
}

// DeleteWebhook снимает webhook (нужно перед переходом в polling-режим).
func (c *Client) DeleteWebhook() error {
	if _, err := c.api.MakeRequest("deleteWebhook", tgbotapi.Params{}); err != nil {
		return fmt.Errorf("deleteWebhook failed: %w", err)
	}
	return nil
}

// IsAdmin проверяет по свежему списку админов, является ли пользователь
// администратором или создателем чата.
func IsAdmin(admins []tgbotapi.ChatMember, userID int64) bool {
	for _, m := range admins {
		if m.User == nil || m.User.ID != userID {
			continue
		}
		if m.Status == "creator" || m.Status == "administrator" {
			return true
		}
	}
	return false
}

// DisplayName собирает отображаемое имя пользователя (имя + фамилия).
func DisplayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

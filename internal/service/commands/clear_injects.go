package commands

import (
	"context"

	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// ClearInjects удаляет все директивы чата. Флаг активности не меняется.
type ClearInjects struct {
	bot   telegram.API
	chats *state.Store
	msgs  *moderation.Messages
}

func NewClearInjects(bot telegram.API, chats *state.Store, msgs *moderation.Messages) *ClearInjects {
	return &ClearInjects{bot: bot, chats: chats, msgs: msgs}
}

func (c *ClearInjects) Name() string           { return "clear_injects" }
func (c *ClearInjects) Permission() Permission { return PermissionAdmin }

func (c *ClearInjects) Execute(_ context.Context, inv Invocation) error {
	cs := c.chats.Get(inv.Message.Chat.ID)
	cs.ClearDirectives()

	text, err := c.msgs.ClearInjects(cs.Language())
	if err != nil {
		return err
	}
	return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
}

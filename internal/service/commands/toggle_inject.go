package commands

import (
	"context"

	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// ToggleInject включает или выключает применение директив, не трогая их
// содержимое.
type ToggleInject struct {
	bot   telegram.API
	chats *state.Store
	msgs  *moderation.Messages
}

func NewToggleInject(bot telegram.API, chats *state.Store, msgs *moderation.Messages) *ToggleInject {
	return &ToggleInject{bot: bot, chats: chats, msgs: msgs}
}

func (c *ToggleInject) Name() string           { return "toggle_inject" }
func (c *ToggleInject) Permission() Permission { return PermissionAdmin }

func (c *ToggleInject) Execute(_ context.Context, inv Invocation) error {
	cs := c.chats.Get(inv.Message.Chat.ID)
	active := cs.ToggleInjections()

	text, err := c.msgs.ToggleInject(cs.Language(), active)
	if err != nil {
		return err
	}
	return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
}

package commands

import (
	"context"
	"strings"

	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// SetMode переключает режим модерации чата: ban или notify.
type SetMode struct {
	bot   telegram.API
	chats *state.Store
	msgs  *moderation.Messages
}

func NewSetMode(bot telegram.API, chats *state.Store, msgs *moderation.Messages) *SetMode {
	return &SetMode{bot: bot, chats: chats, msgs: msgs}
}

func (c *SetMode) Name() string           { return "set_mode" }
func (c *SetMode) Permission() Permission { return PermissionAdmin }

func (c *SetMode) Execute(_ context.Context, inv Invocation) error {
	cs := c.chats.Get(inv.Message.Chat.ID)

	mode, err := state.ParseMode(strings.TrimSpace(inv.Args))
	if err != nil {
		text, rerr := c.msgs.Usage(cs.Language(), "/set_mode <ban|notify>")
		if rerr != nil {
			return rerr
		}
		return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
	}

	cs.SetMode(mode)
	text, err := c.msgs.SetMode(cs.Language(), string(mode))
	if err != nil {
		return err
	}
	return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
}

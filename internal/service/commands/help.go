package commands

import (
	"context"

	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// Help отвечает справкой по командам и версией бота.
type Help struct {
	bot     telegram.API
	chats   *state.Store
	msgs    *moderation.Messages
	version string
}

func NewHelp(bot telegram.API, chats *state.Store, msgs *moderation.Messages, version string) *Help {
	return &Help{bot: bot, chats: chats, msgs: msgs, version: version}
}

func (c *Help) Name() string           { return "help" }
func (c *Help) Permission() Permission { return PermissionPublic }

func (c *Help) Execute(_ context.Context, inv Invocation) error {
	lang := c.chats.Get(inv.Message.Chat.ID).Language()
	text, err := c.msgs.Help(lang, c.version)
	if err != nil {
		return err
	}
	return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
}

package commands

import (
	"context"
	"strings"
	"time"

	"github.com/strazhbot/strazh/internal/moderation"
	"github.com/strazhbot/strazh/internal/state"
	"github.com/strazhbot/strazh/internal/telegram"
)

// Inject добавляет административную директиву в контекст классификатора.
type Inject struct {
	bot   telegram.API
	chats *state.Store
	msgs  *moderation.Messages
}

func NewInject(bot telegram.API, chats *state.Store, msgs *moderation.Messages) *Inject {
	return &Inject{bot: bot, chats: chats, msgs: msgs}
}

func (c *Inject) Name() string           { return "inject" }
func (c *Inject) Permission() Permission { return PermissionAdmin }

func (c *Inject) Execute(_ context.Context, inv Invocation) error {
	cs := c.chats.Get(inv.Message.Chat.ID)

	directive := strings.TrimSpace(inv.Args)
	if directive == "" {
		text, err := c.msgs.Usage(cs.Language(), "/inject <directive text>")
		if err != nil {
			return err
		}
		return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
	}

	cs.AppendDirective(state.AdminDirective{
		Author:    telegram.DisplayName(inv.Message.From),
		Timestamp: time.Now().UTC(),
		Text:      directive,
	})

	text, err := c.msgs.Inject(cs.Language())
	if err != nil {
		return err
	}
	return c.bot.Reply(inv.Message.Chat.ID, inv.Message.MessageID, text)
}

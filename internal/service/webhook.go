package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Заголовок, в котором Telegram возвращает секрет, переданный в setWebhook.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// webhookHandler принимает по одному JSON-обновлению на запрос и отдаёт его
// диспетчеру. Если секрет настроен, запросы без него отклоняются.
func (s *Service) webhookHandler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if s.cfg.WebhookSecret != "" {
			got := r.Header.Get(secretTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.WebhookSecret)) != 1 {
				s.logger.Warn("webhook request with bad secret token",
					zap.String("remote_addr", r.RemoteAddr),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			s.logger.Warn("failed to decode webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		// Отвечаем Telegram сразу, обработка идёт в фоне.
		go s.Dispatch(ctx, update)
		w.WriteHeader(http.StatusOK)
	})
}

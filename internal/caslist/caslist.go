package caslist

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Русский комментарий: CAS (Combot Anti-Spam) ведёт глобальный список
// известных спамеров. Мы периодически скачиваем полный экспорт и держим его
// в памяти как неизменяемое множество с атомарной подменой целиком: читатели
// никогда не видят наполовину собранный список и не конкурируют с обновлением
// за блокировки.

// Set — неизменяемое множество ID забаненных пользователей.
// После передачи в Cache.Replace множество менять нельзя.
type Set map[int64]struct{}

// Contains сообщает, есть ли пользователь в множестве.
func (s Set) Contains(userID int64) bool {
	_, ok := s[userID]
	return ok
}

// Cache — атомарно подменяемый снапшот CAS-списка.
type Cache struct {
	set atomic.Pointer[Set]
}

// NewCache создаёт кэш с пустым списком: сервис может стартовать до первой
// успешной загрузки.
func NewCache() *Cache {
	c := &Cache{}
	empty := Set{}
	c.set.Store(&empty)
	return c
}

// Current возвращает текущий снапшот множества. Один атомарный load,
// без блокировок.
func (c *Cache) Current() Set {
	return *c.set.Load()
}

// Replace атомарно подменяет множество целиком.
func (c *Cache) Replace(s Set) {
	if s == nil {
		s = Set{}
	}
	c.set.Store(&s)
}

// Len — размер текущего снапшота (для логов и /status).
func (c *Cache) Len() int {
	return len(c.Current())
}

// Client скачивает полный CAS-экспорт.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient создаёт клиента CAS. baseURL — например "https://api.cas.chat".
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(2 * time.Minute),
		logger: logger,
	}
}

// FetchFullList скачивает export.csv (по одному ID в строке) и собирает Set.
// Нечитаемые строки логируются и пропускаются — одна кривая строка не должна
// ронять обновление всего списка.
func (c *Client) FetchFullList(ctx context.Context) (Set, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/export.csv")
	if err != nil {
		return nil, fmt.Errorf("CAS export request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("CAS export request failed: HTTP %d", resp.StatusCode())
	}

	out := Set{}
	scanner := bufio.NewScanner(bytes.NewReader(resp.Body()))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		id, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			c.logger.Warn("failed to parse user ID from CAS export",
				zap.String("line", string(line)),
				zap.Error(err),
			)
			continue
		}
		out[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CAS export: %w", err)
	}

	return out, nil
}

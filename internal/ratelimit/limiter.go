package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Limiter - счётчик с фиксированным окном, на один процесс.
// Ключ - отпечаток клиента (адрес + префикс user-agent). Защита best-effort:
// при горизонтальном масштабировании счётчики не разделяются между инстансами.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// New создаёт лимитер: limit запросов за period.
func New(limit int, period time.Duration) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
}

// Allow сообщает, пропускать ли запрос с данным ключом.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true
	}

	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// StartSweeper запускает фоновую очистку истёкших окон, останавливается по ctx.Done().
func (l *Limiter) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep(time.Now())
			}
		}
	}()
}

func (l *Limiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// Middleware возвращает echo middleware, отвечающий 429 при превышении лимита.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(fingerprint(c)) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

// fingerprint строит ключ клиента: IP плюс префикс user-agent.
func fingerprint(c echo.Context) string {
	ua := c.Request().UserAgent()
	if len(ua) > 32 {
		ua = ua[:32]
	}
	return c.RealIP() + "|" + ua
}

package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

// Status — агрегированное состояние сервиса продаж.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const defaultCheckTimeout = 2 * time.Second

// CheckFunc выполняет одну проверку. Отмена ctx означает таймаут проверки.
type CheckFunc func(ctx context.Context) error

// Check — результат одной проверки в ответе /healthz.
type Check struct {
	Name       string `json:"name"`
	Critical   bool   `json:"critical"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — тело ответа /healthz.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

type registeredCheck struct {
	name     string
	critical bool
	fn       CheckFunc
}

// Handler выполняет зарегистрированные проверки и отдаёт /healthz и /readyz.
// Падение критичной проверки (хранилище) делает сервис unhealthy и not ready;
// падение некритичной (брокер, backlog outbox) лишь деградирует статус:
// продажи продолжаются, события догонят позже.
type Handler struct {
	mu           sync.RWMutex
	checks       []registeredCheck
	checkTimeout time.Duration
	version      string
	startedAt    time.Time
}

// NewHandler создаёт health handler с таймаутом проверки по умолчанию.
func NewHandler(version string) *Handler {
	return &Handler{
		checkTimeout: defaultCheckTimeout,
		version:      version,
		startedAt:    time.Now(),
	}
}

// RegisterCritical регистрирует проверку, без которой сервис не готов
// принимать заказы.
func (h *Handler) RegisterCritical(name string, fn CheckFunc) {
	h.register(name, true, fn)
}

// RegisterWarning регистрирует проверку, падение которой деградирует
// статус, но не снимает сервис с трафика.
func (h *Handler) RegisterWarning(name string, fn CheckFunc) {
	h.register(name, false, fn)
}

func (h *Handler) register(name string, critical bool, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, registeredCheck{name: name, critical: critical, fn: fn})
}

func (h *Handler) snapshot() []registeredCheck {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]registeredCheck(nil), h.checks...)
}

func (h *Handler) runCheck(ctx context.Context, rc registeredCheck) Check {
	checkCtx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	start := time.Now()
	err := rc.fn(checkCtx)
	result := Check{
		Name:       rc.name,
		Critical:   rc.critical,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Message = err.Error()
		if rc.critical {
			result.Status = StatusUnhealthy
		} else {
			result.Status = StatusDegraded
		}
	}
	return result
}

// ServeHTTP отдаёт полный отчёт о состоянии. HTTP 503 только при падении
// критичной проверки; degraded остаётся 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]Check)
	overall := StatusHealthy

	for _, rc := range h.snapshot() {
		result := h.runCheck(r.Context(), rc)
		checks[rc.name] = result

		switch result.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

// ReadinessHandler смотрит только на критичные проверки: отстающий outbox
// не повод снимать обработку заказов с балансировщика.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	for _, rc := range h.snapshot() {
		if !rc.critical {
			continue
		}
		if result := h.runCheck(r.Context(), rc); result.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready: " + rc.name))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LivenessHandler — процесс жив, и только.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// OutboxBacklogCheck следит за отставанием transactional outbox: превышение
// maxPending означает, что события продаж не доходят до потребителей.
func OutboxBacklogCheck(repo domain.OutboxRepository, maxPending int) CheckFunc {
	return func(_ context.Context) error {
		stats, err := repo.Stats()
		if err != nil {
			return fmt.Errorf("outbox stats: %w", err)
		}
		if maxPending > 0 && stats.PendingCount > maxPending {
			return fmt.Errorf("outbox backlog: %d pending events (limit %d), oldest from %s",
				stats.PendingCount, maxPending, stats.OldestPendingAt.Format(time.RFC3339))
		}
		return nil
	}
}

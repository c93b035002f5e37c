package usecase

import (
	"context"
	"log/slog"
	"sync"

	"assetvault/internal/domain"
)

// MemoryAudit keeps the most recent reveals in process memory. It stands
// in for the MySQL audit table when no DSN is configured.
type MemoryAudit struct {
	Log *slog.Logger
	Cap int

	mu     sync.Mutex
	events []domain.RevealEvent
}

func (m *MemoryAudit) RecordReveal(ctx context.Context, ev domain.RevealEvent) error {
	m.Log.Info("secret revealed",
		slog.String("actor", ev.Actor),
		slog.String("asset", ev.AssetID),
		slog.String("service", ev.ServiceName),
	)
	limit := m.Cap
	if limit <= 0 {
		limit = 1000
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	if over := len(m.events) - limit; over > 0 {
		m.events = append([]domain.RevealEvent(nil), m.events[over:]...)
	}
	return nil
}

// ListReveals returns the newest events first.
func (m *MemoryAudit) ListReveals(ctx context.Context, limit int) ([]domain.RevealEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.RevealEvent, 0, n)
	for i := len(m.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

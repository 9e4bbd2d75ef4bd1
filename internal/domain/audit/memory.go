package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLog keeps events in process memory and mirrors each one to the logger.
type MemoryLog struct {
	mu     sync.RWMutex
	events []Event
	log    *slog.Logger
	now    func() time.Time
}

func NewMemoryLog(logger *slog.Logger) *MemoryLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryLog{log: logger, now: time.Now}
}

func (m *MemoryLog) Record(ctx context.Context, entry Entry) error {
	evt, err := newEvent(ctx, entry, m.now())
	if err != nil {
		return err
	}
	m.mu.Lock()
	evt.ID = int64(len(m.events) + 1)
	m.events = append(m.events, evt)
	m.mu.Unlock()

	m.log.InfoContext(ctx, "audit event",
		slog.String("action", evt.Action),
		slog.String("entity_id", evt.EntityID),
		slog.String("actor", evt.Actor),
		slog.String("request_id", evt.RequestID),
	)
	return nil
}

func (m *MemoryLog) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Event, 0, len(m.events))
	for i := len(m.events) - 1; i >= 0; i-- {
		evt := m.events[i]
		if filter.Action != "" && evt.Action != filter.Action {
			continue
		}
		if filter.EntityID != "" && evt.EntityID != filter.EntityID {
			continue
		}
		matched = append(matched, evt)
	}
	total := len(matched)
	if offset >= total {
		return []Event{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

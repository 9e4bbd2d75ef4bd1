package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"employeedir/internal/platform/db"
	"employeedir/internal/requestctx"
)

type Event struct {
	ID         int64           `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Entry is what a caller knows about a change; actor, request id and client
// IP are taken from the request context.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
}

type Filter struct {
	Action   string
	EntityID string
}

type Log interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error)
}

// Service persists events to audit_events, inside the caller's transaction
// when the context carries one.
type Service struct {
	DB  db.Queryer
	Now func() time.Time
}

func New(pool db.Queryer) *Service {
	return &Service{DB: pool, Now: time.Now}
}

func (s *Service) Record(ctx context.Context, entry Entry) error {
	evt, err := newEvent(ctx, entry, s.Now())
	if err != nil {
		return err
	}
	_, err = db.QueryerFromContext(ctx, s.DB).Exec(ctx, `
    INSERT INTO audit_events (actor, action, entity_type, entity_id, before_json, after_json, request_id, ip, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, evt.Actor, evt.Action, evt.EntityType, evt.EntityID, nullableJSON(evt.Before), nullableJSON(evt.After), evt.RequestID, evt.IP, evt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error) {
	conn := db.QueryerFromContext(ctx, s.DB)

	countQuery, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args := buildBaseQuery("SELECT id, actor, action, entity_type, entity_id, request_id, ip, created_at, before_json, after_json", filter)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Event, 0, limit)
	for rows.Next() {
		var evt Event
		var before, after []byte
		if err := rows.Scan(&evt.ID, &evt.Actor, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &before, &after); err != nil {
			return nil, 0, err
		}
		evt.Before = before
		evt.After = after
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	args := []any{}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND entity_id = $%d", len(args)+1)
		args = append(args, filter.EntityID)
	}
	return query, args
}

func newEvent(ctx context.Context, entry Entry, now time.Time) (Event, error) {
	evt := Event{
		Actor:      requestctx.GetActor(ctx),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         requestctx.GetClientIP(ctx),
		CreatedAt:  now.UTC(),
	}
	var err error
	if evt.Before, err = marshalSnapshot(entry.Before); err != nil {
		return Event{}, fmt.Errorf("marshal audit before: %w", err)
	}
	if evt.After, err = marshalSnapshot(entry.After); err != nil {
		return Event{}, fmt.Errorf("marshal audit after: %w", err)
	}
	return evt, nil
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

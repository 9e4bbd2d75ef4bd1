package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"employeedir/internal/domain/audit"
	"employeedir/internal/lib/logger/sl"
	"employeedir/internal/platform/metrics"
)

const (
	EntityType   = "employee"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Now truncates to microseconds, the precision of TIMESTAMPTZ.
func (realClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Option func(*Service)

func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Service) {
		s.metrics = collector
	}
}

type Service struct {
	store   StoreAPI
	gate    *Gate
	tx      TransactionManager
	audit   AuditRecorder
	clock   Clock
	log     *slog.Logger
	metrics *metrics.Collector
}

// NewService wires the store, the validation gate and the audit recorder.
// A nil tx runs every operation directly against the store.
func NewService(store StoreAPI, tx TransactionManager, recorder AuditRecorder, opts ...Option) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		store: store,
		gate:  NewGate(store),
		tx:    tx,
		audit: recorder,
		clock: realClock{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	var out []Employee
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		list, err := s.store.List(txCtx)
		if err != nil {
			return fmt.Errorf("list employees: %w", err)
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "employees listed", slog.Int("count", len(out)))
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	if id <= 0 {
		return Employee{}, ErrNotFound
	}
	var out Employee
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.store.Get(txCtx, id)
		if err != nil {
			return fmt.Errorf("get employee %d: %w", id, err)
		}
		out = emp
		return nil
	})
	return out, err
}

func (s *Service) Create(ctx context.Context, in Input) (Employee, error) {
	var created Employee
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		fields, err := s.gate.Check(txCtx, in, 0)
		if err != nil {
			return err
		}
		emp, err := s.store.Insert(txCtx, fields, s.clock.Now())
		if err != nil {
			return fmt.Errorf("insert employee: %w", err)
		}
		if err := s.record(txCtx, ActionCreate, emp.ID, nil, emp); err != nil {
			return err
		}
		created = emp
		return nil
	})
	err = s.finish(ctx, ActionCreate, created.ID, err)
	if err != nil {
		return Employee{}, err
	}
	return created, nil
}

// Update checks the record exists before validating, so an unknown id is
// reported as not found even when the payload is also invalid.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Employee, error) {
	if id <= 0 {
		s.metrics.Mutation(ActionUpdate, metrics.OutcomeNotFound)
		return Employee{}, ErrNotFound
	}
	var updated Employee
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		before, err := s.store.Get(txCtx, id)
		if err != nil {
			return fmt.Errorf("get employee %d: %w", id, err)
		}
		fields, err := s.gate.Check(txCtx, in, id)
		if err != nil {
			return err
		}
		emp, err := s.store.Update(txCtx, id, fields, s.clock.Now())
		if err != nil {
			return fmt.Errorf("update employee %d: %w", id, err)
		}
		if err := s.record(txCtx, ActionUpdate, id, before, emp); err != nil {
			return err
		}
		updated = emp
		return nil
	})
	err = s.finish(ctx, ActionUpdate, id, err)
	if err != nil {
		return Employee{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		s.metrics.Mutation(ActionDelete, metrics.OutcomeNotFound)
		return ErrNotFound
	}
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		before, err := s.store.Get(txCtx, id)
		if err != nil {
			return fmt.Errorf("get employee %d: %w", id, err)
		}
		if err := s.store.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete employee %d: %w", id, err)
		}
		return s.record(txCtx, ActionDelete, id, before, nil)
	})
	return s.finish(ctx, ActionDelete, id, err)
}

func (s *Service) record(ctx context.Context, action string, id int64, before, after any) error {
	if s.audit == nil {
		return nil
	}
	entry := audit.Entry{
		Action:     EntityType + "." + action,
		EntityType: EntityType,
		EntityID:   strconv.FormatInt(id, 10),
		Before:     before,
		After:      after,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record %s: %w", action, err)
	}
	return nil
}

// finish turns a store-level email conflict into a field error, counts the
// outcome and logs successful mutations.
func (s *Service) finish(ctx context.Context, action string, id int64, err error) error {
	if errors.Is(err, ErrEmailTaken) {
		verr := NewValidationError()
		verr.Add("email", ReasonTaken)
		err = verr
	}

	switch _, invalid := AsValidationError(err); {
	case err == nil:
		s.metrics.Mutation(action, metrics.OutcomeSuccess)
		s.log.InfoContext(ctx, "employee mutated", slog.String("action", action), slog.Int64("id", id))
	case invalid:
		s.metrics.Mutation(action, metrics.OutcomeInvalid)
	case errors.Is(err, ErrNotFound):
		s.metrics.Mutation(action, metrics.OutcomeNotFound)
	default:
		s.metrics.Mutation(action, metrics.OutcomeError)
		s.log.ErrorContext(ctx, "employee mutation failed", slog.String("action", action), slog.Int64("id", id), sl.Err(err))
	}
	return err
}

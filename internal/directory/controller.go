package directory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"employeedir/internal/domain/employee"
	"employeedir/internal/lib/logger/sl"
)

var ErrSubmitInFlight = errors.New("directory: submit already in flight")

// API is the subset of the employee resource the screen needs.
type API interface {
	List(ctx context.Context) ([]employee.Employee, error)
	Create(ctx context.Context, in employee.Input) (employee.Employee, error)
	Update(ctx context.Context, id int64, in employee.Input) (employee.Employee, error)
	Delete(ctx context.Context, id int64) (string, error)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Controller owns a State and applies API results to it.
type Controller struct {
	api     API
	confirm Confirmer
	log     *slog.Logger

	mu    sync.Mutex
	state State
}

func NewController(api API, confirm Confirmer, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{api: api, confirm: confirm, log: log, state: NewState()}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Edit(emp employee.Employee) {
	c.apply(func(s State) State { return s.Edit(emp) })
}

func (c *Controller) Cancel() {
	c.apply(State.Cancel)
}

func (c *Controller) SetField(name, value string) {
	c.apply(func(s State) State { return s.SetField(name, value) })
}

// Refresh refetches the list. A failure leaves an empty list and a notice.
func (c *Controller) Refresh(ctx context.Context) error {
	list, err := c.api.List(ctx)
	if err != nil {
		c.log.Error("fetch employees", sl.Err(err))
		c.apply(State.LoadFailed)
		return err
	}
	c.apply(func(s State) State { return s.Loaded(list) })
	return nil
}

// Submit creates or updates depending on the mode. On success the form is
// cleared and the list is refetched; a refetch failure is reflected in the
// state only.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.state = c.state.SubmitStarted()
	mode, id, in := c.state.Mode, c.state.EditingID, c.state.Form.Input()
	c.mu.Unlock()

	var err error
	if mode == ModeEdit {
		_, err = c.api.Update(ctx, id, in)
	} else {
		_, err = c.api.Create(ctx, in)
	}
	if err != nil {
		c.log.Warn("submit employee", slog.String("mode", mode.String()), sl.Err(err))
		c.apply(func(s State) State { return s.SubmitFailed(err) })
		return err
	}

	c.apply(State.SubmitSucceeded)
	_ = c.Refresh(ctx)
	return nil
}

// Delete asks for confirmation first. It reports false when the user
// declined.
func (c *Controller) Delete(ctx context.Context, id int64) (bool, error) {
	if c.confirm == nil || !c.confirm.Confirm(ConfirmDeletePrompt) {
		return false, nil
	}

	if _, err := c.api.Delete(ctx, id); err != nil {
		c.log.Warn("delete employee", slog.Int64("id", id), sl.Err(err))
		c.apply(func(s State) State {
			s.Notice = NoticeDeleteFailed
			return s
		})
		return false, err
	}

	c.apply(func(s State) State {
		if s.Mode == ModeEdit && s.EditingID == id {
			s = s.Cancel()
		}
		s.Notice = NoticeDeleted
		return s
	})
	_ = c.Refresh(ctx)
	return true, nil
}

func (c *Controller) apply(fn func(State) State) {
	c.mu.Lock()
	c.state = fn(c.state)
	c.mu.Unlock()
}

// Package directory holds the form and list view-model used by clients of
// the employee API. State transitions are pure; Controller runs the effects.
package directory

import (
	"errors"

	"employeedir/internal/domain/employee"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

const (
	NoticeCreated      = "Employee created!"
	NoticeUpdated      = "Employee updated!"
	NoticeDeleted      = "Employee deleted!"
	NoticeInvalid      = "Please correct the highlighted fields."
	NoticeFailed       = "Something went wrong!"
	NoticeDeleteFailed = "Failed to delete."
	NoticeLoadFailed   = "Could not load employees."

	ConfirmDeletePrompt = "Are you sure you want to delete this employee?"
)

type Form struct {
	Name     string
	Email    string
	Position string
}

// Input converts the form into an API payload with every field present.
func (f Form) Input() employee.Input {
	return employee.NewInput(f.Name, f.Email, f.Position)
}

// State is a snapshot of the screen. Every transition returns a new value.
type State struct {
	Employees   []employee.Employee
	Loading     bool
	Mode        Mode
	EditingID   int64
	Form        Form
	FieldErrors map[string][]string
	Notice      string
	Submitting  bool
}

// NewState is the screen before the first fetch completes.
func NewState() State {
	return State{Loading: true}
}

// Edit selects emp and pre-fills the form with its values.
func (s State) Edit(emp employee.Employee) State {
	s.Mode = ModeEdit
	s.EditingID = emp.ID
	s.Form = Form{Name: emp.Name, Email: emp.Email, Position: emp.Position}
	s.FieldErrors = nil
	s.Notice = ""
	return s
}

// Cancel drops the selection and clears the form.
func (s State) Cancel() State {
	s.Mode = ModeCreate
	s.EditingID = 0
	s.Form = Form{}
	s.FieldErrors = nil
	return s
}

// SetField updates one form field. Unknown names are ignored.
func (s State) SetField(name, value string) State {
	switch name {
	case "name":
		s.Form.Name = value
	case "email":
		s.Form.Email = value
	case "position":
		s.Form.Position = value
	default:
		return s
	}
	if _, ok := s.FieldErrors[name]; ok {
		errs := make(map[string][]string, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			if k != name {
				errs[k] = v
			}
		}
		s.FieldErrors = errs
	}
	return s
}

// Loaded replaces the list with the server's current records.
func (s State) Loaded(list []employee.Employee) State {
	s.Employees = append([]employee.Employee(nil), list...)
	s.Loading = false
	return s
}

// LoadFailed shows an empty list with a notice.
func (s State) LoadFailed() State {
	s.Employees = nil
	s.Loading = false
	s.Notice = NoticeLoadFailed
	return s
}

func (s State) SubmitStarted() State {
	s.Submitting = true
	s.FieldErrors = nil
	s.Notice = ""
	return s
}

// SubmitSucceeded clears the form and selection. The list is refetched by
// the caller.
func (s State) SubmitSucceeded() State {
	notice := NoticeCreated
	if s.Mode == ModeEdit {
		notice = NoticeUpdated
	}
	s = s.Cancel()
	s.Submitting = false
	s.Notice = notice
	return s
}

// SubmitFailed keeps the form and list as they were and reports err.
func (s State) SubmitFailed(err error) State {
	s.Submitting = false
	var fe fieldErrorer
	if errors.As(err, &fe) {
		if fields := fe.FieldErrors(); len(fields) > 0 {
			s.FieldErrors = fields
			s.Notice = NoticeInvalid
			return s
		}
	}
	s.FieldErrors = nil
	s.Notice = NoticeFailed
	return s
}

type fieldErrorer interface {
	FieldErrors() map[string][]string
}

package shared

import (
	"net/http"
	"strconv"
	"strings"

	"employeedir/internal/transport/http/api"
)

// Validator collects query and path parameter issues per field.
type Validator struct {
	issues map[string][]string
}

func NewValidator() *Validator {
	return &Validator{issues: make(map[string][]string, 2)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues[field] = append(v.issues[field], reason)
}

func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return
	}
	for _, candidate := range allowed {
		if normalized == strings.ToLower(strings.TrimSpace(candidate)) {
			return
		}
	}
	v.Add(field, reason)
}

// PositiveID validates an optional numeric identifier.
func (v *Validator) PositiveID(field, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err != nil || id <= 0 {
		v.Add(field, "must be a positive integer")
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() map[string][]string {
	if !v.HasIssues() {
		return nil
	}
	out := make(map[string][]string, len(v.issues))
	for field, reasons := range v.issues {
		out[field] = append([]string(nil), reasons...)
	}
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	api.FailValidation(w, v.Issues(), requestID)
	return true
}

package employee

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

const MaxFieldLength = 255

type Employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fields holds a validated, trimmed payload ready to be written.
type Fields struct {
	Name     string
	Email    string
	Position string
}

// Input is a candidate payload as received from a client. A nil field was
// absent or null; NonString lists fields sent with a non-string JSON value.
type Input struct {
	Name      *string
	Email     *string
	Position  *string
	NonString []string
}

var errPayloadNotObject = errors.New("employee: payload must be a JSON object")

func (in *Input) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errPayloadNotObject
	}

	*in = Input{}
	targets := []struct {
		key string
		dst **string
	}{
		{"name", &in.Name},
		{"email", &in.Email},
		{"position", &in.Position},
	}
	for _, target := range targets {
		value, ok := raw[target.key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			in.NonString = append(in.NonString, target.key)
			continue
		}
		*target.dst = &s
	}
	return nil
}

func (in Input) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, 3)
	if in.Name != nil {
		out["name"] = *in.Name
	}
	if in.Email != nil {
		out["email"] = *in.Email
	}
	if in.Position != nil {
		out["position"] = *in.Position
	}
	return json.Marshal(out)
}

// NewInput builds an Input with every field present.
func NewInput(name, email, position string) Input {
	return Input{Name: &name, Email: &email, Position: &position}
}

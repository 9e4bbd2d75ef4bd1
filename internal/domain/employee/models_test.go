package employee_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employeedir/internal/domain/employee"
)

func TestInputUnmarshal(t *testing.T) {
	t.Parallel()

	var in employee.Input
	err := json.Unmarshal([]byte(`{"name":"Ada","email":null,"position":42,"extra":true}`), &in)

	require.NoError(t, err)
	require.NotNil(t, in.Name)
	assert.Equal(t, "Ada", *in.Name)
	assert.Nil(t, in.Email)
	assert.Nil(t, in.Position)
	assert.Equal(t, []string{"position"}, in.NonString)
}

func TestInputUnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`null`, `[1,2]`, `"ada"`, `{"name":`} {
		var in employee.Input
		assert.Error(t, json.Unmarshal([]byte(body), &in), body)
	}
}

func TestInputMarshalOmitsAbsentFields(t *testing.T) {
	t.Parallel()

	name := "Ada"
	raw, err := json.Marshal(employee.Input{Name: &name})

	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada"}`, string(raw))
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	verr := employee.NewValidationError()
	verr.Add("name", employee.ReasonRequired)
	verr.Add("email", employee.ReasonTaken)
	verr.Add("email", employee.ReasonTaken)
	verr.Add("position", "  ")

	assert.Equal(t, "employee: validation failed: email: already taken; name: is required", verr.Error())
	assert.Len(t, verr.Fields, 2)
}

func extract(t *testing.T, raw json.RawMessage, key string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return string(m[key])
}

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), KindInternal},
		{"validation", Validation("submit", "name"), KindValidation},
		{"auth", Auth("login", 401, ""), KindAuth},
		{"protocol", Protocol("login", cause), KindProtocol},
		{"connectivity", Connectivity("login", cause), KindConnectivity},
		{"permission", Permission("record", cause), KindPermission},
		{"submission", Submission("submit", cause), KindSubmission},
		{"wrapped", fmt.Errorf("outer: %w", Auth("login", 500, "")), KindAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("no such host")
	err := Connectivity("login", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "login: connectivity")
	assert.Contains(t, err.Error(), "no such host")
}

func TestValidation_ListsFields(t *testing.T) {
	fields := []string{"name", "tutor"}
	err := Validation("submit", fields...)
	fields[0] = "changed"

	assert.Equal(t, []string{"name", "tutor"}, MissingFields(err))
	assert.Contains(t, err.Error(), "[name, tutor]")
	assert.Nil(t, MissingFields(Auth("login", 403, "")))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 503, StatusCode(fmt.Errorf("wrap: %w", Auth("login", 503, ""))))
	assert.Equal(t, 0, StatusCode(errors.New("other")))
	assert.True(t, Is(Auth("login", 503, ""), KindAuth))
	assert.False(t, Is(nil, KindAuth))
}

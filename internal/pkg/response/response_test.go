package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photosession/internal/pkg/apperror"
)

type envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func run(t *testing.T, err error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	FromError(c, err)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestFromErrorMapsKinds(t *testing.T) {
	cases := []struct {
		kind   apperror.Kind
		status int
	}{
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindForbidden, http.StatusForbidden},
		{apperror.KindConflict, http.StatusConflict},
		{apperror.KindGuard, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			w, env := run(t, apperror.New(tc.kind, "SOME_CODE", "msg"))
			assert.Equal(t, tc.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "SOME_CODE", env.Error.Code)
		})
	}
}

func TestFromErrorKeepsWrappedDetail(t *testing.T) {
	sentinel := apperror.New(apperror.KindGuard, "INVALID_TRANSITION", "invalid status transition")
	w, env := run(t, apperror.Wrapf(sentinel, "cannot confirm from %s", "confirmed"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)
	assert.Contains(t, env.Error.Message, "cannot confirm from confirmed")
}

func TestFromErrorValidationDetails(t *testing.T) {
	_, env := run(t, apperror.Validation(map[string]string{"date": "required"}))
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "required", env.Error.Details["date"])
}

func TestFromErrorHidesUnknown(t *testing.T) {
	w, env := run(t, errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "pq")
}

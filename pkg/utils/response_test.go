package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-system/internal/workflow"
	apperrors "ticket-system/pkg/errors"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestErrorResponse_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"не найдено", fmt.Errorf("заявка TKT-1: %w", apperrors.ErrTicketNotFound), http.StatusNotFound},
		{"пропущенные поля", apperrors.NewValidationError("title"), http.StatusBadRequest},
		{"неверный ввод", apperrors.NewInvalidInputError("плохо"), http.StatusBadRequest},
		{"недопустимый переход", &workflow.IllegalTransitionError{From: workflow.StatusPending, To: workflow.StatusCompleted}, http.StatusConflict},
		{"проформа", apperrors.ErrInvalidProforma, http.StatusUnprocessableEntity},
		{"склад", apperrors.ErrInsufficientToolQuantity, http.StatusConflict},
		{"возврат", apperrors.ErrInvalidReturnQuantity, http.StatusBadRequest},
		{"конфликт", apperrors.ErrConflict, http.StatusConflict},
		{"http", apperrors.NewHttpError(http.StatusTeapot, "чайник", nil, nil), http.StatusTeapot},
		{"прочее", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("/")
			require.NoError(t, ErrorResponse(c, tt.err, zap.NewNop()))
			assert.Equal(t, tt.code, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["status"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestErrorResponse_HidesInternalDetails(t *testing.T) {
	c, rec := newContext("/")
	require.NoError(t, ErrorResponse(c, errors.New("password=secret"), zap.NewNop()))
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestSuccessResponse_Pagination(t *testing.T) {
	c, rec := newContext("/?page=2&limit=5")
	require.NoError(t, SuccessResponse(c, []int{1, 2}, "ok", http.StatusOK, 12))

	var body struct {
		Status bool `json:"status"`
		Body   struct {
			List       []int                  `json:"list"`
			Pagination map[string]interface{} `json:"pagination"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Status)
	assert.Equal(t, []int{1, 2}, body.Body.List)
	assert.EqualValues(t, 3, body.Body.Pagination["total_pages"])
	assert.EqualValues(t, 2, body.Body.Pagination["page"])
}

func TestSuccessResponse_WithoutTotal(t *testing.T) {
	c, rec := newContext("/")
	require.NoError(t, SuccessResponse(c, map[string]string{"a": "b"}, "ok", http.StatusCreated))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status": true, "message": "ok", "body": {"a": "b"}}`, rec.Body.String())
}

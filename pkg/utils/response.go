package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/workflow"
	apperrors "ticket-system/pkg/errors"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HTTPResponse{Status: true, Message: message}
	withPagination, err := strconv.ParseBool(ctx.QueryParam("withPagination"))
	if err != nil {
		withPagination = true
	}
	if withPagination && len(total) > 0 {
		filter := ParseFilterFromQuery(ctx.Request().URL.Query())
		totalPages := 0
		if filter.Limit > 0 {
			totalPages = int((total[0] + uint64(filter.Limit) - 1) / uint64(filter.Limit))
		}
		pagination := map[string]interface{}{
			"total_count": total[0],
			"page":        filter.Page,
			"limit":       filter.Limit,
			"total_pages": totalPages,
		}
		response.Body = map[string]interface{}{"list": body, "pagination": pagination}
	} else {
		response.Body = body
	}
	return ctx.JSON(code, response)
}

// ErrorResponse - единая точка перевода ошибок в HTTP-коды.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Warn("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
			)
		}
		// Ошибка валидации внутри HttpError отдается по полям
		var inner validator.ValidationErrors
		if httpErr.Details == nil && errors.As(httpErr.Err, &inner) {
			return validationFailed(c, inner)
		}
		return c.JSON(httpErr.Code, errorBody(httpErr.Message, httpErr.Details))
	}

	var missing *apperrors.ValidationError
	if errors.As(err, &missing) {
		return c.JSON(http.StatusBadRequest, errorBody(missing.Error(), map[string]interface{}{"fields": missing.Fields}))
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return validationFailed(c, validationErrors)
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return c.JSON(http.StatusBadRequest, errorBody(invalidInput.Message, nil))
	}

	var illegal *workflow.IllegalTransitionError
	if errors.As(err, &illegal) {
		return c.JSON(http.StatusConflict, errorBody(illegal.Error(), map[string]interface{}{
			"from":    illegal.From,
			"to":      illegal.To,
			"allowed": workflow.Default.Next(illegal.From, illegal.Type),
		}))
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody(err.Error(), nil))
	case errors.Is(err, apperrors.ErrInvalidProforma):
		return c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error(), nil))
	case errors.Is(err, apperrors.ErrInsufficientToolQuantity),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, workflow.ErrIllegalTransition):
		return c.JSON(http.StatusConflict, errorBody(err.Error(), nil))
	case errors.Is(err, apperrors.ErrInvalidReturnQuantity),
		errors.Is(err, apperrors.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error(), nil))
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorBody(apperrors.ErrInternal.Error(), nil))
}

func validationFailed(c echo.Context, validationErrors validator.ValidationErrors) error {
	msgs := make([]string, 0, len(validationErrors))
	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		fields = append(fields, e.Field())
	}
	return c.JSON(http.StatusBadRequest, errorBody(
		"Ошибка валидации: "+strings.Join(msgs, "; "),
		map[string]interface{}{"fields": fields},
	))
}

func errorBody(message string, details interface{}) map[string]interface{} {
	response := map[string]interface{}{
		"status":  false,
		"message": message,
	}
	if details != nil {
		response["body"] = details
	}
	return response
}

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/repository"

	"github.com/labstack/echo/v4"
)

// Response is the success envelope
type Response struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message,omitempty"`
	Data       any                    `json:"data"`
	Pagination *repository.Pagination `json:"pagination,omitempty"`
}

// ErrorResponse is the failure envelope. Status is "fail" for client errors
// and "error" for server errors.
type ErrorResponse struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	ErrorCode string                 `json:"error_code"`
	Errors    []apperrors.FieldError `json:"errors,omitempty"`
	Rule      string                 `json:"rule,omitempty"`
	Context   map[string]any         `json:"context,omitempty"`
}

func success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Status: "success", Message: message, Data: data})
}

func paginated[T any](c echo.Context, message string, page *repository.Page[T]) error {
	return c.JSON(http.StatusOK, Response{
		Status:     "success",
		Message:    message,
		Data:       page.Items,
		Pagination: &page.Pagination,
	})
}

// httpErrorCodes names echo's own errors (routing, rate limiting, body parsing)
var httpErrorCodes = map[int]string{
	http.StatusBadRequest:            apperrors.CodeValidation,
	http.StatusNotFound:              apperrors.CodeNotFound,
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusTooManyRequests:       "RATE_LIMITED",
	http.StatusServiceUnavailable:    "SERVICE_UNAVAILABLE",
}

// ErrorHandler renders every error returned by a handler or middleware as an
// ErrorResponse. Internal details are only exposed when exposeInternal is set.
func ErrorHandler(log *slog.Logger, exposeInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorBody(err, exposeInternal)
		req := c.Request()
		if status >= http.StatusInternalServerError {
			log.ErrorContext(req.Context(), "request failed",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", status,
				"error", err.Error())
		} else {
			log.DebugContext(req.Context(), "request rejected",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", status,
				"error_code", body.ErrorCode)
		}

		if req.Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.ErrorContext(req.Context(), "failed to write error response", "error", err.Error())
		}
	}
}

func errorBody(err error, exposeInternal bool) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, ok := httpErrorCodes[he.Code]
		if !ok {
			code = apperrors.CodeInternal
		}
		body := ErrorResponse{Status: statusWord(he.Code), Message: fmt.Sprint(he.Message), ErrorCode: code}
		if he.Code >= http.StatusInternalServerError && !exposeInternal {
			body.Message = http.StatusText(he.Code)
		}
		return he.Code, body
	}

	status := apperrors.StatusCode(err)
	body := ErrorResponse{
		Status:    statusWord(status),
		Message:   err.Error(),
		ErrorCode: apperrors.Code(err),
	}

	var (
		ve  *apperrors.ValidationError
		bre *apperrors.BusinessRuleError
	)
	if errors.As(err, &bre) {
		body.Rule = bre.Rule
		body.Context = bre.Context
	}
	if errors.As(err, &ve) {
		body.Errors = ve.Fields
	}
	if !apperrors.IsOperational(err) && !exposeInternal {
		body.Message = "Something went wrong"
	}
	return status, body
}

func statusWord(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}

package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Result is either a SuccessResult or an ErrorResult. Render is the only place
// results are turned into HTTP responses.
type Result interface {
	statusCode() int
}

// SuccessResult carries the payload of a successful operation
type SuccessResult struct {
	Status int
	Data   any
}

func (r SuccessResult) statusCode() int { return r.Status }

// ErrorResult carries a classified failure
type ErrorResult struct {
	Kind    ErrorKind
	Message string
	Status  int
}

func (r ErrorResult) statusCode() int { return r.Status }

// ErrorBody is the wire format of every error response
type ErrorBody struct {
	Error string `json:"error"`
}

// Success wraps data in a 200 result
func Success(data any) SuccessResult {
	return SuccessResult{Status: http.StatusOK, Data: data}
}

// Created wraps data in a 201 result
func Created(data any) SuccessResult {
	return SuccessResult{Status: http.StatusCreated, Data: data}
}

// Failure converts any error into an ErrorResult
func Failure(err error) ErrorResult {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		return ErrorResult{Kind: kindForStatus(httpErr.Code), Message: message, Status: httpErr.Code}
	}

	appErr := AsAppError(err)
	if appErr.Err != nil {
		log.Printf("ERROR: %s: %v", appErr.Message, appErr.Err)
	}
	return ErrorResult{Kind: appErr.Kind, Message: appErr.Message, Status: appErr.Status}
}

// Render writes a result as JSON
func Render(c echo.Context, r Result) error {
	switch v := r.(type) {
	case SuccessResult:
		if v.Data == nil {
			return c.NoContent(v.Status)
		}
		return c.JSON(v.Status, v.Data)
	case ErrorResult:
		return c.JSON(v.Status, ErrorBody{Error: v.Message})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
	}
}

// HTTPErrorHandler is installed as echo's error handler so router errors such
// as 404 and 405 share the error envelope with service errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if rerr := Render(c, Failure(err)); rerr != nil {
		log.Printf("ERROR: failed to write error response: %v", rerr)
	}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindInternal
	default:
		return KindValidation
	}
}

package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/response"
)

const (
	MessageNotFound         = "Resource not found."
	MessageValidationFailed = "Validation failed"
	MessageBadRequest       = "Invalid request parameters"
	MessageServerError      = "Server error"
)

var ErrBadRequest = errors.New("invalid request parameters")

var debug atomic.Bool

// SetDebug controls whether 500 responses carry the underlying error text.
func SetDebug(enabled bool) {
	debug.Store(enabled)
}

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	envelope := response.Envelope{
		Success: true,
		Data:    data,
	}

	if len(message) > 0 && message[0] != "" {
		envelope.Message = message[0]
	}

	c.JSON(statusCode, envelope)
}

// SendError maps err to its status code and envelope. It returns the status
// that was written.
func SendError(c *gin.Context, err error) int {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, response.Envelope{
			Success: false,
			Message: MessageValidationFailed,
			Errors:  validationErr.Errors,
		})
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		SendNotFoundError(c)
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		c.JSON(http.StatusBadRequest, response.Envelope{
			Success: false,
			Message: MessageBadRequest,
		})
		return http.StatusBadRequest
	default:
		SendInternalError(c, err)
		return http.StatusInternalServerError
	}
}

func SendNotFoundError(c *gin.Context) {
	c.JSON(http.StatusNotFound, response.Envelope{
		Success: false,
		Message: MessageNotFound,
	})
}

func SendInternalError(c *gin.Context, err error) {
	envelope := response.Envelope{
		Success: false,
		Message: MessageServerError,
	}

	if debug.Load() && err != nil {
		envelope.Error = err.Error()
	}

	c.JSON(http.StatusInternalServerError, envelope)
}

// BindJSON decodes the request body into dest. An empty body leaves dest
// untouched. Malformed JSON yields ErrBadRequest; a value of the wrong type
// yields a validation error on that field.
func BindJSON(c *gin.Context, dest any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}

	err := c.ShouldBindJSON(dest)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		validationErr := domain.NewValidationError()
		validationErr.Add(typeErr.Field, "The "+typeErr.Field+" field must be "+typeName(typeErr.Type)+".")
		return validationErr
	}

	return ErrBadRequest
}

// BindQuery decodes the query string into dest. A value that does not fit
// its field yields ErrBadRequest.
func BindQuery(c *gin.Context, dest any) error {
	if err := c.ShouldBindQuery(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	return nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "valid"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "true or false"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "valid"
	}
}

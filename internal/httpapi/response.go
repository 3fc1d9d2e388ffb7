package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"litverse-be/internal/apperror"
	"litverse-be/internal/auth"
	"litverse-be/internal/logger"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const msgInternal = "internal server error"

var (
	errInvalidBody = apperror.New(apperror.KindValidation, "request body must be valid JSON")
	errForbidden   = apperror.New(apperror.KindForbidden, "you do not have access to this resource")
)

type APIResponse struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func ErrorResponse(message string, errs []apperror.FieldError) APIResponse {
	return APIResponse{Success: false, Message: message, Errors: errs}
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindAuth:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindDomain:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data))
}

// respondError maps err to its status code. Internal details only reach the
// logs.
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, ErrorResponse(msgInternal, nil))
		return
	}

	message := err.Error()
	if kind == apperror.KindValidation {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}
	c.AbortWithStatusJSON(status, ErrorResponse(message, apperror.FieldsOf(err)))
}

// decode reads the JSON body into dst.
func decode(c *gin.Context, dst interface{}) error {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		return apperror.Wrap(apperror.KindValidation, errInvalidBody.Message, err)
	}
	return nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name, "must be a positive integer")
	}
	return id, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalidParam(name, "must be a non-negative integer")
	}
	return n, nil
}

func invalidParam(name, message string) error {
	return apperror.Validation("invalid input", []apperror.FieldError{
		{Field: name, Message: message, Code: "invalid"},
	})
}

// caller is only called behind RequireAuth or RequireRole.
func caller(c *gin.Context) auth.Caller {
	cl, _ := auth.CallerFrom(c.Request.Context())
	return cl
}

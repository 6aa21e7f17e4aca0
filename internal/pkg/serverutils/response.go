package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Message: message, Data: data}
}

// AppError carries an HTTP status through the service layer.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(status int, format string, args ...interface{}) *AppError {
	return &AppError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// JSON envelope. Validation errors map to 400, AppErrors keep their status,
// everything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Status).JSON(Response{Message: appErr.Message})
		}

		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(Response{Message: valErrs.Error()})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(Response{Message: fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(Response{Message: "Internal server error"})
	}
}

var validate = validator.New()

// ValidateRequest validates a DTO against its struct tags.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

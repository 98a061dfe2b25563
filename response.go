package accounts

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// Envelope is the uniform body every endpoint returns.
type Envelope struct {
	Status   bool   `json:"status"`
	Message  string `json:"message"`
	Response string `json:"response"`
	Data     any    `json:"data,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// Success writes a success envelope with the given payload.
func Success(c *fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(Envelope{
		Status:   true,
		Message:  message,
		Response: "success",
		Data:     data,
	})
}

// Failure writes a failure envelope with no payload.
func Failure(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Envelope{
		Status:   false,
		Message:  message,
		Response: "fail",
	})
}

// ValidationFailure reports field-level validation errors.
func ValidationFailure(c *fiber.Ctx, errs any) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		Status:   false,
		Message:  "Validation errors occurred.",
		Response: "fail",
		Errors:   errs,
	})
}

// FailureFromError maps a rich error onto the failure envelope. The
// HTTP status comes from the error's code when present, otherwise
// from its category. Unclassified errors collapse to a 500 so internal
// details never leak to the client.
func FailureFromError(c *fiber.Ctx, err error) error {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return Failure(c, fiber.StatusInternalServerError, "An error occurred")
	}

	status := rich.Code
	if status < 400 || status > 599 {
		status = statusForCategory(rich.Category)
	}

	message := rich.Message
	if status == fiber.StatusInternalServerError {
		message = "An error occurred"
	}

	return Failure(c, status, message)
}

func statusForCategory(cat goerrors.Category) int {
	switch cat {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

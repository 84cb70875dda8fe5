package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

// response is the envelope of every JSON body this API writes.
type response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id"`
}

func writeSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: middleware.RequestIDFromCtx(c),
	})
}

// writeError writes a standardized JSON error response without leaking internal errors.
// code is a machine-readable short error code (e.g. "INVALID_ID", "NOT_FOUND").
func writeError(c *fiber.Ctx, status int, code, message string, data any) error {
	return c.Status(status).JSON(response{
		Success:   false,
		Message:   message,
		Data:      data,
		Error:     code,
		RequestID: middleware.RequestIDFromCtx(c),
	})
}

type errorKind struct {
	target error
	status int
	code   string
}

var serviceErrorKinds = []errorKind{
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrAccessDenied, fiber.StatusForbidden, "ACCESS_DENIED"},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{service.ErrValidation, fiber.StatusBadRequest, "VALIDATION_ERROR"},
	{service.ErrStorage, fiber.StatusBadGateway, "STORAGE_FAILURE"},
	{service.ErrRangeNotSatisfiable, fiber.StatusRequestedRangeNotSatisfiable, "RANGE_NOT_SATISFIABLE"},
}

// kindMessage strips the "<kind>: " prefix added by the service layer.
func kindMessage(err, kind error) string {
	msg := strings.TrimPrefix(err.Error(), kind.Error()+": ")
	if msg == "" {
		return kind.Error()
	}
	return msg
}

// ErrorHandler returns a Fiber global error handler that renders every error in the envelope.
// Service errors map to their status codes; anything unknown is logged and hidden behind a 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return writeFiberError(c, fe)
		}

		for _, k := range serviceErrorKinds {
			if !errors.Is(err, k.target) {
				continue
			}
			switch k.target {
			case service.ErrConflict:
				var ce *service.ConflictError
				if errors.As(err, &ce) {
					return writeError(c, k.status, k.code, ce.Message, ce.Details)
				}
			case service.ErrRangeNotSatisfiable:
				var re *service.RangeError
				if errors.As(err, &re) {
					c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", re.Size))
				}
				return writeError(c, k.status, k.code, "requested range not satisfiable", nil)
			case service.ErrStorage:
				log.Error("storage_failure",
					zap.String("request_id", middleware.RequestIDFromCtx(c)),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
				return writeError(c, k.status, k.code, "storage backend failure", nil)
			}
			return writeError(c, k.status, k.code, kindMessage(err, k.target), nil)
		}

		log.Error("unhandled_error",
			zap.String("request_id", middleware.RequestIDFromCtx(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func writeFiberError(c *fiber.Ctx, fe *fiber.Error) error {
	switch fe.Code {
	case fiber.StatusBadRequest:
		return writeError(c, fe.Code, "BAD_REQUEST", "bad request", nil)
	case fiber.StatusUnauthorized:
		return writeError(c, fe.Code, "UNAUTHORIZED", fe.Message, nil)
	case fiber.StatusNotFound:
		return writeError(c, fe.Code, "NOT_FOUND", "resource not found", nil)
	case fiber.StatusMethodNotAllowed:
		return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	case fiber.StatusRequestEntityTooLarge:
		return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large", nil)
	case fiber.StatusServiceUnavailable:
		return writeError(c, fe.Code, "SERVICE_UNAVAILABLE", "dependency unavailable", nil)
	default:
		if fe.Code < fiber.StatusInternalServerError {
			return writeError(c, fe.Code, "BAD_REQUEST", fe.Message, nil)
		}
		return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error", nil)
	}
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoext/internal/codec/ogc"
	"github.com/samirrijal/geoext/internal/codec/wire"
	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/index"
	"github.com/samirrijal/geoext/internal/core/usecases"
	"github.com/samirrijal/geoext/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errInvalidBody is returned when a request body cannot be decoded.
var errInvalidBody = errors.New("invalid request body")

// errMissingParam is returned when a required query parameter is absent.
var errMissingParam = errors.New("missing required parameter")

// badInput lists the sentinels that mean the caller sent something unusable.
var badInput = []error{
	errInvalidBody,
	errMissingParam,
	domain.ErrSRIDMismatch,
	domain.ErrTooFewPoints,
	domain.ErrRingNotClosed,
	domain.ErrDimensionMismatch,
	domain.ErrUnknownKind,
	domain.ErrKindMismatch,
	domain.ErrInvalidFeature,
	usecases.ErrUnsupportedFormat,
	index.ErrUnknownStrategy,
	wire.ErrShortBuffer,
	wire.ErrTrailingBytes,
	ogc.ErrUnsupported,
}

// isBadInput reports whether err was caused by the request rather than the server.
func isBadInput(err error) bool {
	var syntaxErr *wkt.SyntaxError
	var hexErr *wire.HexError
	if errors.As(err, &syntaxErr) || errors.As(err, &hexErr) {
		return true
	}
	for _, target := range badInput {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError maps a service error onto the JSON error envelope.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case isBadInput(err):
		return errBadRequest(c, err.Error())
	}
	logging.FromContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}

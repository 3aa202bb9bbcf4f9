package faults

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrUnavailable   = errors.New("unavailable")
)

// Canonical is a fault with an explicit HTTP status and structured details.
// API handlers return it when the response shape matters; everything else is
// classified through the sentinel markers.
type Canonical struct {
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// NewCanonical builds a canonical fault with the provided status and message.
func NewCanonical(status int, message string) *Canonical {
	return &Canonical{Status: status, Message: message}
}

// WithDetail attaches a single detail field and returns the fault for chaining.
func (c *Canonical) WithDetail(key string, value any) *Canonical {
	if c.Details == nil {
		c.Details = make(map[string]any)
	}
	c.Details[key] = value
	return c
}

// WithCause records the underlying error.
func (c *Canonical) WithCause(err error) *Canonical {
	c.Err = err
	return c
}

func (c *Canonical) Error() string {
	if c == nil {
		return "<nil>"
	}
	if c.Err != nil {
		return fmt.Sprintf("%s: %v", c.Message, c.Err)
	}
	return c.Message
}

func (c *Canonical) Unwrap() error {
	if c == nil {
		return nil
	}
	return c.Err
}

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a fault to the status code the API should respond with.
func HTTPStatus(err error) int {
	var canonical *Canonical
	if errors.As(err, &canonical) && canonical.Status != 0 {
		return canonical.Status
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Details extracts structured details from a fault chain, or nil.
func Details(err error) map[string]any {
	var canonical *Canonical
	if errors.As(err, &canonical) {
		return canonical.Details
	}
	return nil
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

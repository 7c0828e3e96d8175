// Package context carries request-scoped values between the delivery and service layers.
package context

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is read from incoming requests and echoed on every response.
const HeaderXRequestID = "X-Request-Id"

// ctxKey keys the values stored on a context.Context by this package.
type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// Keys of the values stored on an echo.Context.
const (
	echoRequestIDKey = "devroots.request_id"
	echoIdentityKey  = "devroots.identity"
)

// GetRequestID returns the id assigned by the request-id middleware. Handlers
// reached without it get a fresh id so error envelopes are still correlatable.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(echoRequestIDKey).(string); ok && id != "" {
		return id
	}

	return uuid.NewString()
}

func SetRequestID(c echo.Context, requestID string) {
	c.Set(echoRequestIDKey, requestID)
}

// GetRequestIDFromContext returns "" outside an HTTP request, e.g. in the startup hooks.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

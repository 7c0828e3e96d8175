package context

import (
	"github.com/labstack/echo/v4"

	"devroots/internal/domain/service"
)

// SetIdentity stores the verified requester on the echo.Context.
func SetIdentity(c echo.Context, identity service.Identity) {
	c.Set(echoIdentityKey, identity)
}

// GetIdentity returns the verified requester, if the request was authenticated.
func GetIdentity(c echo.Context) (service.Identity, bool) {
	identity, ok := c.Get(echoIdentityKey).(service.Identity)

	return identity, ok
}

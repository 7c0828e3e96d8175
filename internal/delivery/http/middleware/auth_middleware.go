package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	deliverycontext "devroots/internal/delivery/context"
	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/service"
)

const bearerScheme = "bearer"

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer token and stores the requester identity on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrInvalidToken.WithDetails("Authorization header is missing")
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, bearerScheme) || strings.TrimSpace(tokenString) == "" {
			return domainerrors.ErrInvalidToken.WithDetails("Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			return err
		}

		deliverycontext.SetIdentity(c, service.Identity{
			Username: claims.Username,
			Email:    claims.Email,
			Roles:    entity.RolesFromStrings(claims.Roles),
		})

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the user has a specific role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(requiredRole entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := deliverycontext.GetIdentity(c)
			if !ok {
				return domainerrors.ErrInvalidToken.WithDetails("Authentication is required")
			}

			if !identity.Roles.Contains(requiredRole) {
				return domainerrors.ErrForbidden.WithDetails(fmt.Sprintf("The %s role is required", requiredRole))
			}

			return next(c)
		}
	}
}

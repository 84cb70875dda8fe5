package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// UserLocalKey is the key under which Auth stores the authenticated model.User.
const UserLocalKey = "user"

// AuthConfig configures bearer-token verification.
// Issuer is optional; when set the token's iss claim must match.
type AuthConfig struct {
	Secret []byte
	Issuer string
	Users  repository.UserDirectory
}

// Auth verifies an HS256 bearer token and resolves its subject in the user directory.
// Failures are returned as 401 fiber errors so the global error handler renders them.
func Auth(cfg AuthConfig) fiber.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *fiber.Ctx) error {
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(strings.TrimSpace(parts[1]), &claims, func(*jwt.Token) (any, error) {
			return cfg.Secret, nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if claims.Subject == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token has no subject")
		}

		user, err := cfg.Users.FindByID(c.UserContext(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "unknown user")
			}
			return fmt.Errorf("resolve token subject: %w", err)
		}

		c.Locals(UserLocalKey, *user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *fiber.Ctx) (model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(model.User)
	return u, ok
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/dmitrijs2005/ciphersafe/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "userID"
	localEmail  = "email"
)

// authRequired gates every protected route: it extracts the bearer token
// from the Authorization header, verifies it and stores the identity in the
// request locals. A missing token is 401; a bad or expired one is 403, so
// clients can tell "log in" apart from "log in again".
func (s *HTTPServer) authRequired(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return errorJSON(c, http.StatusUnauthorized, "access token required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return errorJSON(c, http.StatusUnauthorized, "access token required")
	}

	userID, email, err := auth.GetIdentityFromToken(strings.TrimSpace(parts[1]), s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return errorJSON(c, http.StatusForbidden, "session expired, please login again")
		}
		return errorJSON(c, http.StatusForbidden, "invalid token")
	}

	c.Locals(localUserID, userID)
	c.Locals(localEmail, email)

	return c.Next()
}

package middleware

import (
	"log"
	"strings"

	"tweeps/internal/models"
	"tweeps/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	userLocal  = "user"
	tokenLocal = "token"
)

// AuthRequired is a Fiber middleware that validates the bearer token and
// resolves the authenticated user. The user is stored in the request locals
// and passed explicitly into service calls, rather than looked up from
// ambient state.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}
		tokenString := parts[1]

		claims, err := authService.ValidateToken(c.UserContext(), tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		userID, _ := claims["user_id"].(string)
		user, err := authService.GetUser(userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(userLocal, user)
		c.Locals(tokenLocal, tokenString)
		return c.Next()
	}
}

// AdminRequired gates a route group to admin users. Must run after
// AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin privileges required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user resolved by AuthRequired.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	return user
}

// CurrentToken returns the raw bearer token from the request.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenLocal).(string)
	return token
}

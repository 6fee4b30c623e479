package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"awesomearcade/internal/models"
)

// Session keys holding the signed-in profile.
const (
	sessionUserSub     = "user_sub"
	sessionUserEmail   = "user_email"
	sessionUserName    = "user_name"
	sessionUserPicture = "user_picture"
)

// AuthMiddleware loads the signed-in profile from the session.
type AuthMiddleware struct{}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{}
}

// RequireAuth ensures the user is authenticated, redirecting to the login
// flow if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user := UserFromSession(c)
	if user == nil {
		return c.Redirect().To("/auth/login?redirect=" + url.QueryEscape(c.OriginalURL()))
	}
	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := UserFromSession(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

// StoreUser keeps the signed-in profile in the session.
func StoreUser(c fiber.Ctx, user *models.User) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	sess.Set(sessionUserSub, user.Sub)
	sess.Set(sessionUserEmail, user.Email)
	sess.Set(sessionUserName, user.Name)
	sess.Set(sessionUserPicture, user.Picture)
	return nil
}

// UserFromSession rebuilds the profile stored by the login callback, or
// returns nil when nobody is signed in.
func UserFromSession(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	sub, _ := sess.Get(sessionUserSub).(string)
	if sub == "" {
		return nil
	}
	email, _ := sess.Get(sessionUserEmail).(string)
	name, _ := sess.Get(sessionUserName).(string)
	picture, _ := sess.Get(sessionUserPicture).(string)
	return &models.User{Sub: sub, Email: email, Name: name, Picture: picture}
}

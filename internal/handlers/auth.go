package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"awesomearcade/internal/config"
	"awesomearcade/internal/middleware"
	"awesomearcade/internal/models"
)

// Session keys used while a login is in progress.
const (
	sessionLoginState    = "login_state"
	sessionLoginVerifier = "login_verifier"
	sessionLoginReturn   = "login_return"
)

// AuthHandler signs visitors in with an external OIDC provider. Only the
// display profile is kept, in the session; nothing about the user is stored
// server side.
type AuthHandler struct {
	provider *oidc.Provider
	oauth2   oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewAuthHandler discovers the provider configured by cfg.
func NewAuthHandler(ctx context.Context, cfg *config.Config) (*AuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		provider: provider,
		oauth2: oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
	}, nil
}

// Login starts an authorization code flow with PKCE and remembers where to
// send the visitor afterwards.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	sess.Set(sessionLoginState, state)
	sess.Set(sessionLoginVerifier, verifier)
	sess.Set(sessionLoginReturn, returnPath(c.Query("redirect", "")))

	return c.Redirect().To(h.oauth2.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)))
}

// Callback finishes the login and stores the profile in the session.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	state, _ := sess.Get(sessionLoginState).(string)
	verifier, _ := sess.Get(sessionLoginVerifier).(string)
	back, _ := sess.Get(sessionLoginReturn).(string)
	sess.Delete(sessionLoginState)
	sess.Delete(sessionLoginVerifier)
	sess.Delete(sessionLoginReturn)

	if state == "" || state != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}

	token, err := h.oauth2.Exchange(c.Context(), c.Query("code"), oauth2.VerifierOption(verifier))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}
	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	var profile profileClaims
	if err := idToken.Claims(&profile); err != nil {
		return err
	}
	// Some providers leave email and picture out of the ID token.
	if info, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(token)); err == nil {
		var extra profileClaims
		if err := info.Claims(&extra); err == nil {
			profile = profile.merge(extra)
		}
	} else {
		slog.Warn("failed to fetch userinfo", "error", err)
	}

	user, err := profile.user()
	if err != nil {
		return err
	}
	if err := middleware.StoreUser(c, user); err != nil {
		return err
	}
	return c.Redirect().To(returnPath(back))
}

// Logout clears the session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		sess.Destroy()
	}
	return c.Redirect().To("/")
}

// Me returns the signed-in profile as JSON.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	return c.JSON(c.Locals("user"))
}

type profileClaims struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// merge overlays the non-empty fields of other.
func (p profileClaims) merge(other profileClaims) profileClaims {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&p.Sub, other.Sub},
		{&p.Email, other.Email},
		{&p.Name, other.Name},
		{&p.Picture, other.Picture},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return p
}

func (p profileClaims) user() (*models.User, error) {
	if p.Sub == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "missing subject claim")
	}
	return &models.User{Sub: p.Sub, Email: p.Email, Name: p.Name, Picture: p.Picture}, nil
}

// returnPath keeps post-login redirects on this site.
func returnPath(p string) string {
	if strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\") {
		return p
	}
	return "/"
}

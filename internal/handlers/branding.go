package handlers

import (
	"github.com/gofiber/fiber/v3"

	"awesomearcade/internal/config"
)

// ThemeCookie holds the visitor's chosen color theme.
const ThemeCookie = "themeUsed"

// BrandingData contains site branding information for templates.
type BrandingData struct {
	SiteTitle       string
	SiteDescription string
	Keywords        string
	NavLinks        []config.NavLinkConfig
	Theme           string
	CommentsRepo    string
	CommentsLabel   string
	CommentsTheme   string
	Environment     string
}

// GetBrandingData returns branding data for the request.
func GetBrandingData(c fiber.Ctx, cfg *config.Config, site *config.SiteConfig) BrandingData {
	theme := Theme(c)
	b := BrandingData{
		SiteTitle:       cfg.SiteTitle + cfg.TitleSuffix(),
		SiteDescription: cfg.SiteDescription,
		Theme:           theme,
		Environment:     cfg.Env,
	}
	if site != nil {
		b.Keywords = site.Keywords
		b.NavLinks = site.NavLinks
		b.CommentsRepo = site.Comments.Repo
		b.CommentsLabel = site.Comments.Label
		b.CommentsTheme = site.Comments.Theme(theme)
	}
	return b
}

// MergeBranding adds branding data and the page title to a fiber.Map for
// template rendering.
func MergeBranding(c fiber.Ctx, data fiber.Map, page string, cfg *config.Config, site *config.SiteConfig) fiber.Map {
	branding := GetBrandingData(c, cfg, site)
	data["Title"] = cfg.PageTitle(page)
	data["Page"] = page
	data["SiteTitle"] = branding.SiteTitle
	data["SiteDescription"] = branding.SiteDescription
	data["Keywords"] = branding.Keywords
	data["NavLinks"] = branding.NavLinks
	data["Theme"] = branding.Theme
	data["CommentsRepo"] = branding.CommentsRepo
	data["CommentsLabel"] = branding.CommentsLabel
	data["CommentsTheme"] = branding.CommentsTheme
	data["Environment"] = branding.Environment
	if _, ok := data["User"]; !ok {
		data["User"] = c.Locals("user")
	}
	return data
}

// Theme returns "dark" or "light" from the theme cookie. Light is the default.
func Theme(c fiber.Ctx) string {
	if c.Cookies(ThemeCookie) == "dark" {
		return "dark"
	}
	return "light"
}

// SetTheme stores the visitor's theme choice.
func SetTheme(c fiber.Ctx) error {
	theme := c.FormValue("theme")
	if theme != "dark" && theme != "light" {
		return fiber.NewError(fiber.StatusBadRequest, "theme must be dark or light")
	}
	c.Cookie(&fiber.Cookie{
		Name:     ThemeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: "Lax",
	})
	if c.Get("HX-Request") == "true" {
		c.Set("HX-Refresh", "true")
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect().Back("/")
}

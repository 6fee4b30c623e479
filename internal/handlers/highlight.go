package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v3"

	"awesomearcade/internal/renderer"
)

// Code highlighting styles per site theme.
const (
	lightHighlightStyle = "github"
	darkHighlightStyle  = "github-dark"
)

// HighlightCSS serves the stylesheet for highlighted code in descriptions,
// matching the visitor's theme.
func HighlightCSS(c fiber.Ctx) error {
	style := lightHighlightStyle
	if Theme(c) == "dark" {
		style = darkHighlightStyle
	}
	var buf bytes.Buffer
	if err := renderer.WriteCSS(&buf, style); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/css; charset=utf-8")
	c.Set(fiber.HeaderVary, "Cookie")
	return c.Send(buf.Bytes())
}

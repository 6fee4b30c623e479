// Package renderer turns catalog description markup into the HTML shown on
// cards, with syntax-highlighted code blocks.
package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	htmlRenderer "github.com/yuin/goldmark/renderer/html"
)

const classPrefix = "hl-"

// Renderer transforms markdown descriptions into HTML fragments.
type Renderer struct {
	md goldmark.Markdown
}

// New constructs a renderer with GitHub-flavored markdown and class-based
// syntax highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.ClassPrefix(classPrefix),
				),
			),
		),
		goldmark.WithRendererOptions(
			// Descriptions are curated and may embed inline HTML.
			htmlRenderer.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// Render converts a markdown description into an HTML fragment. External
// links are rewritten to open in a new tab.
func (r *Renderer) Render(src string) (string, error) {
	src = dedent(src)
	if src == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return rewriteLinks(buf.String())
}

// rewriteLinks marks absolute links as external.
func rewriteLinks(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse rendered html: %w", err)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			s.SetAttr("target", "_blank")
			s.SetAttr("rel", "noopener noreferrer")
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize rendered html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// PlainText strips markup from a rendered fragment.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// WriteCSS writes the stylesheet for highlighted code blocks using the named
// chroma style, falling back to the default style for unknown names.
func WriteCSS(w io.Writer, styleName string) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.ClassPrefix(classPrefix))
	return formatter.WriteCSS(w, styles.Get(styleName))
}

// dedent removes the common leading indentation that XML nesting adds to
// multi-line descriptions, so markdown does not treat them as code blocks.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\r\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.TrimSpace(s)
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

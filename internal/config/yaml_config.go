package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SiteConfig represents the structure of the site.yaml file.
// Page chrome that's easier to manage in YAML than env vars.
type SiteConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
	NavLinks   []NavLinkConfig  `yaml:"nav_links"`
	Comments   CommentsConfig   `yaml:"comments"`
	Keywords   string           `yaml:"keywords"`
}

// CategoryConfig adds a blurb shown above a catalog category.
type CategoryConfig struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// NavLinkConfig defines a navbar entry.
type NavLinkConfig struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// CommentsConfig configures the GitHub-issue-backed comment widget.
type CommentsConfig struct {
	Repo       string `yaml:"repo"`        // owner/name of the issues repo
	Label      string `yaml:"label"`       // issue label applied to comment threads
	DarkTheme  string `yaml:"dark_theme"`  // widget theme when the site is dark
	LightTheme string `yaml:"light_theme"` // widget theme when the site is light
}

// Theme returns the widget theme for a site theme ("dark" or "light").
func (c CommentsConfig) Theme(siteTheme string) string {
	if siteTheme == "dark" {
		return c.DarkTheme
	}
	return c.LightTheme
}

// LoadSiteConfig loads the YAML site configuration file.
// Returns defaults without error if the file doesn't exist.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	cfg := &SiteConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Comments.Repo == "" {
		cfg.Comments.Repo = "UnsignedArduino/Awesome-Arcade-Blog-Comments"
	}
	if cfg.Comments.Label == "" {
		cfg.Comments.Label = "blog comments"
	}
	if cfg.Comments.DarkTheme == "" {
		cfg.Comments.DarkTheme = "github-dark"
	}
	if cfg.Comments.LightTheme == "" {
		cfg.Comments.LightTheme = "github-light"
	}

	return cfg, nil
}

// CategoryDescription returns the blurb for a category label.
func (c *SiteConfig) CategoryDescription(label string) string {
	if c == nil {
		return ""
	}
	for _, cat := range c.Categories {
		if cat.Label == label {
			return cat.Description
		}
	}
	return ""
}

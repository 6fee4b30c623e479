package validation

import (
	"net/url"
	"regexp"
	"strings"
)

// RepoPattern defines the valid repo identifier format: an optional owner
// segment followed by a name, each made of alphanumerics, dots, hyphens and
// underscores (e.g. "riknoll/arcade-carnival" or "foo-ext").
var RepoPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+(/[a-zA-Z0-9._-]+)?$`)

// ValidateRepo checks if a repo identifier matches the allowed pattern.
func ValidateRepo(repo string) (bool, string) {
	if repo == "" {
		return false, "repo is required"
	}
	if len(repo) > 200 {
		return false, "repo must be 200 characters or less"
	}
	if strings.Contains(repo, "..") || !RepoPattern.MatchString(repo) {
		return false, "repo must be an owner/name identifier"
	}
	return true, ""
}

// NormalizeRepo trims surrounding whitespace from a repo identifier.
func NormalizeRepo(repo string) string {
	return strings.TrimSpace(repo)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

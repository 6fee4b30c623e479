package validation

import "testing"

func TestValidateRepo(t *testing.T) {
	tests := []struct {
		name string
		repo string
		want bool
	}{
		{"owner and name", "riknoll/arcade-carnival", true},
		{"bare name", "foo-ext", true},
		{"dots and underscores", "jwunderl/pxt_tile.util", true},
		{"empty string", "", false},
		{"too long", "a/" + string(make([]byte, 200)), false},
		{"two slashes", "a/b/c", false},
		{"leading slash", "/a", false},
		{"trailing slash", "a/", false},
		{"path traversal attempt", "../etc/passwd", false},
		{"double dot", "owner/..", false},
		{"contains space", "my repo", false},
		{"query chars", "a?b=c", false},
		{"unicode", "日本語", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ValidateRepo(tt.repo)
			if got != tt.want {
				t.Errorf("ValidateRepo(%q) = %v, want %v", tt.repo, got, tt.want)
			}
		})
	}
}

func TestNormalizeRepo(t *testing.T) {
	if got := NormalizeRepo("  foo/bar \n"); got != "foo/bar" {
		t.Errorf("NormalizeRepo() = %q", got)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"valid https", "https://example.com", true, ""},
		{"valid http", "http://example.com", true, ""},
		{"valid with path", "https://example.com/path/to/page", true, ""},
		{"valid with query", "https://example.com?foo=bar", true, ""},
		{"valid with port", "https://example.com:8080", true, ""},
		{"empty string", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"data scheme", "data:text/html,<script>alert(1)</script>", false, "URL must use http:// or https:// scheme"},
		{"vbscript scheme", "vbscript:msgbox", false, "URL must use http:// or https:// scheme"},
		{"file scheme", "file:///etc/passwd", false, "URL must use http:// or https:// scheme"},
		{"ftp scheme", "ftp://example.com", false, "URL must use http:// or https:// scheme"},
		{"no scheme", "example.com", false, "URL must use http:// or https:// scheme"},
		{"relative url", "/path/to/page", false, "URL must use http:// or https:// scheme"},
		{"uppercase scheme", "HTTPS://example.com", true, ""},
		{"mixed case scheme", "HtTpS://example.com", true, ""},
		{"scheme only", "https://", false, "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			if valid != tt.valid {
				t.Errorf("ValidateURL(%q) valid = %v, want %v", tt.url, valid, tt.valid)
			}
			if !valid && msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}

package routing

import "testing"

func TestMakeSlug(t *testing.T) {
	tests := map[string]string{
		"Contact Us!":     "contact-us",
		"  --sign__up-- ": "sign-up",
		"checkout":        "checkout",
		"Ünïcode only":    "n-code-only",
		"!!!":             "item",
		"Sign Up 2":       "sign-up-2",
	}
	for in, want := range tests {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildPath(t *testing.T) {
	tests := []struct{ parent, slug, want string }{
		{"", "", "/"},
		{"/forms/", "login", "/forms/login"},
		{"", "/forms", "/forms"},
		{"forms", "", "/forms"},
		{"//forms//", "/login/", "/forms/login"},
	}
	for _, tt := range tests {
		if got := BuildPath(tt.parent, tt.slug); got != tt.want {
			t.Errorf("BuildPath(%q, %q) = %q, want %q", tt.parent, tt.slug, got, tt.want)
		}
	}
}

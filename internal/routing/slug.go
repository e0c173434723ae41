// Package routing builds URL path segments for forms and components.
//
// A form ID is valid only when MakeSlug leaves it unchanged, since it is
// used verbatim as the {id} segment of /forms/{id}.
package routing

import (
	"strings"
)

// MakeSlug lower-cases s and joins its runs of ASCII letters and digits
// with single hyphens.  Everything else is a separator.  Text with no
// usable characters becomes "item".
func MakeSlug(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	if len(words) == 0 {
		return "item"
	}
	return strings.Join(words, "-")
}

// BuildPath returns "/parent/name" with surplus slashes removed.  Empty
// parts are skipped; two empty parts give "/".
func BuildPath(parent, name string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{parent, name} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return "/" + strings.Join(parts, "/")
}

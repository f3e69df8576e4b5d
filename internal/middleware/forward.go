package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ForwardLegacyPaths rewrites requests whose first path segment is one of
// roots onto prefix, so clients configured without the "/api" base keep
// working. Anything already under prefix, and any other path, is untouched.
func ForwardLegacyPaths(prefix string, roots ...string) fiber.Handler {
	known := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		known[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return c.Next()
		}

		first := strings.TrimPrefix(path, "/")
		if i := strings.IndexByte(first, '/'); i >= 0 {
			first = first[:i]
		}
		if _, ok := known[first]; ok {
			c.Path(prefix + path)
		}
		return c.Next()
	}
}

// Package viewport evaluates width media queries on the server. The viewport
// width comes from client hints, falling back to a guess from the user agent.
package viewport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Widths used when the client sends no hint.
const (
	MobileFallbackWidth = 375
	DesktopDefaultWidth = 1280
)

// Breakpoints.
const (
	MobileQuery = "(max-width: 768px)"
	TabletQuery = "(max-width: 1024px)"
)

var (
	queryPattern  = regexp.MustCompile(`^\(\s*(max|min)-width\s*:\s*(\d+)(?:px)?\s*\)$`)
	mobileAgentRE = regexp.MustCompile(`(?i)mobi|android|iphone|ipod|blackberry|opera mini|iemobile`)
)

// Query is a parsed (max-width: N) or (min-width: N) query.
type Query struct {
	Max   bool
	Width int
}

// ParseQuery parses a single width query. Widths are in CSS pixels.
func ParseQuery(raw string) (Query, error) {
	m := queryPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Query{}, fmt.Errorf("unsupported media query %q", raw)
	}
	w, err := strconv.Atoi(m[2])
	if err != nil {
		return Query{}, fmt.Errorf("media query width %q: %w", m[2], err)
	}
	return Query{Max: m[1] == "max", Width: w}, nil
}

// Matches reports whether width satisfies q.
func (q Query) Matches(width int) bool {
	if q.Max {
		return width <= q.Width
	}
	return width >= q.Width
}

// Matcher answers queries for one request's viewport.
type Matcher struct {
	Width int
}

// FromHeaders picks the viewport width from Sec-CH-Viewport-Width, then
// Viewport-Width, then the user agent.
func FromHeaders(get func(string) string) Matcher {
	for _, h := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		if w, err := strconv.Atoi(strings.TrimSpace(get(h))); err == nil && w > 0 {
			return Matcher{Width: w}
		}
	}
	if mobileAgentRE.MatchString(get(fiber.HeaderUserAgent)) {
		return Matcher{Width: MobileFallbackWidth}
	}
	return Matcher{Width: DesktopDefaultWidth}
}

// FromCtx builds a Matcher from a fiber request.
func FromCtx(c *fiber.Ctx) Matcher {
	return FromHeaders(func(key string) string { return c.Get(key) })
}

// Matches evaluates a query. Unparseable queries never match.
func (m Matcher) Matches(query string) bool {
	q, err := ParseQuery(query)
	if err != nil {
		return false
	}
	return q.Matches(m.Width)
}

// IsMobile reports whether the viewport is at most 768px wide.
func (m Matcher) IsMobile() bool {
	return m.Matches(MobileQuery)
}

// IsTablet reports whether the viewport is at most 1024px wide.
func (m Matcher) IsTablet() bool {
	return m.Matches(TabletQuery)
}

// AcceptCH asks browsers to send the viewport hint on later requests.
func AcceptCH() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Accept-CH", "Sec-CH-Viewport-Width, Viewport-Width")
		c.Vary("Sec-CH-Viewport-Width", "Viewport-Width")
		return c.Next()
	}
}

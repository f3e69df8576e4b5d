package blob

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler serves registered blobs at URLPrefix + ":id". Unknown or revoked
// ids are 404.
func (r *Registry) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		obj, ok := r.Get(strings.TrimPrefix(c.Params("id"), "/"))
		if !ok {
			return fiber.ErrNotFound
		}
		c.Set(fiber.HeaderContentType, obj.ContentType)
		c.Set(fiber.HeaderContentDisposition, "inline")
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Send(obj.Data)
	}
}

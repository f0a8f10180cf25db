package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ReqIDKey is the locals key the request id travels under. The same id names
// the websocket room carrying the request's generation progress events.
const ReqIDKey = "quiz_request_id"

// RequestID assigns every request a uuid and echoes it in X-Request-Id. An
// inbound id is honored only when it is itself a uuid; the id doubles as a
// room name, so free-form values are replaced rather than trusted.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(fiber.HeaderXRequestID)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Locals(ReqIDKey, rid)
		c.Set(fiber.HeaderXRequestID, rid)
		return c.Next()
	}
}

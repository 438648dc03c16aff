package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// RequestLogger logs every incoming request with timestamp, method, path,
// status and latency. The relay's delivery problems are debugged from this
// log, so it stays on unconditionally.
func RequestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${method} ${path} ${status} ${latency}\n",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

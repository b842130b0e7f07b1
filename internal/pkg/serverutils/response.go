package serverutils

import "github.com/gofiber/fiber/v2"

// Error codes carried in the notification envelope. Clients branch on
// these, so the strings are part of the wire contract.
const (
	ErrCodeClient = "CLIENT_ERROR"
	ErrCodeServer = "SERVER_ERROR"
)

func Notification(message string) fiber.Map {
	return fiber.Map{"message": message}
}

// NotificationWith merges extra payload fields into a success envelope.
func NotificationWith(message string, extra fiber.Map) fiber.Map {
	body := fiber.Map{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func ErrorNotification(message, code string) fiber.Map {
	return fiber.Map{
		"message": message,
		"error":   code,
	}
}

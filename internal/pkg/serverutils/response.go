package serverutils

import "github.com/gofiber/fiber/v2"

// SuccessResponse builds the {"error": false, "message": ...} envelope with
// payload keys merged at the top level.
func SuccessResponse(message string, payload fiber.Map) fiber.Map {
	body := fiber.Map{
		"error":   false,
		"message": message,
	}
	for k, v := range payload {
		if k == "error" || k == "message" {
			continue
		}
		body[k] = v
	}
	return body
}

func ErrorResponse(message string) fiber.Map {
	return fiber.Map{
		"error":   true,
		"message": message,
	}
}

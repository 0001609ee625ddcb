package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "productcatalog/internal/log"
)

const genericError = "something went wrong"

// ErrorHandler logs the failure and answers without internal details: JSON for
// the API, the notfound page otherwise.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})

	msg := genericError
	if code < fiber.StatusInternalServerError && ferr != nil {
		msg = ferr.Message
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": "Something went wrong. Please try again."}); rerr != nil {
		return c.Status(code).SendString("Something went wrong. Please try again.")
	}
	return nil
}

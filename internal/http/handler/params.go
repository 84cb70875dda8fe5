package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
)

const defaultPageLimit = 10

func requester(c *fiber.Ctx) (model.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return model.User{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return u, nil
}

// uuidParam returns the named path parameter, or an INVALID_ID response when it is not a UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool, error) {
	id := c.Params(name)
	if !isUUID(id) {
		return "", false, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format", nil)
	}
	return id, true, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// page parses limit and offset, writing INVALID_LIMIT or INVALID_OFFSET on bad input.
func page(c *fiber.Ctx) (limit, offset int, ok bool, err error) {
	limit, convErr := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageLimit)))
	if convErr != nil || limit < 0 {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit", nil)
	}
	offset, convErr = strconv.Atoi(c.Query("offset", "0"))
	if convErr != nil || offset < 0 {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset", nil)
	}
	return limit, offset, true, nil
}

func documentFilter(c *fiber.Ctx) model.DocumentFilter {
	return model.DocumentFilter{
		Search:      c.Query("search"),
		ContentType: c.Query("content_type"),
		Visibility:  model.Visibility(c.Query("visibility")),
	}
}

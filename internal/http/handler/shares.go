package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

type shareRequest struct {
	UserIDs []string `json:"user_ids"`
}

// ShareDocument grants read access to every listed user. Per-user failures are reported, not raised.
func ShareDocument(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		var body shareRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		}
		res, err := svc.Share(c.UserContext(), user, id, body.UserIDs)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "document shared", res)
	}
}

func ListDocumentShares(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		grants, err := svc.ListByDocument(c.UserContext(), user, id)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "shares retrieved", grants)
	}
}

func RevokeShare(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		if err := svc.Revoke(c.UserContext(), user, id); err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "share revoked", nil)
	}
}

// ListReceivedShares pages the documents other users shared with the caller.
func ListReceivedShares(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.ListSharedWithMe(c.UserContext(), user, limit, offset)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "shares retrieved", res)
	}
}

func ListSentShares(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.ListSharedByMe(c.UserContext(), user, limit, offset)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "shares retrieved", res)
	}
}

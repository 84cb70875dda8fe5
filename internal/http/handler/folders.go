package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

type createFolderRequest struct {
	Name string `json:"name"`
}

type folderDocumentRequest struct {
	DocumentID string `json:"document_id"`
}

func CreateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		var body createFolderRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		}
		f, err := svc.Create(c.UserContext(), user, body.Name)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusCreated, "folder created", f)
	}
}

// ListFolders pages the caller's folders, optionally filtered by ?status=Pending|Completed.
func ListFolders(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.List(c.UserContext(), user, model.FolderStatus(c.Query("status")), limit, offset)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "folders retrieved", res)
	}
}

func GetFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		f, err := svc.Get(c.UserContext(), user, id)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "folder retrieved", f)
	}
}

func UpdateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		var body model.FolderUpdate
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		}
		f, err := svc.Update(c.UserContext(), user, id, body)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "folder updated", f)
	}
}

// DeleteFolder removes a folder. A non-empty folder needs delete_documents=true
// to cascade into its documents, or force=true to only drop the memberships.
func DeleteFolder(svc service.DeletionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		res, err := svc.DeleteFolder(c.UserContext(), user, id, c.QueryBool("delete_documents"), c.QueryBool("force"))
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "folder deleted", res)
	}
}

func ListFolderDocuments(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.ListDocuments(c.UserContext(), user, id, limit, offset)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "documents retrieved", res)
	}
}

func AddFolderDocument(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		var body folderDocumentRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		}
		if !isUUID(body.DocumentID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format", nil)
		}
		if err := svc.AddDocument(c.UserContext(), user, id, body.DocumentID); err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "document added to folder", nil)
	}
}

func RemoveFolderDocument(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		docID, ok, err := uuidParam(c, "documentId")
		if !ok {
			return err
		}
		if err := svc.RemoveDocument(c.UserContext(), user, id, docID); err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "document removed from folder", nil)
	}
}

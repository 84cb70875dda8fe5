package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

// UploadDocument godoc
// @Summary      Upload a document
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file        formData  file    true   "document content"
// @Param        title       formData  string  false  "title, defaults to the file name"
// @Param        visibility  formData  string  false  "private, shared or public"
// @Param        folder_id   formData  string  false  "folder to file the document into"
// @Success      201  {object}  response
// @Failure      400  {object}  response
// @Failure      502  {object}  response
// @Security     BearerAuth
// @Router       /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required", nil)
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file", nil)
		}
		defer f.Close()

		ct := fh.Header.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), user, service.UploadInput{
			Reader:       f,
			Title:        c.FormValue("title"),
			OriginalName: fh.Filename,
			ContentType:  ct,
			Size:         fh.Size,
			Visibility:   model.Visibility(c.FormValue("visibility")),
			FolderID:     c.FormValue("folder_id"),
		})
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusCreated, "document uploaded", doc)
	}
}

// ListDocuments godoc
// @Summary      List the caller's own documents
// @Tags         documents
// @Produce      json
// @Param        search        query  string  false  "title substring"
// @Param        content_type  query  string  false  "content type substring"
// @Param        visibility    query  string  false  "visibility"
// @Param        limit         query  int     false  "page size"  default(10)
// @Param        offset        query  int     false  "page offset"  default(0)
// @Success      200  {object}  response
// @Security     BearerAuth
// @Router       /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.ListMine(c.UserContext(), user, documentFilter(c), limit, offset)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "documents retrieved", res)
	}
}

// ListAccessibleDocuments godoc
// @Summary      List every document the caller may read
// @Tags         documents
// @Produce      json
// @Param        search        query  string  false  "title substring"
// @Param        content_type  query  string  false  "content type substring"
// @Param        visibility    query  string  false  "visibility"
// @Param        limit         query  int     false  "page size"  default(10)
// @Param        offset        query  int     false  "page offset"  default(0)
// @Success      200  {object}  response
// @Security     BearerAuth
// @Router       /documents/accessible [get]
func ListAccessibleDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.ListAccessible(c.UserContext(), user, documentFilter(c), limit, offset)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "documents retrieved", res)
	}
}

// GetDocument godoc
// @Summary      Document metadata
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "document id"
// @Success      200  {object}  response
// @Failure      403  {object}  response
// @Failure      404  {object}  response
// @Security     BearerAuth
// @Router       /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		doc, err := svc.Get(c.UserContext(), user, id)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "document retrieved", doc)
	}
}

// UpdateDocument godoc
// @Summary      Change title or visibility
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "document id"
// @Param        body  body  model.DocumentUpdate  true  "fields to change"
// @Success      200  {object}  response
// @Security     BearerAuth
// @Router       /documents/{id} [patch]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		var body model.DocumentUpdate
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		}
		doc, err := svc.Update(c.UserContext(), user, id, body)
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "document updated", doc)
	}
}

// DeleteDocument godoc
// @Summary      Delete a document with its shares and folder memberships
// @Tags         documents
// @Produce      json
// @Param        id     path   string  true   "document id"
// @Param        force  query  bool    false  "delete even when shared"
// @Success      200  {object}  response
// @Failure      409  {object}  response
// @Security     BearerAuth
// @Router       /documents/{id} [delete]
func DeleteDocument(svc service.DeletionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		res, err := svc.DeleteDocument(c.UserContext(), user, id, c.QueryBool("force"))
		if err != nil {
			return err
		}
		return writeSuccess(c, fiber.StatusOK, "document deleted", res)
	}
}

package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docvault/internal/metrics"
	"docvault/internal/service"
)

// Services bundles the use cases the HTTP layer dispatches to.
type Services struct {
	Documents service.DocumentService
	Folders   service.FolderService
	Shares    service.ShareService
	Deletion  service.DeletionService
	Stream    service.StreamService
}

// Options carries the infrastructure RegisterRoutes needs besides the services.
// A nil Gatherer leaves /metrics unregistered.
type Options struct {
	DB       *sql.DB
	Auth     fiber.Handler
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything except health and metrics goes through opts.Auth.
func RegisterRoutes(app *fiber.App, svc Services, opts Options) {
	app.Get("/health", HealthCheck(opts.DB))
	app.Get("/healthz", LivenessProbe())

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := opts.Auth
	if auth == nil {
		auth = func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusUnauthorized, "authentication required") }
	}

	app.Post("/documents", auth, UploadDocument(svc.Documents))
	app.Get("/documents", auth, ListDocuments(svc.Documents))
	app.Get("/documents/accessible", auth, ListAccessibleDocuments(svc.Documents))
	app.Get("/documents/:id", auth, GetDocument(svc.Documents))
	app.Patch("/documents/:id", auth, UpdateDocument(svc.Documents))
	app.Delete("/documents/:id", auth, DeleteDocument(svc.Deletion))
	app.Post("/documents/:id/share", auth, ShareDocument(svc.Shares))
	app.Get("/documents/:id/shares", auth, ListDocumentShares(svc.Shares))

	app.Get("/shares/received", auth, ListReceivedShares(svc.Shares))
	app.Get("/shares/sent", auth, ListSentShares(svc.Shares))
	app.Delete("/shares/:id", auth, RevokeShare(svc.Shares))

	app.Post("/folders", auth, CreateFolder(svc.Folders))
	app.Get("/folders", auth, ListFolders(svc.Folders))
	app.Get("/folders/:id", auth, GetFolder(svc.Folders))
	app.Patch("/folders/:id", auth, UpdateFolder(svc.Folders))
	app.Delete("/folders/:id", auth, DeleteFolder(svc.Deletion))
	app.Get("/folders/:id/documents", auth, ListFolderDocuments(svc.Folders))
	app.Post("/folders/:id/documents", auth, AddFolderDocument(svc.Folders))
	app.Delete("/folders/:id/documents/:documentId", auth, RemoveFolderDocument(svc.Folders))

	app.Get("/files/download/:id", auth, DownloadFile(svc.Stream, opts.Metrics))
	app.Get("/files/stream/:id", auth, StreamFile(svc.Stream, opts.Metrics))
}

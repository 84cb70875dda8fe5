package handler

import (
	"io"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/metrics"
	"docvault/internal/service"
)

// DownloadFile sends the whole blob as an attachment named after the original upload.
func DownloadFile(svc service.StreamService, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}
		res, err := svc.Open(c.UserContext(), user, id, "")
		if err != nil {
			return err
		}

		c.Attachment(fileName(res))
		c.Set(fiber.HeaderContentType, res.Document.ContentType)
		return c.SendStream(countBytes(res.Body, m, metrics.ModeDownload), int(res.ContentLength()))
	}
}

// StreamFile serves the blob inline and honours a single Range header.
func StreamFile(svc service.StreamService, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := requester(c)
		if err != nil {
			return err
		}
		id, ok, err := uuidParam(c, "id")
		if !ok {
			return err
		}

		c.Set(fiber.HeaderAcceptRanges, "bytes")
		res, err := svc.Open(c.UserContext(), user, id, c.Get(fiber.HeaderRange))
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, res.Document.ContentType)
		c.Set(fiber.HeaderContentDisposition, `inline; filename="`+quoteFileName(fileName(res))+`"`)
		mode := metrics.ModeStream
		if res.Range != nil {
			mode = metrics.ModeRange
			c.Status(fiber.StatusPartialContent)
			c.Set(fiber.HeaderContentRange, res.ContentRange())
		}
		return c.SendStream(countBytes(res.Body, m, mode), int(res.ContentLength()))
	}
}

func fileName(res *service.StreamResult) string {
	if res.Document.OriginalName != "" {
		return res.Document.OriginalName
	}
	return res.Document.Title
}

var fileNameQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", "")

func quoteFileName(name string) string {
	return fileNameQuoter.Replace(name)
}

// countedBody records the bytes actually written once the server closes the stream.
type countedBody struct {
	rc   io.ReadCloser
	n    int64
	once sync.Once
	done func(int64)
}

func countBytes(rc io.ReadCloser, m *metrics.Metrics, mode string) io.ReadCloser {
	return &countedBody{rc: rc, done: func(n int64) { m.AddBytesServed(mode, n) }}
}

func (b *countedBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	b.n += int64(n)
	return n, err
}

func (b *countedBody) Close() error {
	b.once.Do(func() { b.done(b.n) })
	return b.rc.Close()
}

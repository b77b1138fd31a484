// Package api exposes the ingestion pipeline over HTTP.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cardwise/statement-ingest/internal/storage"
)

// maxUploadBytes caps statement uploads at 32MB.
const maxUploadBytes = 32 << 20

// Server wires the ingestion pipeline into HTTP handlers. The store is
// optional; without it results are returned but not retrievable later.
type Server struct {
	store     storage.Store
	enableOCR bool
}

// New returns a Server backed by the given result cache. store may be
// nil. enableOCR turns on the scanned-document fallback for uploads.
func New(store storage.Store, enableOCR bool) *Server {
	return &Server{store: store, enableOCR: enableOCR}
}

// App builds the fiber application: body limit, panic recovery, CORS,
// and the API routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "statement-ingest",
		BodyLimit: maxUploadBytes,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	app.Post("/api/convert", s.HandleConvert)
	app.Get("/api/results/:id", s.HandleResult)
	app.Get("/api/health", s.HandleHealth)
	return app
}

// Listen serves the API on addr until the process exits.
func (s *Server) Listen(addr string) error {
	return s.App().Listen(addr)
}

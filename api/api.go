package api

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/views"
)

// multipart overhead allowed on top of the largest accepted file
const formOverhead = 1 << 20

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

// NewEngine parses the embedded templates with the helper funcs every page uses
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(views.Templates(), ".html")
	engine.AddFuncMap(handlers.TemplateFuncs())
	return engine
}

// NewAPIServer builds the fiber app; maxUpload is the largest accepted file in bytes
func NewAPIServer(listenAddress string, maxUpload int64) *APIServer {
	app := fiber.New(fiber.Config{
		AppName:      "EduSphere",
		Views:        NewEngine(),
		BodyLimit:    int(maxUpload) + formOverhead,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   views.Static(),
		MaxAge: 3600,
	}))

	return &APIServer{
		app:           app,
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Println("Starting EduSphere server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

package router

import (
	"github.com/Tarun62689/gdrive-backend/internal/config"
	"github.com/Tarun62689/gdrive-backend/internal/handlers"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Drive    *handlers.DriveHandler
	Folders  *handlers.FoldersHandler
	Files    *handlers.FilesHandler
	Shares   *handlers.SharesHandler
	Activity *handlers.ActivityHandler
}

// New builds the fiber app with the global middleware chain and every route.
func New(cfg config.ServerConfig, h Handlers, auth *middleware.AuthMiddleware) *fiber.App {
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 100
	}

	app := fiber.New(fiber.Config{BodyLimit: bodyLimit * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.AllowedOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	Register(app, h, auth)
	return app
}

func Register(app *fiber.App, h Handlers, auth *middleware.AuthMiddleware) {
	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", h.Auth.Signup)
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Post("/logout", auth.RequireAuth, h.Auth.Logout)
	authRoutes.Get("/me", auth.RequireAuth, h.Auth.Me)

	driveRoutes := api.Group("/drive", auth.RequireAuth)
	driveRoutes.Get("/", h.Drive.UserData)
	driveRoutes.Get("/my-drive", h.Drive.MyDrive)
	driveRoutes.Get("/trash", h.Drive.Trash)

	FolderRoutes(api.Group("/folders", auth.RequireAuth), h.Folders)
	FileRoutes(api.Group("/files", auth.RequireAuth), h.Files)

	api.Get("/search", auth.RequireAuth, h.Drive.Search)

	shareRoutes := api.Group("/shares", auth.RequireAuth)
	shareRoutes.Post("/", h.Shares.Create)
	shareRoutes.Get("/", h.Shares.List)
	shareRoutes.Delete("/:id", h.Shares.Delete)

	api.Get("/public/shares/:token", auth.OptionalAuth, h.Shares.Public)

	api.Get("/activity", auth.RequireAuth, h.Activity.List)
}

func FolderRoutes(folders fiber.Router, h *handlers.FoldersHandler) {
	folders.Post("/", h.Create)
	folders.Get("/tree", h.Tree)
	folders.Get("/:id", h.Get)
	folders.Put("/:id", h.Update)
	folders.Post("/:id/trash", h.Trash)
	folders.Post("/:id/restore", h.Restore)
	folders.Delete("/:id", h.Delete)
}

func FileRoutes(files fiber.Router, h *handlers.FilesHandler) {
	files.Post("/upload", h.Upload)
	files.Get("/", h.List)
	files.Get("/:id/signed-url", h.SignedURL)
	files.Get("/:id", h.Get)
	files.Put("/:id", h.Update)
	files.Post("/:id/trash", h.Trash)
	files.Post("/:id/restore", h.Restore)
	files.Delete("/:id", h.Delete)
}

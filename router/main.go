package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/config"
	"github.com/r56149203/EduSphere/database"
	"github.com/r56149203/EduSphere/handlers"
	admin_handlers "github.com/r56149203/EduSphere/handlers/admin"
	ajax_handlers "github.com/r56149203/EduSphere/handlers/ajax"
	auth_handlers "github.com/r56149203/EduSphere/handlers/auth"
	page_handlers "github.com/r56149203/EduSphere/handlers/pages"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/services/storage"
	"github.com/r56149203/EduSphere/utils"
	"github.com/r56149203/EduSphere/utils/auth"
	"github.com/r56149203/EduSphere/utils/cache"
	"github.com/r56149203/EduSphere/utils/middleware"
)

// Dependencies are the long-lived collaborators built at startup
type Dependencies struct {
	Env *config.EnviornmentVariable
	// Files holds uploaded PDFs
	Files storage.FileStore
	// Cache enables brute force protection; nil disables it
	Cache    *cache.RedisCache
	Activity *utils.ActivityLogger
	// Quiet disables the access log
	Quiet bool
}

// SetupRoutes mounts every route. The returned AuditLogger must be waited on
// at shutdown so pending audit writes finish.
func SetupRoutes(app *fiber.App, store database.Storage, deps Dependencies) *middleware.AuditLogger {
	env := deps.Env
	db := store.GetDB()

	// Initialize JWT manager with config
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: env.JWT_SECRET,
		Expiry: time.Duration(env.SESSION_TTL_HOURS) * time.Hour,
		Issuer: env.JWT_ISSUER,
	})

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db, env.SecureCookies())
	auditLogger := middleware.NewAuditLogger(db)

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if deps.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.Cache)
	}

	// Services
	maxUpload := int64(env.MAX_UPLOAD_MB) << 20
	taxonomyService := services.NewTaxonomyService(db)
	uploadService := services.NewUploadService(deps.Files, maxUpload)
	resourceService := services.NewResourceService(db, uploadService, deps.Activity, env.PAGE_SIZE)
	userService := services.NewUserService(db, auth.NewBlacklistService(db), deps.Activity)
	dashboardService := services.NewDashboardService(db, resourceService, userService)
	auditService := services.NewAuditService(db)

	// Handlers
	pageHandler := page_handlers.NewPagesHandler(taxonomyService, resourceService, deps.Files)
	authHandler := auth_handlers.NewAuthHandler(userService, authMiddleware, bruteForceProtection, deps.Activity)
	ajaxHandler := ajax_handlers.NewAjaxHandler(taxonomyService)
	adminHandler := admin_handlers.NewAdminHandler(taxonomyService, resourceService, userService, dashboardService, auditService, env.MAX_UPLOAD_MB)

	// Apply security middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: env.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   time.Minute,
		SecureCookies:     env.SecureCookies(),
		DisableAccessLog:  deps.Quiet,
	})

	// Health check endpoints (public)
	app.Get("/ping", handlers.HandlePing)
	app.Get("/health", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	app.Use(authMiddleware.Load())

	// Browse pages (public)
	app.Get("/", pageHandler.Index)
	app.Get("/class", pageHandler.Class)
	app.Get("/subject", pageHandler.Subject)
	app.Get("/chapter", pageHandler.Chapter)
	app.Get("/pdf-viewer", pageHandler.PDFViewer)
	app.Get("/uploads/"+services.PDFDir+"/:name", pageHandler.ServePDF)
	app.Get("/error", pageHandler.Error)

	// Auth
	app.Get("/login", auth_handlers.RedirectIfLoggedIn, authHandler.LoginForm)
	app.Post("/login", auth_handlers.RedirectIfLoggedIn, bruteForceProtection.CheckAndRecordAttempt(authHandler.Locked), authHandler.Login)
	app.Get("/register", auth_handlers.RedirectIfLoggedIn, authHandler.RegisterForm)
	app.Post("/register", auth_handlers.RedirectIfLoggedIn, authHandler.Register)
	app.Get("/logout", authHandler.Logout)

	profile := app.Group("/profile", authMiddleware.RequireLogin())
	profile.Get("/", authHandler.Profile)
	profile.Post("/", authHandler.UpdateProfile)

	// Cascading selects (login required)
	ajax := app.Group("/ajax", authMiddleware.RequireLoginJSON())
	ajax.Get("/subjects", ajaxHandler.Subjects)
	ajax.Get("/chapters", ajaxHandler.Chapters)

	// Admin only
	admin := app.Group("/admin", authMiddleware.RequireAdmin())
	admin.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/admin/dashboard") })
	admin.Get("/dashboard", adminHandler.Dashboard)

	admin.Get("/resource/add", adminHandler.AddResourceForm)
	admin.Post("/resource/add", auditLogger.AdminAuditLog("resource_create", "resources"), adminHandler.AddResource)
	admin.Get("/resource/edit", adminHandler.EditResourceForm)
	admin.Post("/resource/edit", auditLogger.AdminAuditLog("resource_update", "resources"), adminHandler.EditResource)
	admin.Get("/resource/delete", auditLogger.AdminAuditLog("resource_delete", "resources"), adminHandler.DeleteResource)
	admin.Get("/content", adminHandler.ListContent)

	admin.Get("/users", whenQuery("delete", auditLogger.AdminAuditLog("user_delete", "users")), adminHandler.ListUsers)
	admin.Post("/users", auditLogger.AdminAuditLog("user_update", "users"), adminHandler.UpdateUsers)

	admin.Get("/audit", adminHandler.ListAuditLogs)

	return auditLogger
}

// whenQuery runs next only for requests carrying the query parameter key
func whenQuery(key string, next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query(key) == "" {
			return c.Next()
		}
		return next(c)
	}
}

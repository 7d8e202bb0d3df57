package routes

import (
	"lifecycle/internal/api/handlers"
	"lifecycle/internal/middleware"
	"lifecycle/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                 *fiber.App
	UserHandler         handlers.UserHandler
	ProductHandler      handlers.ProductHandler
	CategoryHandler     handlers.CategoryHandler
	ProfileHandler      handlers.ProfileHandler
	FeedbackHandler     handlers.FeedbackHandler
	BarcodeHandler      handlers.BarcodeHandler
	NotificationHandler handlers.NotificationHandler
	PreferenceHandler   handlers.PreferenceHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Auth()
	c.Products()
	c.Categories()
	c.Account()
	c.Feedback()
	c.Barcodes()
	c.Notifications()
	c.Preferences()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/v1/auth")
	{
		auth.Post("/register", c.UserHandler.Register)
		auth.Post("/login", c.UserHandler.Login)
		auth.Post("/forgot", c.UserHandler.ForgotPassword)
		auth.Post("/reset", c.UserHandler.ResetPassword)
		auth.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
	}
}

func (c *Config) Products() {
	products := c.App.Group("/api/v1/products", c.Middleware.AuthMiddleware(c.JWTService))

	// fixed paths first so they are not captured by /:id
	products.Get("/dashboard", c.ProductHandler.GetDashboard)
	products.Get("/alerts", c.ProductHandler.GetAlerts)
	products.Get("/export", c.ProductHandler.ExportInventory)
	products.Post("/bulk-delete", c.ProductHandler.DeleteProducts)

	products.Get("", c.ProductHandler.ListProducts)
	products.Post("", c.ProductHandler.CreateProduct)
	products.Get("/:id", c.ProductHandler.GetProduct)
	products.Put("/:id", c.ProductHandler.UpdateProduct)
	products.Delete("/:id", c.ProductHandler.DeleteProduct)

	products.Post("/:id/batches", c.ProductHandler.CreateBatch)
	products.Put("/:id/batches/:batchId", c.ProductHandler.UpdateBatch)
	products.Delete("/:id/batches/:batchId", c.ProductHandler.DeleteBatch)
}

func (c *Config) Categories() {
	categories := c.App.Group("/api/v1/categories", c.Middleware.AuthMiddleware(c.JWTService))
	categories.Get("", c.CategoryHandler.GetCategories)
	categories.Post("", c.CategoryHandler.CreateCategory)
	categories.Put("/:id", c.CategoryHandler.UpdateCategory)
	categories.Delete("/:id", c.CategoryHandler.DeleteCategory)
}

func (c *Config) Account() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	c.App.Get("/api/v1/profile", auth, c.ProfileHandler.GetProfile)
	c.App.Put("/api/v1/profile", auth, c.ProfileHandler.UpdateProfile)
	c.App.Get("/api/v1/settings", auth, c.ProfileHandler.GetSettings)
	c.App.Put("/api/v1/settings", auth, c.ProfileHandler.UpdateSettings)
}

func (c *Config) Feedback() {
	feedback := c.App.Group("/api/v1/feedback", c.Middleware.AuthMiddleware(c.JWTService))
	feedback.Get("", c.FeedbackHandler.GetFeedbackList)
	feedback.Post("", c.FeedbackHandler.SubmitFeedback)
	feedback.Get("/upvotes", c.FeedbackHandler.GetMyUpvotes)
	feedback.Post("/:id/upvote", c.FeedbackHandler.AddUpvote)
	feedback.Delete("/:id/upvote", c.FeedbackHandler.RemoveUpvote)
}

func (c *Config) Barcodes() {
	barcodes := c.App.Group("/api/v1/barcodes", c.Middleware.AuthMiddleware(c.JWTService))
	barcodes.Get("/:code", c.BarcodeHandler.Lookup)
}

func (c *Config) Notifications() {
	notifications := c.App.Group("/api/v1/notifications", c.Middleware.AuthMiddleware(c.JWTService))
	notifications.Get("", c.NotificationHandler.ListNotifications)
	notifications.Post("/reschedule", c.NotificationHandler.Reschedule)
	notifications.Post("/test", c.NotificationHandler.SendTest)
	notifications.Post("/alert", c.NotificationHandler.ScheduleExpiryAlert)
}

func (c *Config) Preferences() {
	preferences := c.App.Group("/api/v1/preferences", c.Middleware.AuthMiddleware(c.JWTService))
	preferences.Get("/theme", c.PreferenceHandler.GetTheme)
	preferences.Put("/theme", c.PreferenceHandler.SetTheme)
	preferences.Get("/onboarding", c.PreferenceHandler.GetOnboarding)
	preferences.Put("/onboarding", c.PreferenceHandler.SetOnboarding)
}

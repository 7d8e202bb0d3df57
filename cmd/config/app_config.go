package config

import (
	"os"
	"strings"
	"time"

	"lifecycle/internal/api/handlers"
	"lifecycle/internal/api/routes"
	"lifecycle/internal/middleware"
	"lifecycle/internal/utils"
	"lifecycle/internal/utils/mailing"
	"lifecycle/internal/utils/storage"
	"lifecycle/pkg/barcode"
	"lifecycle/pkg/category"
	"lifecycle/pkg/feedback"
	"lifecycle/pkg/jwt"
	"lifecycle/pkg/notification"
	"lifecycle/pkg/preference"
	"lifecycle/pkg/product"
	"lifecycle/pkg/profile"
	"lifecycle/pkg/report"
	"lifecycle/pkg/settings"
	"lifecycle/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "create logs directory")
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, errors.Wrap(err, "open access log")
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   utils.GetConfigOr("APP_TIMEZONE", "UTC"),
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	mailer := mailing.NewMailer(mailing.LoadMailConfig())

	// Repository
	userRepository := user.NewUserRepository(db)
	profileRepository := profile.NewProfileRepository(db)
	settingsRepository := settings.NewSettingsRepository(db)
	productRepository := product.NewProductRepository(db)
	categoryRepository := category.NewCategoryRepository(db)
	feedbackRepository := feedback.NewFeedbackRepository(db)
	barcodeRepository := barcode.NewBarcodeRepository(db)
	preferenceRepository := preference.NewPreferenceRepository(db)
	notificationRepository := notification.NewNotificationRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	userService := user.NewUserService(userRepository, jwtService, mailer, utils.GetConfig("APP_URL"))
	profileService := profile.NewProfileService(profileRepository)
	preferenceService := preference.NewPreferenceService(preferenceRepository)
	notificationService := notification.NewNotificationService(
		notificationRepository,
		notification.NewScheduler(notificationRepository),
		notification.NewHandleStore(preferenceService),
		notification.NewAdvisoryLocker(db),
		productRepository,
		settingsRepository,
	)
	settingsService := settings.NewSettingsService(settingsRepository, notificationService)
	productService := product.NewProductService(productRepository, notificationService)
	categoryService := category.NewCategoryService(categoryRepository, productRepository)
	feedbackService := feedback.NewFeedbackService(feedbackRepository)
	barcodeService := barcode.NewBarcodeService(
		barcodeRepository,
		barcode.NewCatalogClient(
			utils.GetConfigOr("CATALOG_URL", barcode.DefaultCatalogURL),
			utils.GetConfigSeconds("CATALOG_TIMEOUT_SECONDS", 10*time.Second),
		),
	)
	reportService := report.NewReportService(productRepository, s3)

	// Handler
	routesConfig := routes.Config{
		App:                 app,
		UserHandler:         handlers.NewUserHandler(userService, validator),
		ProductHandler:      handlers.NewProductHandler(productService, reportService, validator),
		CategoryHandler:     handlers.NewCategoryHandler(categoryService, validator),
		ProfileHandler:      handlers.NewProfileHandler(profileService, settingsService, validator),
		FeedbackHandler:     handlers.NewFeedbackHandler(feedbackService, validator),
		BarcodeHandler:      handlers.NewBarcodeHandler(barcodeService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService, validator),
		PreferenceHandler:   handlers.NewPreferenceHandler(preferenceService, validator),
		Middleware:          middlewares,
		JWTService:          jwtService,
	}
	routesConfig.Setup()
	return app, nil
}

// NewDispatcher builds the background notification dispatcher. The sender
// is chosen by NOTIFICATION_SENDER: "mail" delivers through SMTP, anything
// else only logs.
func NewDispatcher(db *gorm.DB) *notification.Dispatcher {
	notificationRepository := notification.NewNotificationRepository(db)

	var sender notification.Sender
	switch strings.ToLower(utils.GetConfigOr("NOTIFICATION_SENDER", notification.SenderLog)) {
	case notification.SenderMail:
		sender = notification.NewMailSender(
			user.NewUserRepository(db),
			settings.NewSettingsRepository(db),
			report.NewReportService(product.NewProductRepository(db), storage.NewAwsS3()),
			mailing.NewMailer(mailing.LoadMailConfig()),
		)
	default:
		sender = notification.NewLogSender()
	}
	logrus.WithField("sender", utils.GetConfigOr("NOTIFICATION_SENDER", notification.SenderLog)).Info("notification sender selected")

	return notification.NewDispatcher(
		notificationRepository,
		sender,
		utils.GetConfigSeconds("NOTIFICATION_POLL_SECONDS", 30*time.Second),
	)
}

package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"storefront-auth/config"
	adminController "storefront-auth/controllers/admin"
	authController "storefront-auth/controllers/auth"
	otpController "storefront-auth/controllers/otp"
	mailerService "storefront-auth/httpServices/mailer"
	smsService "storefront-auth/httpServices/sms"
	"storefront-auth/logger"
	"storefront-auth/middleware"
	accountService "storefront-auth/services/account"
	messagingService "storefront-auth/services/messaging"
	otpService "storefront-auth/services/otp"
	recoveryService "storefront-auth/services/recovery"
	sessionService "storefront-auth/services/session"
)

// SetupRoutes wires services, controllers and route groups.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	asyncLogger := logger.NewAsyncLogger(db)

	accounts := accountService.NewService(db, cfg.BcryptCost)
	recovery := recoveryService.NewService(db, cfg.ResetTokenLifetime)
	sessions := sessionService.NewService(cfg.JWTSecret, cfg.SessionLifetime)
	messenger := messagingService.NewRouter(
		mailerService.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom),
		smsService.NewSMSClient(cfg.SMSGatewayURL, cfg.SMSAPIKey),
	)
	otpSvc := otpService.NewService(
		otpService.NewStore(db),
		accounts,
		messenger,
		recovery,
		otpService.Policy{Lifetime: cfg.OTPLifetime, CodeLength: cfg.OTPCodeLength},
	)

	otpCtrl := otpController.NewOTPController(otpSvc, sessions, asyncLogger)
	authCtrl := authController.NewAuthController(accounts, recovery, sessions, asyncLogger)
	adminCtrl := adminController.NewAdminController(otpSvc)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")

	otpGroup := api.Group("/otp")
	otpGroup.Post("/issue", otpCtrl.Issue)
	otpGroup.Post("/verify", otpCtrl.Verify)

	api.Post("/auth/reset-password", authCtrl.ResetPassword)

	/*=============================================================================
	| Session Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(middleware.RequireSession(sessions))
	authGroup.Get("/profile", authCtrl.Profile)
	authGroup.Post("/logout", authCtrl.Logout)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	adminGroup := api.Group("/admin").
		Use(middleware.RequireSession(sessions)).
		Use(middleware.RequireAdmin())
	adminGroup.Get("/otp/status", adminCtrl.OTPStatus)
	adminGroup.Post("/otp/purge", adminCtrl.PurgeExpired)
}

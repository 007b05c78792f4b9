package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"

	"connectcargo/app/config"
	"connectcargo/app/database"
	"connectcargo/app/handlers"
	"connectcargo/app/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	store := session.New()
	storage := cfg.Storage()

	app := fiber.New()

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(healthcheck.New())

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		c.Locals("store", store)
		c.Locals("storage", storage)
		return c.Next()
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/verify-email/:token", handlers.VerifyEmail)
	auth.Post("/resend-verification", handlers.ResendVerification)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)
	auth.Post("/change-password", middleware.AuthMiddleware, handlers.ChangePassword)
	auth.Get("/check-email", handlers.CheckEmail)

	user := api.Group("/user", middleware.AuthMiddleware)
	user.Get("/me", handlers.GetCurrentUser)
	user.Put("/me", handlers.UpdateCurrentUser)
	user.Post("/me/picture", handlers.UpdateProfilePicture)
	user.Get("/me/picture", handlers.GetProfilePicture)

	company := api.Group("/company", middleware.AuthMiddleware, middleware.RequireRole(database.RoleCompany))
	company.Get("/dashboard", handlers.CompanyDashboard)
	company.Get("/profile", handlers.GetCompanyProfile)
	company.Put("/profile", handlers.UpdateCompanyProfile)
	company.Post("/shipments", handlers.CreateShipment)
	company.Get("/shipments", handlers.ListCompanyShipments)
	company.Delete("/shipments/:shipment_id", handlers.CancelShipment)
	company.Get("/shipments/:shipment_id/quotes", handlers.ListShipmentQuotes)
	company.Post("/quotes/:quote_id/accept", handlers.AcceptQuote)
	company.Post("/shipments/:shipment_id/review", handlers.CompanyReviewCarrier)
	company.Get("/shipments/:shipment_id/payment", handlers.GetShipmentPayment)
	company.Post("/shipments/:shipment_id/payment", handlers.CompanyPayShipment)
	company.Get("/payments", handlers.ListCompanyPayments)

	carrier := api.Group("/carrier", middleware.AuthMiddleware, middleware.RequireRole(database.RoleCarrier))
	carrier.Get("/dashboard", handlers.CarrierDashboard)
	carrier.Get("/profile", handlers.GetCarrierProfile)
	carrier.Put("/profile", handlers.UpdateCarrierProfile)
	carrier.Get("/shipments", handlers.ListOpenShipments)
	carrier.Get("/assignments", handlers.ListCarrierAssignments)
	carrier.Post("/shipments/:shipment_id/quotes", handlers.SubmitQuote)
	carrier.Post("/shipments/:shipment_id/tracking", handlers.AddTrackingEvent)
	carrier.Post("/shipments/:shipment_id/delivered", handlers.MarkShipmentDelivered)
	carrier.Post("/shipments/:shipment_id/review", handlers.CarrierReviewCompany)
	carrier.Get("/payments", handlers.ListCarrierPayments)
	carrier.Get("/vehicles", handlers.ListVehicles)
	carrier.Post("/vehicles", handlers.CreateVehicle)
	carrier.Put("/vehicles/:vehicle_id", handlers.UpdateVehicle)
	carrier.Delete("/vehicles/:vehicle_id", handlers.DeleteVehicle)

	shipments := api.Group("/shipments", middleware.AuthMiddleware, middleware.RequireActive)
	shipments.Get("/:shipment_id", handlers.GetShipment)
	shipments.Get("/:shipment_id/tracking", handlers.ListTrackingEvents)
	shipments.Get("/:shipment_id/reviews", handlers.ListShipmentReviews)

	management := api.Group("/v1/management", middleware.AdminKeyMiddleware)
	management.Get("/user", handlers.AdminListUsers)
	management.Get("/user/:user_id", handlers.AdminGetUser)
	management.Post("/user/:user_id/status", handlers.AdminSetUserStatus)
	management.Post("/user/:user_id/unlock", handlers.AdminUnlockUser)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}

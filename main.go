package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"waste-rewards-system/handlers"
	"waste-rewards-system/middleware"
	"waste-rewards-system/models"
	"waste-rewards-system/services"
	"waste-rewards-system/utils"
	"waste-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20MB — waste photos, nothing bigger
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitPhotoStore(); err != nil {
		log.Fatal("failed to initialize photo store:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.CollectedWaste{},
		&models.Transaction{},
		&models.Reward{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	classifier, err := services.NewGeminiClassifier(context.Background())
	if err != nil {
		log.Fatal("failed to initialize waste classifier:", err)
	}

	treasury, err := services.NewSepoliaTreasury()
	if err != nil {
		log.Fatal("failed to initialize treasury wallet:", err)
	}

	userService := services.NewUserService(db)
	reportService := services.NewReportService(db, classifier)
	verificationService := services.NewVerificationService(db, classifier)
	ledgerService := services.NewLedgerService(db)
	challengeService := services.NewChallengeService(db)
	redemptionService := services.NewRedemptionService(db, treasury)
	notificationService := services.NewNotificationService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	treasuryMonitor := workers.NewTreasuryMonitor(treasury)
	treasuryMonitor.Start(ctx)

	challengeService.StartExpirySweeper()

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix for user routes
	handlers.SetupReportRoutes(app, reportService)
	handlers.SetupTaskRoutes(app, reportService, verificationService)
	handlers.SetupRewardRoutes(app, ledgerService, redemptionService)
	handlers.SetupChallengeRoutes(app, challengeService)
	handlers.SetupUserRoutes(app, userService, notificationService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Treasury monitor running (every 5m)")
	log.Println("✅ Challenge expiry sweeper running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}

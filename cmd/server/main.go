package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/api/handlers"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/api/middleware"
	job "github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/jobs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/queue"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/repository"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Service-Secret",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	platformPostRepo := repository.NewPlatformPostRepository(db)
	accountRepo := repository.NewConnectedAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	voiceProfileRepo := repository.NewVoiceProfileRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	tokenService := service.NewTokenService(*cfg, accountRepo)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo)
	accountService := service.NewAccountService(*cfg, accountRepo)
	postService := service.NewPostService(db, postRepo, platformPostRepo, mediaAssetRepo, accountRepo)
	instagramService := service.NewInstagramService(*cfg, accountRepo)
	tiktokService := service.NewTiktokService(*cfg, accountRepo)
	youtubeService := service.NewYoutubeService(*cfg, accountRepo, tokenService)
	aiService := service.NewAIService(*cfg, voiceProfileRepo)
	voiceProfileService := service.NewVoiceProfileService(voiceProfileRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	publishers := map[string]service.PlatformPublisher{
		models.PlatformYoutube:   youtubeService,
		models.PlatformInstagram: instagramService,
		models.PlatformTiktok:    tiktokService,
	}
	processor := queue.NewProcessor(postRepo, platformPostRepo, accountRepo, mediaAssetRepo, mediaService, publishers)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	platform := handlers.NewPlatformHandler(accountService, instagramService, tiktokService, youtubeService, *cfg)
	app.Get("/auth/:platform", platform.ConnectAccount)
	app.Get("/auth/:platform/callback", platform.CallbackHandler)

	queueTrigger := handlers.NewQueueHandler(*cfg, processor)
	app.Post("/internal/queue/process", queueTrigger.ProcessQueue)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/update", post.UpdatePost)
	api.Post("/posts/remove", post.RemovePost)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.UploadMedia)
	api.Get("/media", media.ListMedia)
	api.Post("/media/remove", media.RemoveMedia)

	ai := handlers.NewAIHandler(aiService)
	api.Post("/ai/generate", ai.Generate)

	voice := handlers.NewVoiceProfileHandler(voiceProfileService)
	api.Post("/voice_profiles/create", voice.CreateProfile)
	api.Get("/voice_profiles", voice.ListProfiles)
	api.Post("/voice_profiles/remove", voice.RemoveProfile)

	// connected accounts api routes
	api.Get("/accounts", platform.ListAccounts)
	api.Post("/accounts/remove", platform.DeleteAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(accountRepo, tokenService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h01m00s", func() {
		if _, err := processor.Run(context.Background()); err != nil {
			log.Printf("queue sweep failed: %v", err)
		}
	})
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSchedulePost, processor.HandleSchedulePostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}

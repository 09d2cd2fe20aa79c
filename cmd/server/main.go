package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saxonmahar/yoga-ai/internal/api"
	"saxonmahar/yoga-ai/internal/config"
	"saxonmahar/yoga-ai/internal/detector"
	"saxonmahar/yoga-ai/internal/mailer"
	"saxonmahar/yoga-ai/internal/repository/mongo"
	"saxonmahar/yoga-ai/internal/service"
	"saxonmahar/yoga-ai/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting YogaAI server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("FATAL: jwt.secret must be set")
	}
	if cfg.Payment.Secret == "" {
		log.Fatal("FATAL: payment.secret must be set")
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureYogaSessionIndexes(ctx, appDB.Collection("yoga_sessions"))
		mongo.EnsureDietPlanIndexes(ctx, appDB.Collection("diet_plans"))
		mongo.EnsurePoseSessionIndexes(ctx, appDB.Collection("pose_sessions"))
		mongo.EnsureLoginLogIndexes(ctx, appDB.Collection("login_logs"))
		log.Println("Index creation process completed.")
	}()

	// --- Snapshot Storage (optional) ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
		log.Println("Snapshot storage enabled.")
	} else {
		log.Println("Snapshot storage not configured; frames will not be archived.")
	}

	// --- Pose Analyzer ---
	analyzer := detector.NewScriptAnalyzer(
		cfg.Detector.Interpreter,
		cfg.Detector.Script,
		cfg.Detector.WorkDir,
		cfg.Detector.Timeout,
		cfg.Detector.MaxConcurrent,
	)

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	yogaRepo := mongo.NewMongoYogaSessionRepository(appDB)
	dietRepo := mongo.NewMongoDietPlanRepository(appDB)
	poseSessionRepo := mongo.NewMongoPoseSessionRepository(appDB)
	loginLogRepo := mongo.NewMongoLoginLogRepository(appDB)

	// --- Services ---
	otpMailer := mailer.New(cfg.Email)
	svcs := api.Services{
		Auth:      service.NewAuthService(userRepo, loginLogRepo, otpMailer, cfg.JWT.Secret, cfg.JWT.Expiration),
		Detection: service.NewDetectionService(analyzer, yogaRepo, fileStorage),
		Session:   service.NewSessionService(userRepo, yogaRepo, poseSessionRepo, fileStorage),
		Diet:      service.NewDietService(userRepo, dietRepo),
		Payment:   service.NewPaymentService(cfg.Payment, userRepo),
		Analytics: service.NewAnalyticsService(userRepo, yogaRepo),
		Admin: service.NewAdminService(userRepo, yogaRepo, dietRepo, loginLogRepo,
			func(ctx context.Context) error { return mongo.Ping(ctx, dbClient) },
			cfg.Server.Env),
	}

	// --- Router ---
	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg, svcs)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // detection requests wait on the subprocess
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

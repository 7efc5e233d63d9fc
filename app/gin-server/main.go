package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/lvji-app/lvji/config"
	"github.com/lvji-app/lvji/internal/api/handlers"
	"github.com/lvji-app/lvji/internal/api/middleware"
	"github.com/lvji-app/lvji/internal/api/routes"
	"github.com/lvji-app/lvji/internal/cache"
	"github.com/lvji-app/lvji/internal/logger"
	"github.com/lvji-app/lvji/internal/metrics"
	"github.com/lvji-app/lvji/internal/providers/llm"
	"github.com/lvji-app/lvji/internal/providers/stt"
	mongorepo "github.com/lvji-app/lvji/internal/repositories/mongo"
	pgrepo "github.com/lvji-app/lvji/internal/repositories/postgres"
	"github.com/lvji-app/lvji/internal/services"
	"github.com/lvji-app/lvji/internal/speech"
	"github.com/lvji-app/lvji/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index error")
	}
	log.Info("MongoDB connected")

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	log.Info("PostgreSQL connected")

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	ctx := context.Background()

	bucket := os.Getenv("GCS_VOICE_BUCKET")
	if bucket == "" {
		log.Fatal("GCS_VOICE_BUCKET environment variable is not set")
	}
	blobs, err := storage.NewGCSStore(ctx, bucket)
	if err != nil {
		log.WithError(err).Fatal("GCS init error")
	}
	defer blobs.Close()

	mongoDBName := os.Getenv("MONGO_DB")
	if mongoDBName == "" {
		mongoDBName = "lvji"
	}
	mongoDB := config.MongoClient.Database(mongoDBName)

	m := metrics.New()

	// Repositories
	planRepo := pgrepo.NewPlanRepo(config.PostgresDB)
	expenseRepo := pgrepo.NewExpenseRepo(config.PostgresDB)
	profileRepo := pgrepo.NewProfileRepo(config.PostgresDB)
	voiceNoteRepo := pgrepo.NewVoiceNoteRepo(config.PostgresDB)
	transcriptionRepo := mongorepo.NewTranscriptionRepo(mongoDB)

	// Providers
	var watchdog time.Duration
	if v := os.Getenv("IFLYTEK_WATCHDOG"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			watchdog = d
		} else {
			log.WithField("value", v).Warn("unparseable IFLYTEK_WATCHDOG, using default")
		}
	}
	sttProvider := stt.NewIflytekStreaming(speech.CredentialsFromEnv(), watchdog, m, log)
	llmProvider := llm.NewDashScope(os.Getenv("DASHSCOPE_API_KEY"), m, log)

	// Services
	redisCache := cache.NewRedisCache(config.RedisClient)
	planSvc := services.NewPlanService(planRepo, redisCache)
	expenseSvc := services.NewExpenseService(expenseRepo, planSvc)
	voiceSvc := services.NewVoiceService(planSvc, sttProvider, blobs, voiceNoteRepo, transcriptionRepo, config.RedisClient, m, log)
	voiceNoteSvc := services.NewVoiceNoteService(voiceNoteRepo, planSvc, blobs, log)
	profileSvc := services.NewProfileService(profileRepo)
	itinerarySvc := services.NewItineraryService(llmProvider)

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Plan:      handlers.NewPlanHandler(planSvc),
		Itinerary: handlers.NewItineraryHandler(itinerarySvc, planSvc),
		Expense:   handlers.NewExpenseHandler(expenseSvc),
		Voice:     handlers.NewVoiceHandler(voiceSvc),
		VoiceNote: handlers.NewVoiceNoteHandler(voiceNoteSvc),
		Profile:   handlers.NewProfileHandler(profileSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.WithField("port", port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	_ = config.MongoClient.Disconnect(shutdownCtx)
	_ = config.RedisClient.Close()
}

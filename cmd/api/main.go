package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-registry/internal/academic"
	"github.com/noah-isme/campus-registry/internal/config"
	"github.com/noah-isme/campus-registry/internal/database"
	"github.com/noah-isme/campus-registry/internal/flash"
	"github.com/noah-isme/campus-registry/internal/handler"
	"github.com/noah-isme/campus-registry/internal/middleware"
	"github.com/noah-isme/campus-registry/internal/repository"
	"github.com/noah-isme/campus-registry/internal/router"
	"github.com/noah-isme/campus-registry/internal/service"
	"github.com/noah-isme/campus-registry/internal/validation"
	"github.com/noah-isme/campus-registry/pkg/diskstore"
	"github.com/noah-isme/campus-registry/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.AppEnv == "production" {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	var flashStore flash.Store = flash.NewMemoryStore(cfg.FlashTTL)
	if redisClient != nil {
		defer redisClient.Close()
		flashStore = flash.NewRedisStore(redisClient, cfg.FlashTTL)
	} else {
		logger.Warn().Msg("redis not configured, flash messages are kept in memory")
	}
	flasher := flash.New(flashStore, logger)

	photoStore, err := diskstore.New(cfg.UploadDir, logger)
	if err != nil {
		log.Fatalf("failed to prepare upload directory: %v", err)
	}

	validate, translator := validation.New()
	calendar := academic.NewCalendar(cfg.CurrentAcademicYear)
	store := repository.NewStore(db)

	photoService := service.NewPhotoService(photoStore, int64(cfg.MaxUploadBytes()), logger)
	facultyService := service.NewFacultyService(store, validate, cfg.PageSize, logger)
	groupService := service.NewGroupService(store, validate, calendar, photoService, cfg.PageSize, logger)
	studentService := service.NewStudentService(store, validate, photoService, cfg.PageSize, logger)
	exportService := service.NewExportService(store, calendar, logger)
	activityService := service.NewActivityService(store, logger)

	facultyHandler := handler.NewFacultyHandler(facultyService, translator, flasher, logger)
	groupHandler := handler.NewGroupHandler(groupService, facultyService, translator, flasher, logger)
	studentHandler := handler.NewStudentHandler(studentService, groupService, translator, flasher, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:           cfg.AppName,
		ServerHeader:      cfg.AppName,
		Views:             web.Engine(),
		ViewsLayout:       web.Layout,
		PassLocalsToViews: true,
		BodyLimit:         cfg.MaxUploadBytes() + 1024*1024,
		ErrorHandler:      handler.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{Logger: &logger, FormRateLimit: cfg.FormRateLimit})
	router.Register(app, cfg, router.Dependencies{
		DB:              db,
		Flasher:         flasher,
		FacultyHandler:  facultyHandler,
		GroupHandler:    groupHandler,
		StudentHandler:  studentHandler,
		ExportHandler:   exportHandler,
		ActivityHandler: activityHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

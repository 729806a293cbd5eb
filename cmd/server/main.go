package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/starrycyq/travle/internal/bootstrap"
	"github.com/starrycyq/travle/internal/config"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	transporthttp "github.com/starrycyq/travle/internal/transport/http"
	"github.com/starrycyq/travle/internal/transport/http/dto"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	path := *configPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "../config/config.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	container, err := bootstrap.New(cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	log.Infow("database_ready", "driver", cfg.Database.Driver)

	if cfg.Scraper.RequeueOnStart {
		if _, err := container.TaskService.RequeuePending(context.Background()); err != nil {
			log.Errorw("task_requeue_failed", "error", err)
		}
	}
	if err := container.TaskService.Start(context.Background()); err != nil {
		log.Fatalf("failed to start task worker: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ErrorHandler:          globalErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	allowedOrigins := "*"
	if len(cfg.Server.AllowedOrigins) > 0 {
		allowedOrigins = strings.Join(cfg.Server.AllowedOrigins, ",")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key, " + cfg.Features.RequestIDHeader,
		AllowMethods: "GET, POST, HEAD",
	}))

	app.Use(func(c *fiber.Ctx) error {
		hdr := cfg.Features.RequestIDHeader
		var reqID string
		if hdr != "" {
			reqID = c.Get(hdr)
		}
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals(requestIDKey, reqID)
		c.SetUserContext(context.WithValue(c.UserContext(), requestIDKey, reqID))
		if hdr != "" {
			c.Set(hdr, reqID)
		}
		return c.Next()
	})

	if cfg.Features.EnableRequestLogging {
		app.Use(func(c *fiber.Ctx) error {
			start := time.Now()
			err := c.Next()
			routePath := ""
			if c.Route() != nil {
				routePath = c.Route().Path
			}
			log.Infow("http_access",
				"method", c.Method(),
				"path", c.Path(),
				"route", routePath,
				"query", string(c.Request().URI().QueryString()),
				"status", c.Response().StatusCode(),
				"latency_ms", time.Since(start).Milliseconds(),
				"client_ip", c.IP(),
				"user_agent", string(c.Request().Header.UserAgent()),
				"request_id", c.Locals(requestIDKey),
				"req_bytes", len(c.Request().Body()),
				"resp_bytes", len(c.Response().Body()),
			)
			return err
		})
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "ok",
			"worker":       container.TaskService.Running(),
			"queued_tasks": container.TaskService.QueueLength(),
			"embedding":    container.Embedder.ModelName(),
		})
	})

	transporthttp.SetupRoutes(app, transporthttp.RouterConfig{
		Tasks:       container.TaskService,
		Sessions:    container.SessionService,
		Search:      container.SearchService,
		Preferences: container.PreferenceService,
		Logger:      log,
		Config:      cfg,
	})

	go func() {
		if err := app.Listen(cfg.Server.Address()); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()
	log.Infof("server started on %s", cfg.Server.Address())

	gracefulShutdown(app, container, log)
}

func globalErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		// 404 and 408 are client noise, everything else is ours.
		if code == fiber.StatusRequestTimeout || code == fiber.StatusNotFound {
			log.Warnw("http_request_failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", c.Locals(requestIDKey),
			)
		} else {
			log.Errorw("http_request_error",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", c.Locals(requestIDKey),
			)
		}

		return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error()})
	}
}

func gracefulShutdown(app *fiber.App, container *bootstrap.Container, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	// Stops the worker before the database goes away.
	if err := container.Close(); err != nil {
		log.Errorf("failed to release resources: %v", err)
	}

	log.Info("server exited gracefully")
}

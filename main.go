package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"reelforge/config"
	"reelforge/handlers"
	"reelforge/internal/aiclient"
	"reelforge/internal/editor"
	"reelforge/internal/media"
	"reelforge/internal/orchestrator"
	"reelforge/internal/render"
	"reelforge/internal/storage"
	"reelforge/internal/store"
	"reelforge/internal/uploader"
	"reelforge/internal/worker"
	"reelforge/middleware"
)

func main() {
	config.InitLogger()

	if err := config.InitSupabase(); err != nil {
		log.Fatalf("Failed to initialize Supabase: %v", err)
	}

	projectStore, err := store.NewPostgrestStore(config.GetSupabaseURL(), config.GetSupabaseKey())
	if err != nil {
		log.Fatalf("Failed to initialize project store: %v", err)
	}

	blobs := storage.NewSupabaseStorage(config.SupabaseClient, config.GetSupabaseURL(), config.SourceBucket(), config.Log)
	services := aiclient.NewClient(config.AIServiceURL(), config.Log)
	ffmpeg := &media.FFmpeg{FFmpegPath: config.FFmpegPath(), FFprobePath: config.FFprobePath()}

	orch := &orchestrator.Orchestrator{
		Store:    projectStore,
		Services: services,
		Media: &orchestrator.FFmpegMedia{
			FFmpeg:        ffmpeg,
			HTTPClient:    http.DefaultClient,
			FrameInterval: config.FrameInterval,
			FrameWidth:    config.FrameWidth,
			FrameHeight:   config.FrameHeight,
			SampleRate:    config.AudioSampleRate,
		},
		Blobs:            blobs,
		Logger:           config.Log,
		BatchSize:        config.FrameBatchSize,
		FallbackMaxBytes: config.MaxTranscriptionFallbackBytes,
	}

	up := &uploader.Coordinator{
		Store:    projectStore,
		Blobs:    blobs,
		Prober:   ffmpeg,
		Logger:   config.Log,
		MaxBytes: config.MaxUploadBytes,
	}

	ed := &editor.Editor{Store: projectStore, Logger: config.Log}

	rc := &render.Coordinator{
		Store:        projectStore,
		Submitter:    services,
		Logger:       config.Log,
		PollInterval: config.PollInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := worker.NewDispatcher(config.WorkerCount(), config.JobQueueSize(), config.Log)
	dispatcher.Run(ctx)
	defer dispatcher.Stop()

	h := handlers.NewApplicationHandler(projectStore, up, orch, ed, rc, dispatcher, config.Log)

	app := fiber.New(fiber.Config{
		BodyLimit: config.MaxUploadBytes,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "reelforge is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")

	apiV1.Post("/projects/uploads", h.UploadProjects)
	apiV1.Get("/projects", h.ListProjects)
	apiV1.Get("/projects/:id", h.GetProject)
	apiV1.Get("/projects/:id/resume", h.ResumeProject)
	apiV1.Post("/projects/:id/retry", h.RetryProject)

	apiV1.Get("/projects/:id/segments", h.ListSegments)
	apiV1.Patch("/projects/:id/segments/:segmentId", h.UpdateSegment)
	apiV1.Post("/projects/:id/segments/save", h.SaveSegments)

	apiV1.Post("/projects/:id/render", h.SubmitRender)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		config.Log.Info("Shutdown signal received")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%d", config.Port())
	config.Log.WithField("addr", addr).Info("Starting reelforge API")
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

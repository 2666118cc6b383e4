package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lucidframe/internal/config"
	"lucidframe/internal/enhance"
	"lucidframe/internal/ffmpeg"
	"lucidframe/internal/handlers"
	"lucidframe/internal/jobs"
	"lucidframe/internal/pipeline"
	"lucidframe/internal/reclaim"
	"lucidframe/internal/version"
	"lucidframe/internal/youtube"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// .envファイルを読み込み（存在しない場合はスキップ）
	_ = godotenv.Load()

	cfg := config.Load()

	registry := jobs.NewRegistry(cfg.MaxJobs, cfg.JobTTL)
	transcoder := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	enhancer := enhance.NewRealESRGAN(cfg.RealesrganPath, cfg.ModelsDir)
	processor := pipeline.NewProcessor(registry, transcoder, enhancer, cfg.TempDir, cfg.MaxConcurrentJobs)

	videoHandler := handlers.NewVideoHandler(processor, youtube.NewClient())
	imageHandler := handlers.NewImageHandler(processor)
	jobHandler := handlers.NewJobHandler(registry, cfg.TempDir)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"app":     "lucidframe",
			"version": version.Version,
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	})

	e.POST("/video/upscale", videoHandler.Upscale)
	e.POST("/video/from-url", videoHandler.UpscaleFromURL)
	e.POST("/image/upscale", imageHandler.Upscale)
	e.GET("/jobs", jobHandler.Summary)
	e.GET("/jobs/:id", jobHandler.Get)
	e.GET("/jobs/:id/result", jobHandler.Result)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reclaimer := reclaim.NewReclaimer(registry, cfg.TempDir, cfg.ReclaimInterval, cfg.OrphanMaxAge)
	reclaimer.Start(ctx)

	go func() {
		log.Printf("Starting lucidframe v%s on port %s", version.Version, cfg.Port)
		if err := e.Start(fmt.Sprintf(":%s", cfg.Port)); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	reclaimer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

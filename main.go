package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/config"
	"github.com/viettran1502/vidscribe/db"
	"github.com/viettran1502/vidscribe/extract"
	"github.com/viettran1502/vidscribe/handlers"
	"github.com/viettran1502/vidscribe/locate"
	"github.com/viettran1502/vidscribe/logger"
	"github.com/viettran1502/vidscribe/media"
	"github.com/viettran1502/vidscribe/middleware"
	"github.com/viettran1502/vidscribe/platform"
	"github.com/viettran1502/vidscribe/transcription"
	"github.com/viettran1502/vidscribe/whisper"
	"github.com/viettran1502/vidscribe/ytdlp"
)

func main() {
	cfg := config.LoadConfig()

	if err := config.ValidateConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	if err := logger.Init(cfg.LogDir); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open result store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close result store")
		}
	}()

	runner := ytdlp.NewRunner(ytdlp.Config{
		Bin:             cfg.YTDLPPath,
		CaptionTimeout:  cfg.CaptionTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
	})
	fetcher := media.NewFetcher(runner, nil, media.Config{
		FFmpegBin:       cfg.FFmpegPath,
		DownloadTimeout: cfg.DownloadTimeout,
	})

	manager := whisper.NewManager(whisper.ScriptLoader(whisper.Config{
		PythonPath:  cfg.PythonPath,
		ScriptsPath: cfg.ScriptsPath,
		Timeout:     cfg.TranscribeTimeout,
	}))
	manager.Preload(cfg.ModelName)

	deps := extract.Deps{
		Captions:  runner,
		Meta:      runner,
		Audio:     fetcher,
		Models:    manager,
		ModelName: cfg.ModelName,
		TempRoot:  cfg.TempDir,
	}

	douyinLocator := locate.NewDouyinLocator(nil, nil, platform.DouyinID)
	pipelines := map[platform.Platform]extract.Pipeline{
		platform.YouTube:  extract.NewYouTubePipeline(deps),
		platform.TikTok:   extract.NewTikTokPipeline(deps),
		platform.Facebook: extract.NewFacebookPipeline(deps, locate.NewFacebookLocator(nil, platform.FacebookID)),
		platform.Douyin:   extract.NewDouyinPipeline(deps, douyinLocator, douyinLocator),
	}

	coordinator := transcription.NewCoordinator(transcription.Config{
		ModelName: cfg.ModelName,
		CacheTTL:  cfg.CacheTTL,
	}, pipelines, store)

	mux := http.NewServeMux()
	handlers.New(coordinator, cfg).Register(mux)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.LoggingMiddleware(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logrus.WithField("port", cfg.ServerPort).Info("Listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logrus.Info("Shutting down the server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server shutdown failed")
	}
}

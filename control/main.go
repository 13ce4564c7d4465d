package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	osync "sync"
	"syscall"
	"time"

	"github.com/sv4u/plsync/control/handlers"
	engine "github.com/sv4u/plsync/sync"
	"github.com/sv4u/plsync/sync/catalog"
	"github.com/sv4u/plsync/sync/config"
	"github.com/sv4u/plsync/sync/fetch"
	"github.com/sv4u/plsync/sync/library"
	"github.com/sv4u/plsync/sync/logging"
	"github.com/sv4u/plsync/sync/metadata"
)

var (
	// Version is set at build time via ldflags
	// Example: go build -ldflags="-X main.Version=v1.2.3"
	Version = "dev"
)

const defaultConfigPath = "config.yaml"

func main() {
	fs := flag.NewFlagSet("plsync", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	showVersion := fs.Bool("version", false, "Show version information")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	if *showVersion {
		fmt.Printf("plsync version %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal: %v", err)
	}
}

// run wires the engine together and blocks until shutdown.
func run(cfg *config.Config) error {
	log.Printf("INFO: plsync_starting version=%s playlist=%s", Version, cfg.Sync.PlaylistID)

	runLog, err := logging.NewLogger(filepath.Join(cfg.Server.LogPath, "plsync.log"), "plsync")
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer runLog.Close()
	runLog.Infof("plsync %s starting, playlist %s", Version, cfg.Sync.PlaylistID)

	spotify, err := catalog.NewClient(&catalog.Config{
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		RedirectURI:       cfg.Spotify.RedirectURI,
		RefreshToken:      cfg.Spotify.RefreshToken,
		TokenCachePath:    cfg.Spotify.TokenCachePath,
		RequestTimeout:    secondsDuration(cfg.Spotify.RequestTimeout),
		RateLimitRequests: cfg.Spotify.RateLimitRequests,
		RateLimitWindow:   secondsDuration(cfg.Spotify.RateLimitWindow),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := spotify.Authenticate(ctx); err != nil {
		// The engine cannot sync yet but the operator surface still comes
		// up, so the auth flow can be completed over HTTP.
		log.Printf("WARN: spotify_auth_pending error=%v", err)
		log.Printf("INFO: spotify_auth_url url=%s", spotify.AuthURL("plsync"))
		runLog.Warnf("Spotify authentication pending: %v", err)
	}

	archive, err := library.NewManager(cfg.Sync.DownloadPath)
	if err != nil {
		return err
	}

	fetcher := fetch.NewProvider(&fetch.Config{
		Timeout:           secondsDuration(cfg.Sync.DownloadTimeout),
		RateLimitRequests: cfg.Sync.RateLimitRequests,
		RateLimitWindow:   secondsDuration(cfg.Sync.RateLimitWindow),
	})

	registry := engine.NewRegistryWithCapacity(cfg.Sync.ProcessedCapacity, cfg.Sync.FailedCapacity)
	pipeline := engine.NewPipeline(fetcher, archive.Dir())

	service := engine.NewService(spotify, pipeline, registry, cfg.Sync.PlaylistID)
	service.SetTagger(metadata.NewEmbedder())
	service.SetTrackDelay(secondsDuration(cfg.Sync.TrackDelay))

	broadcaster := NewEventBroadcaster()
	service.SetNotifier(broadcaster.Publish)

	scheduler := engine.NewScheduler(service, time.Duration(cfg.Sync.PollIntervalMinutes)*time.Minute)
	schedulerDone := make(chan struct{})
	var startOnce osync.Once
	startScheduler := func() {
		startOnce.Do(func() {
			go func() {
				defer close(schedulerDone)
				scheduler.Run(ctx)
			}()
		})
	}

	h := handlers.NewHandlers(handlers.Deps{
		Service:         service,
		Catalog:         spotify,
		Downloader:      pipeline,
		Inspector:       fetcher,
		Archive:         archive,
		Pending:         registry,
		PlaylistID:      cfg.Sync.PlaylistID,
		MaxArchiveFiles: cfg.Sync.MaxArchiveFiles,
		ConfigView: handlers.ConfigView{
			PlaylistID:          cfg.Sync.PlaylistID,
			PollIntervalMinutes: cfg.Sync.PollIntervalMinutes,
			DownloadPath:        cfg.Sync.DownloadPath,
			MaxArchiveFiles:     cfg.Sync.MaxArchiveFiles,
			TrackDelay:          cfg.Sync.TrackDelay,
			ServerPort:          cfg.Server.Port,
		},
		StartTime:       time.Now(),
		Version:         Version,
		OnAuthenticated: startScheduler,
	})

	server := NewServer(cfg.Server.Port, h, broadcaster)

	// The poll loop only makes sense with a Spotify session. Without one it
	// waits for the interactive authorization to complete.
	if spotify.Authenticated() {
		startScheduler()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Printf("INFO: shutdown_signal signal=%v", sig)
		runLog.Infof("received signal %v, shutting down", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: shutdown_failed error=%v", err)
		}

		// If the scheduler never started there is nothing to wait for.
		startOnce.Do(func() { close(schedulerDone) })
		select {
		case <-schedulerDone:
		case <-shutdownCtx.Done():
			log.Printf("WARN: scheduler_shutdown_timeout")
		}
		log.Printf("INFO: plsync_stopped")
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func secondsDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

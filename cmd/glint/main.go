// Command glint runs the gallery server: GraphQL and REST APIs, the
// WebSocket event feed, the static front end and the colour panel
// slideshow.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dixieflatline76/Glint/config"
	"github.com/dixieflatline76/Glint/pkg/api"
	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/device"
	"github.com/dixieflatline76/Glint/pkg/gallery"
	"github.com/dixieflatline76/Glint/pkg/screensaver"
	"github.com/dixieflatline76/Glint/util"
	"github.com/dixieflatline76/Glint/util/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(config.GetFilename())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	store := gallery.NewStore(cfg.UploadsPath())
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load uploads: %v", err)
	}
	settings := gallery.NewSettings(cfg.SettingsPath())
	if err := settings.Load(); err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	pusher := device.NewPusher(device.NewHTTPClient(), cfg.ESPEndpoint, cfg.ESPRGBEndpoint)
	if !pusher.Configured(codec.ESP32) {
		log.Printf("%s not set, mono uploads will only be stored", config.EnvESPEndpoint)
	}
	if !pusher.Configured(codec.RGB320x240) {
		log.Printf("%s not set, colour uploads will only be stored", config.EnvESPRGBEndpoint)
	}

	service, err := gallery.NewService(store, pusher)
	if err != nil {
		log.Fatalf("Failed to create gallery: %v", err)
	}

	saver := screensaver.NewController(store, pusher, settings)
	service.Subscribe(saver.OnNewUpload)

	suggester, err := newSuggester(cfg.FaceCascadePath)
	if err != nil {
		log.Fatalf("Failed to create crop suggester: %v", err)
	}

	server, err := api.NewServer(api.Options{
		Gallery:     service,
		Screensaver: saver,
		Suggester:   suggester,
		SiteDir:     cfg.SiteDir,
		Version:     config.AppVersion,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	saver.OnChange = server.BroadcastScreensaver

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UpdateCheck {
		go checkForUpdates(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return saver.Run(gctx)
	})
	g.Go(func() error {
		if err := server.Start(cfg.Addr()); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Shutting down after error: %v", err)
	}
	if err := store.Save(); err != nil {
		log.Printf("Failed to save uploads: %v", err)
	}
	log.Print("Bye")
}

// newSuggester loads the face cascade at path, if any.
func newSuggester(path string) (*codec.Suggester, error) {
	var cascade []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading face cascade: %w", err)
		}
		cascade = data
	}

	s, err := codec.NewSuggester(codec.DefaultTuning(), cascade)
	if err != nil {
		return nil, err
	}
	if !s.FaceDetection() {
		log.Printf("%s not set, crop suggestions ignore faces", config.EnvFaceCascadePath)
	}
	return s, nil
}

func checkForUpdates(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	result, err := util.CheckForUpdates(ctx, nil)
	if err != nil {
		log.Printf("Update check failed: %v", err)
		return
	}
	if result.UpdateAvailable {
		log.Printf("%s %s is available (running %s): %s", config.AppName, result.LatestVersion, result.CurrentVersion, result.ReleaseURL)
	}
}

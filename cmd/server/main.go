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

	"hotmess/config"
	"hotmess/internal/composer"
	"hotmess/internal/rightnow"
	"hotmess/internal/router"
	"hotmess/internal/session"
	"hotmess/internal/ws"
	"hotmess/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var cloud cloudinary.Client
	if cfg.Cloudinary.MediaEnabled() {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
	} else {
		log.Printf("[Media] uploads disabled: set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET to enable")
	}

	client := rightnow.NewClient(cfg.RightNow.APIBase, cfg.RightNow.Timeout)
	hub := ws.NewHub()
	sessions := session.NewManager(session.Options{
		Assistant:   client,
		Submitter:   composer.SubmitFunc(client.Create),
		Boundaries:  cfg.Composer.DefaultBoundaries,
		Publisher:   hub,
		IdleTimeout: cfg.Composer.SessionIdleTimeout,
	})
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sessions.Run(ctx)

	engine := router.Setup(cfg, sessions, hub, cloud)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("composer service listening on :%s (right-now api %s)", cfg.Server.Port, cfg.RightNow.APIBase)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	stop()
	sessions.CloseAll()
	fmt.Println("server stopped")
}

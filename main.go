package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akl7777777/avi-intl/internal/config"
	"github.com/akl7777777/avi-intl/internal/lookup"
	"github.com/akl7777777/avi-intl/internal/metrics"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] Config error: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := lookup.NewService(cfg, m)
	defer svc.Close()

	srv := NewServer(svc, cfg.AuthKey, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	addr := cfg.Host + ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[main] Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			httpServer.Close()
		}
	}()

	authStatus := "disabled"
	if cfg.AuthKey != "" {
		authStatus = "enabled"
	}
	log.Printf("[main] AVI service starting on %s", addr)
	log.Printf("[main] Primary: %s | Backup: %s | Trial: %s | Auth: %s",
		cfg.PrimaryURL, cfg.BackupURL, cfg.TrialURL, authStatus)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("[main] Server error: %v", err)
	}

	log.Println("[main] Server stopped")
}

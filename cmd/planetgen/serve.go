package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planetgen.ai/internal/planet"
	"planetgen.ai/internal/sampler"
	"planetgen.ai/internal/transport/preview"
)

func serveCmd(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8090", "http listen address")
	configPath := fs.String("config", "./configs/planets.yaml", "planets config path")
	workers := fs.Int("workers", 0, "sampling workers per request (default: GOMAXPROCS)")
	_ = fs.Parse(args)

	cfg := loadConfig(*configPath, logger)
	arts, err := planet.Assemble(cfg, logger)
	if err != nil {
		logger.Fatalf("assemble: %v", err)
	}
	planets := make([]preview.Planet, 0, len(arts))
	for _, a := range arts {
		reg, err := a.Registry(cfg.Seed)
		if err != nil {
			logger.Fatalf("planet %s noises: %v", a.Spec.ID, err)
		}
		smp, err := sampler.New(a, reg)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		planets = append(planets, preview.Planet{
			Info: preview.PlanetInfo{
				ID:       a.Spec.ID,
				MinY:     a.Spec.MinY,
				MaxY:     a.Spec.MaxY,
				SeaLevel: a.Spec.SeaLevel,
			},
			Sampler: smp,
		})
	}

	ps := preview.NewServer(cfg.Namespace, cfg.Seed, planets, *workers, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/v1/planets", ps.PlanetsHandler())
	mux.HandleFunc("/v1/preview", ps.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("serving %d planet(s) on %s", len(planets), *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

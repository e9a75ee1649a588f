package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jforbes02/Clubbies/internal/authserver"
	"github.com/jforbes02/Clubbies/internal/config"
	"github.com/jforbes02/Clubbies/internal/database"
	"github.com/jforbes02/Clubbies/internal/database/repository"
	"github.com/jforbes02/Clubbies/internal/logging"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)

	if cfg.Server.JWTSecret == "" {
		log.Fatal("server.jwt_secret is not set (CLUBBIES_SERVER_JWT_SECRET)")
	}

	db, err := database.OpenMigrated(cfg.Server.DatabasePath, database.AuthdMigrations)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	svc, err := authserver.NewService(repository.NewUserRepo(db), authserver.Options{
		Secret:   []byte(cfg.Server.JWTSecret),
		TokenTTL: cfg.Server.TokenTTL,
		MinAge:   cfg.Server.MinAge,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	handler := authserver.NewHandler(svc, logger, authserver.NewMetrics(reg))

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.Server.Addr, err)
	}
	srv := authserver.NewHTTPServer(cfg.Server.Addr, handler.Router(reg))
	if err := authserver.Serve(ctx, srv, ln, shutdownGrace, logger); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jforbes02/Clubbies/internal/authclient"
	"github.com/jforbes02/Clubbies/internal/config"
	"github.com/jforbes02/Clubbies/internal/database"
	"github.com/jforbes02/Clubbies/internal/database/repository"
	"github.com/jforbes02/Clubbies/internal/logging"
	"github.com/jforbes02/Clubbies/internal/prefs"
	"github.com/jforbes02/Clubbies/internal/secrets"
	"github.com/jforbes02/Clubbies/internal/session"
	"github.com/jforbes02/Clubbies/internal/tui"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog, err := logging.OpenFile(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closeLog()

	db, err := database.OpenMigrated(cfg.Database.Path, database.AppMigrations)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	client, err := authclient.New(cfg.API.BaseURL,
		authclient.WithTimeout(cfg.API.Timeout),
		authclient.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("auth client: %v", err)
	}

	store := session.NewStore(client, secrets.NewTokenFile(cfg.Session.TokenFile), session.WithLogger(logger))

	logger.Info("starting", "api", cfg.API.BaseURL, "db", cfg.Database.Path)
	p := tea.NewProgram(tui.New(ctx, tui.Deps{
		Session: store,
		Repos: tui.Repos{
			Venues:        repository.NewVenueRepo(db),
			Reviews:       repository.NewReviewRepo(db),
			Notifications: repository.NewNotificationRepo(db),
		},
		Logger:        logger,
		LastEmail:     prefs.LoadLastEmail,
		RememberEmail: prefs.SaveLastEmail,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// Command seed creates a demo account with a few notes.
package main

import (
	"context"
	"log"

	"notekeeper-be/internal/config"
	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/mailer"
	"notekeeper-be/internal/pkg/token"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/internal/service"
	"notekeeper-be/pkg/database"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "demo-password"
)

var demoNotes = []dto.CreateNoteRequest{
	{Title: "Welcome", Content: "This is your first note.", Tags: []string{"intro"}},
	{Title: "Groceries", Content: "Milk, eggs, coffee", Tags: []string{"personal", "shopping"}},
	{Title: "Standup", Content: "Ship the pin toggle fix"},
}

func main() {
	cfg := config.Load()
	if cfg.Auth.AccessTokenSecret == "" {
		log.Fatal("Error: ACCESS_TOKEN_SECRET is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	sysLogger := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(db)

	tokens, err := token.NewManager(cfg.Auth.AccessTokenSecret, cfg.Auth.AccessTokenTTL, nil)
	if err != nil {
		log.Fatal("Error:", err)
	}
	activity := service.NewNoopActivityPublisher()
	authService := service.NewAuthService(uowFactory, tokens, mailer.NewNoopEmailService(sysLogger), activity, sysLogger, cfg.Auth.BcryptCost)
	noteService := service.NewNoteService(uowFactory, activity, sysLogger)

	log.Println("Seeding demo user...")
	_, err = authService.Register(ctx, &dto.RegisterRequest{FullName: "Demo User", Email: demoEmail, Password: demoPassword})
	if err != nil && apperror.KindOf(err) != apperror.KindConflict {
		log.Fatal("Error: Failed to register demo user:", err)
	}

	login, err := authService.Login(ctx, &dto.LoginRequest{Email: demoEmail, Password: demoPassword})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			log.Fatal("Error: demo user exists with a different password")
		}
		log.Fatal("Error: Failed to log in as demo user:", err)
	}

	userID, err := tokens.Verify(login.AccessToken)
	if err != nil {
		log.Fatal("Error:", err)
	}

	existing, err := noteService.List(ctx, userID)
	if err != nil {
		log.Fatal("Error: Failed to list notes:", err)
	}
	if len(existing) > 0 {
		log.Printf("Demo user already has %d notes, skipping", len(existing))
		return
	}

	for i := range demoNotes {
		if _, err := noteService.Create(ctx, userID, &demoNotes[i]); err != nil {
			log.Fatal("Error: Failed to create note:", err)
		}
	}
	log.Printf("Seeded %s with %d notes", demoEmail, len(demoNotes))
}

package main

import (
	"flag"
	"log"

	"go-inventory-mt/internal/repository"
	"go-inventory-mt/pkg/config"
	"go-inventory-mt/pkg/database"
	"go-inventory-mt/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "", "account to reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	reactivate := flag.Bool("reactivate", false, "also mark the account active")
	flag.Parse()

	if *username == "" || len(*password) < 6 {
		log.Fatal("usage: reset-password -username <name> -password <new password, min 6 chars> [-reactivate]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Open(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	user, err := users.FindByUsername(*username)
	if err != nil {
		zlog.Fatal("user not found", zap.String("username", *username), zap.Error(err))
	}

	if err := user.SetPassword(*password); err != nil {
		zlog.Fatal("failed to hash password", zap.Error(err))
	}
	user.TokenVersion = uuid.NewString()
	if err := users.UpdatePassword(user.ID, user.Password, user.TokenVersion); err != nil {
		zlog.Fatal("failed to update password", zap.Error(err))
	}
	if *reactivate && !user.IsActive {
		user.IsActive = true
		if err := users.Update(user); err != nil {
			zlog.Fatal("failed to reactivate account", zap.Error(err))
		}
	}

	zlog.Info("password reset", zap.String("username", user.Username), zap.Bool("active", user.IsActive))
}

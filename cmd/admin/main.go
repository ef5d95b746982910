// Command admin is a small ops CLI for inspecting and repairing
// presence state. The Redis online-users set mirrors the in-process
// connection registry; after a crash the mirror and the persisted
// flags can both go stale, which reset-presence cleans up.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"chatlink/backend/internal/config"
	"chatlink/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("failed to connect Redis: %v", err)
	}

	s := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <online|reset-presence> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "online":
		users, err := s.GetOnlineUsers()
		if err != nil {
			log.Fatalf("error reading online set: %v", err)
		}
		if len(users) == 0 {
			fmt.Println("No users online.")
			return
		}
		for _, id := range users {
			fmt.Println(id)
		}

	case "reset-presence":
		if len(os.Args) == 3 {
			if err := resetPresence(s, os.Args[2]); err != nil {
				log.Fatalf("error resetting presence: %v", err)
			}
			fmt.Printf("User %s marked offline.\n", os.Args[2])
			return
		}
		users, err := s.GetOnlineUsers()
		if err != nil {
			log.Fatalf("error reading online set: %v", err)
		}
		for _, id := range users {
			if err := resetPresence(s, id); err != nil {
				log.Fatalf("error resetting presence for %s: %v", id, err)
			}
		}
		fmt.Printf("%d users marked offline.\n", len(users))

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func resetPresence(s *storage.Service, userID string) error {
	if err := s.SetUserPresence(userID, false, time.Now()); err != nil {
		return err
	}
	return s.RemoveOnlineUser(userID)
}

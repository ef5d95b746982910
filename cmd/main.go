package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"chatlink/backend/internal/api/handler"
	"chatlink/backend/internal/chathub"
	"chatlink/backend/internal/config"
	"chatlink/backend/internal/models"
	"chatlink/backend/internal/storage"
	"chatlink/backend/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.FriendRequest{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting ChatLink Backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	registry := chathub.NewRegistry()
	rooms := chathub.NewRooms()
	relay := chathub.NewRelay(registry, rooms, s, nil)
	hub := chathub.NewHub(registry, rooms, relay)
	go hub.Run()

	tokens := token.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	h := handler.NewHandler(hub, relay, s, tokens)

	r := gin.Default()
	r.Use(handler.CORS(cfg.ClientURL))

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Chat API is running") })
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", h.AuthRequired())
	authed.GET("/auth/me", h.Me)
	authed.GET("/online", h.GetOnlineUsers)

	chat := authed.Group("/chat")
	chat.GET("/chats", h.GetChats)
	chat.POST("", h.CreateChat)
	chat.GET("/:chatId/messages", h.GetChatMessages)
	chat.POST("/message", h.SendMessage)

	friends := authed.Group("/friends")
	friends.GET("", h.GetFriends)
	friends.GET("/requests", h.GetFriendRequests)
	friends.GET("/suggestions", h.GetSuggestions)
	friends.POST("/request", h.SendFriendRequest)
	friends.POST("/request/:requestId/:action", h.RespondToFriendRequest)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}

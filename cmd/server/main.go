package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/iphonefly/realtime-api/internal/config"
	"github.com/iphonefly/realtime-api/internal/database"
	"github.com/iphonefly/realtime-api/internal/handler"
	"github.com/iphonefly/realtime-api/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using default values: %v", err)
	}

	cfg := config.Load()

	var iphones store.IphoneStore
	var messages store.MessageStore
	if cfg.DBName == "" {
		// No database configured: run on volatile in-memory stores.
		log.Println("⚠️  DB_NAME not set, using in-memory stores")
		iphones = store.NewMemoryIphoneStore()
		messages = store.NewMemoryMessageStore()
	} else {
		db, err := database.Init(cfg)
		if err != nil {
			log.Fatalf("❌ Failed to initialize database: %v", err)
		}
		iphones = store.NewGormIphoneStore(db)
		messages = store.NewGormMessageStore(db)
	}

	h := handler.New(iphones, messages, cfg)
	router := h.SetupRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PUT"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})

	httpHandler := c.Handler(router)

	fmt.Println("========================================")
	fmt.Println("  iPhone Fly API Server")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s\n", cfg.ServerPort)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	if cfg.DBName != "" {
		fmt.Printf("  Database: %s@%s:%s/%s\n", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")
	log.Println("🚀 Server started successfully")
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, httpHandler))
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"sketchboard/config"
	"sketchboard/database"
	"sketchboard/handlers"
	"sketchboard/middleware"
	"sketchboard/routes"
	"sketchboard/store"
	"sketchboard/token"
)

func main() {
	log.Println("Starting sketchboard backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	// Connect with retry; managed MongoDB occasionally refuses the first
	// dial after a cold start.
	var (
		client *mongo.Client
		db     *mongo.Database
	)
	for attempt := 1; ; attempt++ {
		client, db, err = database.Connect(cfg.MongoURI, cfg.Database)
		if err == nil {
			break
		}
		if attempt == 3 {
			log.Fatal("Failed to connect to MongoDB: ", err)
		}
		log.Printf("MongoDB connection attempt %d failed: %v", attempt, err)
		time.Sleep(2 * time.Second)
	}
	defer database.Disconnect(client)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		cancelIndex()
		log.Fatal("Failed to create indexes: ", err)
	}
	cancelIndex()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := token.New(cfg.JWTSecret)
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)

	router := routes.SetupRouter(routes.Dependencies{
		Auth:     &handlers.Auth{Users: users, Tokens: tokens},
		Posts:    &handlers.Posts{Posts: posts, Comments: comments},
		Comments: &handlers.Comments{Comments: comments, Posts: posts},
		Tokens:   tokens,
		Limiter:  middleware.NewIPRateLimiter(60, time.Minute),
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "sketchboard backend running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped")
}

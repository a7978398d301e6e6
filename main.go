package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"microblog/cache"
	"microblog/config"
	"microblog/database"
	"microblog/handlers"
	"microblog/log"
	"microblog/middleware"
	"microblog/notify"
	"microblog/routes"
	"microblog/storage"
	"microblog/uploads"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error.Fatalf("config: %v", err)
	}

	// ----- mongodb, with retry -----
	var client *mongo.Client
	var dbErr error
	for i := 1; i <= 3; i++ {
		client, dbErr = database.Connect(cfg.MongoURI)
		if dbErr != nil {
			log.Warn.Printf("MongoDB connection attempt %d failed: %v", i, dbErr)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	if dbErr != nil {
		log.Error.Fatalf("failed to connect to MongoDB: %v", dbErr)
	}
	defer database.Disconnect(client)
	log.Info.Printf("MongoDB connected")

	store := storage.NewMongo(client.Database(cfg.MongoDB))
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.EnsureIndexes(indexCtx); err != nil {
		cancelIndex()
		log.Error.Fatalf("failed to create indexes: %v", err)
	}
	cancelIndex()

	// ----- page cache -----
	var pages cache.PageCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Error.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		pages = redisCache
		log.Info.Printf("Redis page cache connected")
	} else {
		pages = cache.NewMemory()
		log.Warn.Printf("REDIS_URL not set, using in-process page cache")
	}

	// ----- image storage -----
	var uploader uploads.Uploader
	if cfg.CloudinaryURL != "" {
		uploader, err = uploads.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Error.Fatalf("cloudinary: %v", err)
		}
	} else {
		uploader, err = uploads.NewDir(cfg.MediaDir)
		if err != nil {
			log.Error.Fatalf("media dir: %v", err)
		}
		log.Warn.Printf("CLOUDINARY_URL not set, storing images under %s", cfg.MediaDir)
	}

	// ----- web push -----
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Error.Fatalf("failed to generate VAPID keys: %v", err)
		}
		cfg.VAPIDPublicKey = publicKey
		cfg.VAPIDPrivateKey = privateKey
		log.Warn.Printf("generated ephemeral VAPID keys; set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY to keep subscriptions across restarts")
	}
	notifier := notify.New(store, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)

	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecret)
	h := handlers.New(store, pages, uploader, auth, notifier)
	h.CacheTTL = cfg.CacheTTL

	router := routes.SetupRouter(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info.Printf("server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error.Printf("forced shutdown: %v", err)
	}
}

package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every setting the process needs. JWT_SECRET and
// MONGODB_URI are required; everything else has a workable default.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	JWTSecret string

	// Page cache. Empty RedisURL means the in-process cache.
	RedisURL string
	CacheTTL time.Duration

	// Image storage. Empty CloudinaryURL means local media files.
	CloudinaryURL string
	MediaDir      string

	// Web push. Empty keys are generated at startup.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string

	ReleaseMode bool
}

func Load() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDB:         getenv("MONGODB_DATABASE", "microblog"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheTTL:        20 * time.Second,
		CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),
		MediaDir:        getenv("MEDIA_DIR", "media"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		PushSubscriber:  getenv("PUSH_SUBSCRIBER", "mailto:admin@microblog.local"),
		ReleaseMode:     os.Getenv("GIN_MODE") == "release",
	}

	if cfg.JWTSecret == "" || cfg.MongoURI == "" {
		return nil, errors.New("JWT_SECRET and MONGODB_URI must be set")
	}

	if raw := os.Getenv("CACHE_TTL_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("CACHE_TTL_SECONDS must be an integer")
		}
		cfg.CacheTTL = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

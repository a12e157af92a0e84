// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	JWT    JWTConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// MongoConfig, MongoDB bağlantı ve koleksiyon ayarları.
//
// Koleksiyon isimleri de env'den gelir — test ortamında aynı cluster'da
// farklı koleksiyon setleriyle çalışabilmek için.
type MongoConfig struct {
	URI               string
	ConnectionTimeout int // Saniye cinsinden
	MinPoolSize       uint64
	MaxPoolSize       uint64
	Database          string

	UsersCollection        string
	ChannelsCollection     string
	UserChannelsCollection string
	PostsCollection        string
	ReadTrackersCollection string
}

// JWTConfig, access token doğrulama ayarları.
// Token issuance bu servisin işi değil — sadece doğrularız.
type JWTConfig struct {
	Secret string // Token imza anahtarı — GİZLİ TUTULMALI
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyasını yükle — dosya yoksa hata vermez, sessizce devam eder.
	// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	mongoURI := getEnv("MONGO_URI", "")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable is required")
	}

	connTimeout, err := strconv.Atoi(getEnv("MONGO_CONNECTION_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_CONNECTION_TIMEOUT: %w", err)
	}

	minPool, err := strconv.ParseUint(getEnv("MONGO_MIN_POOL_SIZE", "5"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_MIN_POOL_SIZE: %w", err)
	}

	maxPool, err := strconv.ParseUint(getEnv("MONGO_MAX_POOL_SIZE", "20"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_MAX_POOL_SIZE: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Mongo: MongoConfig{
			URI:               mongoURI,
			ConnectionTimeout: connTimeout,
			MinPoolSize:       minPool,
			MaxPoolSize:       maxPool,
			Database:          getEnv("DB_NAME", "merume"),

			UsersCollection:        getEnv("DB_USERS_COLLECTION", "users"),
			ChannelsCollection:     getEnv("DB_CHANNELS_COLLECTION", "channels"),
			UserChannelsCollection: getEnv("DB_USER_CHANNELS_COLLECTION", "user_channels"),
			PostsCollection:        getEnv("DB_POSTS_COLLECTION", "posts"),
			ReadTrackersCollection: getEnv("DB_READ_TRACKERS_COLLECTION", "channel_read_trackers"),
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:8080").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	DB    *sql.DB
	Redis *redis.Client
}

var AppConfig *Config

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Init loads .env, connects postgres and (optionally) redis.
func Init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	psqlInfo := os.Getenv("DATABASE_URL")
	if psqlInfo == "" {
		psqlInfo = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			env("DB_HOST", "localhost"), env("DB_PORT", "5432"),
			env("DB_USER", "postgres"), env("DB_PASSWORD", ""),
			env("DB_NAME", "daycare"), env("DB_SSLMODE", "disable"))
	}

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Testing database connection...")
	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	AppConfig = &Config{DB: db}
	log.Println("Database connected successfully")

	// Redis backs the resolver cache. The portal runs fine without it;
	// every dashboard load just hits the resolver directly.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		AppConfig.Redis = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Printf("Redis cache configured at %s", addr)
	} else {
		log.Println("REDIS_ADDR not set, resolver cache disabled")
	}
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

func GetRedis() *redis.Client {
	return AppConfig.Redis
}

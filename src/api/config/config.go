package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN      string
	MongoURL      string
	MongoDatabase string
	RedisURL      string
	JWTSecret     string
	Port          string
	PollInterval  int // seconds between reconciliation cycles while active
	IdleTimeout   int // seconds of no input before polling stops
	CatchUpGrace  int // seconds hidden before a visibility return forces a run
	PageSize      int // transactions per page from the transaction service
	MaxPages      int // pagination cap per safe per cycle
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func getint(key string, def int) int {
	v, err := strconv.Atoi(getenv(key, strconv.Itoa(def)))
	if err != nil {
		log.Fatalf("bad env %s: %v", key, err)
	}
	return v
}

func Load() Config {
	return Config{
		MySQLDSN:      getenv("MYSQL_DSN", "safesync:safesync@tcp(localhost:3306)/safesync?parseTime=true"),
		MongoURL:      getenv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGO_DATABASE", "safesync"),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:     getenv("JWT_SECRET", ""),
		Port:          getenv("PORT", "8080"),
		PollInterval:  getint("POLL_INTERVAL", 15),
		IdleTimeout:   getint("IDLE_TIMEOUT", 180),
		CatchUpGrace:  getint("CATCHUP_GRACE", 15),
		PageSize:      getint("PAGE_SIZE", 5),
		MaxPages:      getint("MAX_PAGES", 200),
	}
}

package main

import (
	"os"
	"strconv"
)

type config struct {
	Addr string

	DefaultAgent       string
	HistoryLimit       int
	WorkingMemoryTurns int

	Backend       string // "memory", "mongo", "redis" or "mysql"
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	MySQLDSN      string

	Executor      string // "mock", "anthropic", "openai" or "remote"
	RemoteBaseURL string

	LogLevel  string
	LogFormat string // "json" or "text"
	LogFile   string // when set, logs are tee'd to a rotating file
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// loadConfig reads all env vars and builds the config
func loadConfig() *config {
	return &config{
		Addr: getEnv("ECHO_ADDR", ":8080"),

		DefaultAgent:       getEnv("ECHO_DEFAULT_AGENT", "gmail"),
		HistoryLimit:       getIntEnv("ECHO_HISTORY_LIMIT", 20),
		WorkingMemoryTurns: getIntEnv("ECHO_WORKING_MEMORY_TURNS", 5),

		Backend:       getEnv("ECHO_BACKEND", "memory"),
		MongoURI:      getEnv("ECHO_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("ECHO_MONGO_DATABASE", "echo"),
		RedisAddr:     getEnv("ECHO_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("ECHO_REDIS_PASSWORD", ""),
		MySQLDSN:      getEnv("ECHO_MYSQL_DSN", ""),

		Executor:      getEnv("ECHO_EXECUTOR", "mock"),
		RemoteBaseURL: getEnv("ECHO_REMOTE_URL", ""),

		LogLevel:  getEnv("ECHO_LOG_LEVEL", "info"),
		LogFormat: getEnv("ECHO_LOG_FORMAT", "json"),
		LogFile:   getEnv("ECHO_LOG_FILE", ""),
	}
}

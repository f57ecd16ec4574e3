// Package config loads pipeline settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerURL     string
	Workers       int
	Retries       int
	PollTimeout   time.Duration
	StyleStrength float64
	Style         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		ServerURL:     getEnv("COMFYUI_URL", "http://127.0.0.1:8188"),
		Workers:       getEnvAsInt("STANDEE_WORKERS", 4),
		Retries:       getEnvAsInt("STANDEE_RETRIES", 3),
		PollTimeout:   getDuration("STANDEE_POLL_TIMEOUT", 300*time.Second),
		StyleStrength: getEnvAsFloat("STANDEE_STYLE_STRENGTH", 0.85),
		Style:         getEnv("STANDEE_STYLE", "professional illustration"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

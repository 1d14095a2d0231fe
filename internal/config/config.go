// Package config reads process settings from the environment, after loading
// an optional .env file.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings of the renderer.
type Config struct {
	RootDir string
	Debug   bool

	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3Prefix    string
}

// UploadEnabled reports whether enough S3 settings are present to publish.
func (c *Config) UploadEnabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// Helper to get environment variables with a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true
	case "off", "no":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return b
}

// Load reads RAYCAST_ROOT_DIR/.env if it exists (variables already set in
// the environment win) and then the environment itself.
func Load() *Config {
	rootDir := getEnv("RAYCAST_ROOT_DIR", ".")
	envFile := filepath.Join(rootDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("config: %s: %v", envFile, err)
	}

	return &Config{
		RootDir:     rootDir,
		Debug:       getBool("RAYCAST_DEBUG", false),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Prefix:    getEnv("S3_PREFIX", "renders/"),
	}
}

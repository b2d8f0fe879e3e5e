package env

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

// Env holds the key/value pairs read from the .env file. Process
// environment variables fill the gaps, so containerized deployments can
// run without a file at all.
var Env map[string]string

// GetEnv returns the configured value for key, preferring the .env file
// over the process environment, with def as the final fallback.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt is GetEnv for numeric settings (worker counts, limits).
// Missing or unparseable values fall back to def.
func GetEnvInt(key string, def int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

// SetupEnvFile loads the first .env file found relative to the working
// directory (binaries run from the project root or from under cmd/).
// A missing file is not fatal; the process environment takes over.
func SetupEnvFile() {
	envFiles := []string{
		".env",
		"../../.env",
		"../../../.env",
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	log.Warn("[Env] No .env file found, using process environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}

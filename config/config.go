package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var SecretKey []byte

func Init() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, relying on environment variables")
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		logrus.Fatal("JWT secret key not set")
	}
	SecretKey = []byte(secret)
}

// Get returns the env var value or def when unset.
func Get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

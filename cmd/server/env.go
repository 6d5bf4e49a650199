package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment        string
	ServerAddress      string
	SecretKey          string
	AccessPasswordHash string
	DatabaseURL        string
	MigrationsPath     string
	RedisAddress       string
	RedisUsername      string
	RedisPassword      string
	MQTTBrokerURL      string
	DeviceID           string
	AudioBackend       string
	AladhanBaseURL     string
}

// LoadEnvironment reads and validates env vars.
func LoadEnvironment() Environment {
	env := Environment{
		Environment:        os.Getenv("APP_ENV"),
		ServerAddress:      os.Getenv("SERVER_ADDRESS"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		AccessPasswordHash: os.Getenv("ACCESS_PASSWORD_HASH"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		MigrationsPath:     os.Getenv("MIGRATIONS_PATH"),
		RedisAddress:       os.Getenv("REDIS_ADDRESS"),
		RedisUsername:      os.Getenv("REDIS_USERNAME"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		MQTTBrokerURL:      os.Getenv("MQTT_BROKER_URL"),
		DeviceID:           os.Getenv("DEVICE_ID"),
		AudioBackend:       os.Getenv("AUDIO_BACKEND"),
		AladhanBaseURL:     os.Getenv("ALADHAN_BASE_URL"),
	}

	if env.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if env.SecretKey == "" {
		log.Fatal().Msg("SECRET_KEY is required")
	}
	if env.AccessPasswordHash == "" {
		log.Fatal().Msg("ACCESS_PASSWORD_HASH is required")
	}
	if env.ServerAddress == "" {
		env.ServerAddress = ":8080"
	}
	if env.MigrationsPath == "" {
		env.MigrationsPath = "./migrations"
	}
	if env.RedisAddress == "" {
		env.RedisAddress = "localhost:6379"
	}
	if env.DeviceID == "" {
		env.DeviceID = "default"
	}
	if env.AudioBackend == "" {
		env.AudioBackend = "pulse"
	}
	return env
}

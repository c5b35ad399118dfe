package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		Addr               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		DisableTLS    bool
		Timeout       time.Duration
	}

	// UploadConfig bounds admission document uploads. MaxSize is
	// deployment-specific; defaults to 10MB.
	UploadConfig struct {
		MaxSize      int64
		AllowedTypes []string
		Folder       string
		MediaRoot    string
	}

	KafkaConfig struct {
		Broker   string
		Topic    string
		Username string
		Password string
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridAPIKey   string
		CloudinaryURL    string

		Server   ServerConfig
		Database DatabaseConfig
		Upload   UploadConfig
		Kafka    KafkaConfig
	}
)

func (c DatabaseConfig) Address() string { return c.Host }

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Udahili")
	v.SetDefault("secretKey", "h3x!mw1t-qay8catu#b(vqe&f%yd0m^9=_semza&2y+k5+hq$n")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridAPIKey", "")
	v.SetDefault("cloudinaryURL", "")

	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "udahili")
	v.SetDefault("databaseUser", "udahili")
	v.SetDefault("databasePassword", "udahili")
	v.SetDefault("databaseAdminUser", "")
	v.SetDefault("databaseAdminPassword", "")
	v.SetDefault("databaseHost", "localhost:5432")
	v.SetDefault("databaseDisableTLS", true)
	v.SetDefault("databaseTimeout", 10*time.Second)

	v.SetDefault("uploadMaxSize", int64(10<<20))
	v.SetDefault("uploadAllowedTypes", []string{"image/jpeg", "image/png", "image/webp"})
	v.SetDefault("uploadFolder", "admissions")
	v.SetDefault("uploadMediaRoot", "media")

	v.SetDefault("kafkaBroker", "")
	v.SetDefault("kafkaTopic", "admission-events")
	v.SetDefault("kafkaUsername", "")
	v.SetDefault("kafkaPassword", "")

	var testMode bool
	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	appName := v.GetString("appName")
	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         testMode,
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          appName,
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: appName, Address: v.GetString("defaultFromEmail")},
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		CloudinaryURL:    v.GetString("cloudinaryURL"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Addr:               v.GetString("serverAddr"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			Host:          v.GetString("databaseHost"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
			Timeout:       v.GetDuration("databaseTimeout"),
		},
		Upload: UploadConfig{
			MaxSize:      v.GetInt64("uploadMaxSize"),
			AllowedTypes: v.GetStringSlice("uploadAllowedTypes"),
			Folder:       v.GetString("uploadFolder"),
			MediaRoot:    v.GetString("uploadMediaRoot"),
		},
		Kafka: KafkaConfig{
			Broker:   v.GetString("kafkaBroker"),
			Topic:    v.GetString("kafkaTopic"),
			Username: v.GetString("kafkaUsername"),
			Password: v.GetString("kafkaPassword"),
		},
	}
}

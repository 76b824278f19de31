package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/openhire/hireboard/internal/board/controller"
	gorm "github.com/openhire/hireboard/internal/board/db"
	"github.com/openhire/hireboard/internal/board/events"
	"github.com/openhire/hireboard/internal/board/handlers"
	"github.com/openhire/hireboard/internal/board/identity"
	"github.com/openhire/hireboard/internal/board/storage"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config struct for YAML configuration
type Config struct {
	HTTPPort        int      `yaml:"HTTP_PORT"`
	DBHost          string   `yaml:"DB_HOST"`
	DBPort          int      `yaml:"DB_PORT"`
	DBUser          string   `yaml:"DB_USER"`
	DBPassword      string   `yaml:"DB_PASSWORD"`
	DBName          string   `yaml:"DB_NAME"`
	DBSSLMode       string   `yaml:"DB_SSLMODE"`
	KafkaBrokers    []string `yaml:"KAFKA_BROKERS"`
	JWTSecret       string   `yaml:"JWT_SECRET"`
	Topic           string   `yaml:"TOPIC"`
	ConsumerGroup   string   `yaml:"CONSUMER_GROUP"`
	DirectoryURL    string   `yaml:"DIRECTORY_URL"`
	StorageURL      string   `yaml:"STORAGE_URL"`
	ServiceKey      string   `yaml:"SERVICE_KEY"`
}

func main() {
	// .env overrides for local development; absence is fine.
	_ = godotenv.Load()

	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dbConf := initDatabase(cfg)
	repo, err := gorm.NewRepository(dbConf)
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		log.Fatal("failed to initialize Kafka producer", err)
	}
	defer producer.Close()

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, cfg.Topic, logger)
	consumer.RegisterHandler(controller.NewEventHandler(repo, logger))
	consumer.Start(consumerCtx)
	defer consumer.Close()

	store := storage.NewHTTPStore(cfg.StorageURL, cfg.ServiceKey, logger)
	resolver := identity.NewResolver(repo, logger)
	directory := identity.NewDirectory(cfg.DirectoryURL, cfg.ServiceKey, logger)
	guard := controller.NewGuard(resolver)

	jobSvc := controller.NewJobService(repo, guard, producer, logger)
	applicationSvc := controller.NewApplicationService(repo, guard, store, producer, logger)
	companySvc := controller.NewCompanyService(repo, guard, store, logger)
	profileSvc := controller.NewProfileService(repo, store, directory, logger)
	notificationSvc := controller.NewNotificationService(repo, guard, logger)

	handler := handlers.NewHandler(jobSvc, applicationSvc, companySvc, profileSvc, notificationSvc, logger)

	server := handlers.NewServer(cfg.HTTPPort, logger)
	server.RegisterRoutes(handler, cfg.JWTSecret)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// loadConfig loads configuration. Use real config tooling (e.g. Viper) in production.
func loadConfig() (*Config, error) {
	configPath := filepath.Join("internal", "board", "config", "config.yaml")
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if key := os.Getenv("SERVICE_KEY"); key != "" {
		cfg.ServiceKey = key
	}
	return &cfg, nil
}

// initDatabase initializes the database connection.
func initDatabase(cfg *Config) *gorm.Config {
	return &gorm.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/foodtruckhq/truck-tracker/internal/cache"
	"github.com/foodtruckhq/truck-tracker/internal/config"
	"github.com/foodtruckhq/truck-tracker/internal/db"
	"github.com/foodtruckhq/truck-tracker/internal/realtime"
	"github.com/foodtruckhq/truck-tracker/internal/tracker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Mongo disconnect failed")
		}
	}()
	store := db.NewMongoTruckStore(client, cfg.MongoDB)
	log.Info("Connected to MongoDB")

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("Invalid REDIS_URL")
		}
		redisClient = goredis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable, snapshot cache disabled")
			redisClient = nil
		}
	}
	truckCache := cache.New(redisClient, cfg.CacheTTL)

	pub, err := realtime.NewMQTTPublisher(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.PublishTimeout)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MQTT broker")
	}
	defer pub.Close()
	log.WithField("broker", cfg.MQTTBrokerURL).Info("Connected to MQTT broker")

	sched := tracker.New(store, pub, truckCache, db.NewTruckLocks(), tracker.Config{
		Interval:      cfg.TickInterval,
		MinMoveMeters: cfg.MinMoveMeters,
		SpeedKmh:      cfg.SpeedKmh,
	})
	sched.Start()
	log.WithField("interval", cfg.TickInterval).Info("Live tracking started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down")
	sched.Stop()
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/audio"
	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/http/api/endpoints"
	"github.com/dhanfinix/sukund/internal/http/middleware"
	"github.com/dhanfinix/sukund/internal/notify"
	"github.com/dhanfinix/sukund/internal/prayer"
	"github.com/dhanfinix/sukund/internal/redis"
	"github.com/dhanfinix/sukund/internal/scheduler"
	"github.com/dhanfinix/sukund/internal/silence"
	"github.com/dhanfinix/sukund/internal/timesource"
	"github.com/dhanfinix/sukund/internal/trigger"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()

	env := LoadEnvironment()
	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	store := db.NewStore()

	redis.Init(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	controller := buildAudioController(env.AudioBackend)
	repo := prayer.NewRepository(timesource.NewClient(env.AladhanBaseURL), prayer.RedisCache{})

	var notifier silence.Notifier = silence.NopNotifier{}
	var mqttNotifier *notify.MQTTNotifier
	if env.MQTTBrokerURL != "" {
		n, err := notify.NewMQTTNotifier(env.MQTTBrokerURL, env.DeviceID)
		if err != nil {
			log.Error().Err(err).Msg("MQTT unavailable, silence notifications disabled")
		} else {
			notifier = n
			mqttNotifier = n
			defer n.Close()
		}
	}

	executor := silence.NewExecutor(store, controller, notifier)
	registry := trigger.NewTimerRegistry()
	sched := scheduler.New(store, repo, registry, executor)
	registry.OnFire(sched.HandleTrigger)

	if mqttNotifier != nil {
		if err := mqttNotifier.SubscribeStop(sched.StopSilence); err != nil {
			log.Error().Err(err).Msg("stop action subscription failed")
		}
	}

	// Boot re-arm: resume or close out a window that was active when the
	// process last died, then rebuild the full trigger set.
	sched.ResumeActiveWindow()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sched.RefreshAndSchedule(ctx); err != nil {
		// Not fatal: the next rollover or a user refresh retries.
		log.Error().Err(err).Msg("initial scheduling failed, will retry at rollover")
	}
	cancel()

	if env.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	apiGroup := r.Group("/api")
	endpoints.RegisterSessionRoutes(apiGroup, env.SecretKey, env.AccessPasswordHash)

	apiGroup.Use(middleware.JWTMiddleware(env.SecretKey))
	endpoints.RegisterSilenceRoutes(apiGroup, store, sched)
	endpoints.RegisterPrayerRoutes(apiGroup, store, repo, sched)
	endpoints.RegisterSettingsRoutes(apiGroup, store, sched)

	log.Info().Str("address", env.ServerAddress).Msg("sukund listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func buildAudioController(backend string) audio.Controller {
	switch backend {
	case "none":
		log.Info().Msg("audio backend disabled, using null controller")
		return audio.NewNullController()
	default:
		return audio.NewPulseController(map[audio.Stream]string{
			audio.StreamMedia:        os.Getenv("PULSE_SINK_MEDIA"),
			audio.StreamRing:         os.Getenv("PULSE_SINK_RING"),
			audio.StreamNotification: os.Getenv("PULSE_SINK_NOTIFICATION"),
			audio.StreamAlarm:        os.Getenv("PULSE_SINK_ALARM"),
		})
	}
}

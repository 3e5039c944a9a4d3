package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "hub2mqtt/internal/adapter/actor"
	"hub2mqtt/internal/config"
	"hub2mqtt/internal/core/actor"
	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/core/flow"
	"hub2mqtt/internal/server"
	"hub2mqtt/internal/util/actorutil"
	"hub2mqtt/pkg/isy"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, isyActorProvider(cfg, logger),
			mqttActorProvider(cfg, logger), zigbeeActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	// periodic full resync against the hub
	scheduler, err := startResyncScheduler(cfg, ctx, pid)
	if err != nil {
		panic(fmt.Sprintf("resync scheduler error: %s", err))
	}

	flows := flow.NewManager(flow.NewAccountFlow(flow.NewCloudClient(cfg.Cloud.Endpoint)), logger)

	server := server.NewServer(*cfg, ctx, pid, flows)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	scheduler.Stop()
	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => HUB2MQTT_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("HUB2MQTT_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("hub2mqtt")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if cfg.ISY.Host == "" {
		return nil, errors.New("config param isy.host is required")
	}
	if cfg.ISY.ResyncIntervalMillis < 60000 {
		return nil, errors.New("config param isy.resync_interval_millis should be >= 60000")
	}
	if cfg.Zigbee.Enable {
		if _, err := config.CheckMQTTTopic(cfg.Zigbee.BaseTopic); err != nil {
			return nil, errors.New("invalid zigbee base topic. can only contain letters, numbers and underscores")
		}
	}

	return &cfg, nil
}

func isyActorProvider(cfg *config.Config, logger *zap.Logger) actor.ISYActorProvider {
	return func() *adactor.ISYActor {
		client := isy.CreateRESTClient(cfg.ISY.Host, cfg.ISY.Port, cfg.ISY.HTTPS,
			cfg.ISY.Username, cfg.ISY.Password, 10*time.Second, logger)
		return adactor.NewISYActor(client, logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func() *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func zigbeeActorProvider(cfg *config.Config, logger *zap.Logger) actor.ZigbeeActorProvider {
	return func(bridge domain.Device) *adactor.ZigbeeActor {
		return adactor.NewZigbeeActor(cfg, bridge, logger)
	}
}

func startResyncScheduler(cfg *config.Config, ctx *pactor.RootContext, master *pactor.PID) (quartz.Scheduler, error) {
	scheduler, err := quartz.NewStdScheduler()
	if err != nil {
		return nil, err
	}
	scheduler.Start(context.Background())

	resyncJob := job.NewFunctionJob(func(_ context.Context) (bool, error) {
		ctx.Send(master, domain.ResyncRequest{})
		return true, nil
	})
	trigger := quartz.NewSimpleTrigger(time.Duration(cfg.ISY.ResyncIntervalMillis) * time.Millisecond)
	err = scheduler.ScheduleJob(quartz.NewJobDetail(resyncJob, quartz.NewJobKey("resync")), trigger)
	if err != nil {
		return nil, err
	}
	return scheduler, nil
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "hub2mqtt")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("isy.port", 80)
	viper.SetDefault("isy.https", false)
	viper.SetDefault("isy.ignore_string", "{IGNORE ME}")
	viper.SetDefault("isy.sensor_string", "sensor")
	viper.SetDefault("isy.resync_interval_millis", 600000)
	viper.SetDefault("zigbee.enable", false)
	viper.SetDefault("zigbee.base_topic", "zigbee2mqtt")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.ISY.Password = "*redacted*"
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "heater_control/docs"
	"heater_control/internal/config"
	"heater_control/internal/device"
	"heater_control/internal/handlers"
	"heater_control/internal/logger"
	"heater_control/internal/metrics"
	"heater_control/internal/publish"
	"heater_control/internal/repository"
	"heater_control/internal/repository/db"
	"heater_control/internal/server"
	"heater_control/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// @title                       Heater Control API
// @version                     1.0
// @description                 Operator sessions for a thermal-profile heater.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load config.yml + HEATER_* env
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.Get(logger.Options{Level: logger.InfoLevel}).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	publisher := newPublisher(cfg.MQTT, log)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			log.Errorw("failed to close publisher", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, service.SessionDeps{
		Device:    device.NewClient(cfg.Device.BaseURL, &http.Client{}),
		Publisher: publisher,
		Metrics:   metrics.New(reg),
		Log:       log,
		Poller: service.PollerConfig{
			Cadence:           cfg.Poller.Cadence,
			FetchTimeout:      cfg.Poller.FetchTimeout,
			LinkLossThreshold: cfg.Poller.LinkLossThreshold,
		},
		DefaultAmbientC: cfg.Profile.DefaultAmbientC,
		DeviceTimeout:   cfg.Device.Timeout,
	}, service.AuthOptions{
		SigningKey:      cfg.Auth.SigningKey,
		TokenTTL:        cfg.Auth.TokenTTL,
		LegacyPlaintext: cfg.Auth.LegacyPlaintext,
	})

	if err := seedUsers(services, cfg.Auth.Users, log); err != nil {
		log.Fatalw("failed to seed users", "err", err)
	}

	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		Gatherer:   reg,
		LoginRate:  cfg.Auth.LoginRate,
		LoginBurst: cfg.Auth.LoginBurst,
	})

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	if err := srv.Listen(); err != nil {
		log.Fatalw("error starting server", "err", err)
	}
	runHTTPServer(srv, log)
	log.Infow("server_started", "addr", srv.Addr(), "device", cfg.Device.BaseURL)

	// graceful shutdown
	waitForShutdown(srv, services.Sessions, log)
}

// newPublisher connects to the MQTT broker when one is configured. A broker
// that cannot be reached is logged and telemetry is kept local.
func newPublisher(cfg config.MQTTConfig, log *logger.Logger) publish.Publisher {
	if cfg.Broker == "" {
		return publish.Nop{}
	}
	p, err := publish.NewMQTTPublisher(cfg.Broker, cfg.ClientID, cfg.Topic)
	if err != nil {
		log.Errorw("mqtt_connect_failed", "err", err, "broker", cfg.Broker)
		return publish.Nop{}
	}
	log.Infow("mqtt_connected", "broker", cfg.Broker, "topic", cfg.Topic)
	return p
}

func seedUsers(auth service.Authorization, users []config.Credential, log *logger.Logger) error {
	for _, u := range users {
		created, err := auth.EnsureUser(u.Username, u.Password)
		if err != nil {
			return fmt.Errorf("seed %q: %w", u.Username, err)
		}
		if created {
			log.Infow("user_seeded", "username", u.Username)
		}
	}
	return nil
}

// runHTTPServer serves in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		if err := srv.Serve(); err != nil {
			log.Fatalw("http server stopped", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals, stops the HTTP server and
// tears down live sessions so no run is left polling.
func waitForShutdown(srv *server.Server, sessions service.Sessions, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	sessions.CloseAll(ctx)
}

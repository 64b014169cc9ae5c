package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pwa-weather/internal/config"
	db "pwa-weather/internal/db"
	httpapi "pwa-weather/internal/httpapi"
	"pwa-weather/internal/migrate"
	"pwa-weather/internal/modules/forecast"
	"pwa-weather/internal/modules/forecast/bridge"
	forecastviews "pwa-weather/internal/modules/forecast/views"
	"pwa-weather/internal/mqtt"
)

// mqttConnectTimeout bounds the initial broker connect so startup does not block
// when the broker is down.
const mqttConnectTimeout = 5 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"weatherAPIBaseURL", cfg.WeatherAPIBaseURL,
		"forecastDays", cfg.ForecastDays,
		"forecastTimeout", cfg.ForecastTimeout,
		"liveStamp", cfg.LiveStamp,
		"cacheResponses", cfg.CacheResponses,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"workerTopicIn", cfg.WorkerTopicIn,
		"workerTopicOut", cfg.WorkerTopicOut,
		"workerEcho", cfg.WorkerEcho,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}

	var ok int
	err = dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok)
	if err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	slog.Info("database connection successful")

	if err := forecastviews.LoadTemplates(); err != nil {
		return err
	}

	logger := slog.Default()
	pageClient := mqtt.NewClient(cfg, cfg.MQTTClientID, logger)
	mux := httpapi.NewMux(dbConn, cfg.StaticDir, pageClient)
	feature, err := forecast.RegisterFeature(mux, cfg, dbConn, pageClient, logger)
	if err != nil {
		return err
	}

	var workerClient *mqtt.Client
	if cfg.WorkerEcho {
		workerClient = mqtt.NewClient(cfg, cfg.MQTTClientID+"-worker", logger)
		worker := bridge.NewWorker(workerClient, cfg.WorkerTopicIn, cfg.WorkerTopicOut, logger)
		connectCtx, connectCancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err = worker.Start(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("echo worker not started (continuing without it)", "error", err)
		}
	}

	// Continue without the worker channel when the broker is unavailable so the
	// page and /healthz still work.
	connectCtx, connectCancel := context.WithTimeout(ctx, mqttConnectTimeout)
	feature.Bridge.Register(connectCtx)
	connectCancel()

	feature.Controller.Start(ctx)

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("mqtt disconnecting")
	pageClient.Disconnect()
	if workerClient != nil {
		workerClient.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

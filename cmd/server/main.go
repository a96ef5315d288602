package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hifzlab/scheduler/internal/analytics"
	"github.com/hifzlab/scheduler/internal/api"
	"github.com/hifzlab/scheduler/internal/config"
	"github.com/hifzlab/scheduler/internal/db"
	"github.com/hifzlab/scheduler/internal/eventstore"
	"github.com/hifzlab/scheduler/internal/fluency"
	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/queue"
	"github.com/hifzlab/scheduler/internal/reducework"
	"github.com/hifzlab/scheduler/internal/repository/sqlite"
	"github.com/hifzlab/scheduler/internal/rollup"
	"github.com/hifzlab/scheduler/internal/session"
	"github.com/hifzlab/scheduler/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Hifz Scheduler Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("reducer_worker_count=%d", cfg.ReducerWorkerCount)
	log.Debug("reducer_queue_size=%d", cfg.ReducerQueueSize)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	users := sqlite.NewUserRepository(database.DB)
	ayahs := sqlite.NewAyahRepository(database.DB)
	events := sqlite.NewEventRepository(database.DB)
	itemStates := sqlite.NewItemStateRepository(database.DB)
	sessions := sqlite.NewSessionRepository(database.DB)
	daily := sqlite.NewDailySessionRepository(database.DB)
	transitions := sqlite.NewTransitionScoreRepository(database.DB)
	fluencyTests := sqlite.NewFluencyGateRepository(database.DB)

	reducerPool := worker.NewShardedPool(cfg.ReducerWorkerCount, cfg.ReducerQueueSize)
	scheduler := reducework.NewScheduler(reducerPool, events, itemStates, transitions)
	store := eventstore.NewStore(events, sessions, scheduler)

	planner := queue.NewPlanner(itemStates, events, daily, transitions)
	roll := rollup.New(events, daily, itemStates)
	sessionSvc := session.NewService(sessions, events, users, store, planner, roll)
	gate := fluency.NewGate(ayahs, fluencyTests, users, itemStates)
	views := analytics.New(daily, itemStates)

	srv := &api.Server{
		DB: database.DB,

		Users:        users,
		Ayahs:        ayahs,
		Events:       events,
		ItemStates:   itemStates,
		Transitions:  transitions,
		FluencyTests: fluencyTests,

		Store:     store,
		Gate:      gate,
		Queue:     planner,
		Session:   sessionSvc,
		Analytics: views,
	}

	ctx, cancel := context.WithCancel(context.Background())
	reducerPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping reducer worker pool")
	cancel()
	reducerPool.Stop()

	log.Info("===========================================")
	log.Info("Hifz Scheduler Stopped")
	log.Info("===========================================")
}

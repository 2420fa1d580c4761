package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/config"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/admin"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/cache"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/dashboard"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/db"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/farmer"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/health"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/ingest"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/iot"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/irrigation"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/metrics"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/middleware"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/mirror"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/notify"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/secrets"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	metrics   *metrics.Metrics
	cache     *cache.Cache
	publisher *notify.MQTTPublisher
	mirror    *mirror.Influx
	Engine    *irrigation.Engine
	scheduler *irrigation.Scheduler

	ctx    context.Context
	cancel context.CancelFunc
}

// Initialize: логи, БД, внешние интеграции, роутер.
func (a *App) Initialize(cfg *config.Config) error {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})

	/* 2) DB */
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	d, err := db.Open(db.Options{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}

	/* 3) Метрики и необязательные интеграции */
	a.metrics = metrics.New()
	a.connectOptional()

	a.wire(d)
	return nil
}

// wire собирает сервисы и маршруты поверх готовой БД.
func (a *App) wire(d *gorm.DB) {
	a.db = d
	if a.metrics == nil {
		a.metrics = metrics.New()
	}

	telemetry := repo.NewTelemetryStore(d)
	valves := repo.NewValveStore(d)
	farms := repo.NewFarmStore(d)
	admins := repo.NewAdminStore(d)

	ingestSvc := ingest.NewService(telemetry, a.cfg.Ingest.MaxBatch, ingestOptions(a.mirror, a.metrics)...)
	a.Engine = irrigation.NewEngine(valves, engineOptions(a.publisher, a.metrics)...)
	a.scheduler = irrigation.NewScheduler(a.Engine, a.cfg.Sweep.Interval)
	home := dashboard.NewHome(repo.NewDashboardStore(d), homeCache(a.cache), a.cfg.Redis.DashboardTTL)

	/* Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
		middleware.Metrics(a.metrics),
	)

	/* Health, метрики */
	checks := []health.Check{health.DBCheck(d)}
	if a.cache != nil {
		checks = append(checks, health.Check{Name: "redis", Ping: a.cache.Ping})
	}
	health.RegisterRoutes(a.Router, checks...)
	a.Router.Handle(a.cfg.Metrics.Path, a.metrics.Handler()).Methods(http.MethodGet)

	/* API */
	dashboard.RegisterRoutes(a.Router, home)
	iot.RegisterRoutes(a.Router, iot.NewHandler(ingestSvc, a.Engine))
	farmer.Attach(a.Router, farmer.Dependencies{
		Farms:    farms,
		Readings: telemetry,
		Valves:   valves,
		Engine:   a.Engine,
	})
	admin.Attach(a.Router, admin.Dependencies{
		Store:        admins,
		HashPassword: secrets.HashPassword,
		Changed:      home.Invalidate,
	})

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}
	defer a.close()

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	waitScheduler := a.scheduler.Start(a.ctx)

	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
			a.cancel()
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	// проход планировщика должен закончиться до a.close()
	waitScheduler()
	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

// SweepOnce: один проход планировщика без HTTP (команда sweep).
func (a *App) SweepOnce(ctx context.Context) (int, error) {
	if a.scheduler == nil {
		return 0, fmt.Errorf("server not initialized")
	}
	defer a.close()
	return a.scheduler.RunOnce(ctx)
}

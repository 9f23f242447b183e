package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/home-bridge/internal/pkg/automation"
	"github.com/anicoll/home-bridge/internal/pkg/config"
	"github.com/anicoll/home-bridge/internal/pkg/contxt"
	"github.com/anicoll/home-bridge/internal/pkg/database"
	"github.com/anicoll/home-bridge/internal/pkg/database/migration"
	"github.com/anicoll/home-bridge/internal/pkg/publisher"
	"github.com/anicoll/home-bridge/internal/pkg/rf"
	"github.com/anicoll/home-bridge/internal/pkg/server"
	"github.com/anicoll/home-bridge/internal/pkg/temperature"
	"github.com/anicoll/home-bridge/internal/pkg/tradfri"
	"github.com/anicoll/home-bridge/pkg/hasher"
)

const (
	cleanupSchedule = "0 3 * * *"
	jobTimeout      = time.Minute
	shutdownTimeout = 5 * time.Second
	apiKeyLength    = 24
)

// ServeCommand loads the configuration from the environment, applies the command
// line overrides and runs the bridge until interrupted.
func ServeCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.IsSet("config") {
		cfg.InventoryFile = c.String("config")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("listen") {
		cfg.ListenAddr = c.String("listen")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()

	return run(c.Context, cfg, logger)
}

// KeygenCommand prints a new api key and the inventory entry holding its hash.
func KeygenCommand(c *cli.Context) error {
	key, err := hasher.GenerateKey(apiKeyLength)
	if err != nil {
		return err
	}
	hash, err := hasher.HashKey([]byte(key))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "apikey: %s\n\nusers:\n  - name: %s\n    keyHash: %s\n", key, c.String("user"), hash)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var err error
	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	zap.ReplaceGlobals(logger)

	inv, err := config.LoadInventory(cfg.InventoryFile)
	if err != nil {
		return err
	}

	registry := publisher.New()
	hub := server.NewHub()
	if err := registry.RegisterPublisher("websocket", hub); err != nil {
		return err
	}

	var db *database.Database
	var history temperature.HistoryStore
	if cfg.DatabaseURL != "" {
		if db, err = openDatabase(ctx, cfg); err != nil {
			return err
		}
		defer db.Close()
		history = db
		if err := registry.RegisterPublisher("postgres", db); err != nil {
			return err
		}
	}

	if cfg.MqttCfg.Host != "" {
		mq := newBroker(cfg.MqttCfg)
		if err := mq.Connect(); err != nil {
			return fmt.Errorf("connect mqtt broker: %w", err)
		}
		defer mq.Disconnect()
		if err := registry.RegisterPublisher("mqtt", mq); err != nil {
			return err
		}
	}

	sensors := temperature.NewSensors(temperature.NewReader(cfg.TemperatureCfg), history, inv.TemperatureSensors)
	for _, sensor := range inv.TemperatureSensors {
		registry.RegisterSensor(ctx, sensor)
	}

	sender := rf.NewCodeSender(cfg.RFCfg)
	outlets := rf.NewOutlets(sender, inv.Outlets)
	shutters := rf.NewShutters(sender, inv.Shutters)

	targets := automation.Targets{Outlets: outlets, Shutters: shutters}
	opts := []server.Option{
		server.WithOutlets(outlets),
		server.WithShutters(shutters),
		server.WithSensors(sensors),
		server.WithHub(hub),
		server.WithUsers(inv.Users),
	}
	if cfg.TradfriCfg.Enabled() {
		client := tradfri.New(tradfri.NewCoapTransport(cfg.TradfriCfg))
		defer client.Close()
		targets.Lights = client
		opts = append(opts, server.WithTradfri(client))
	} else {
		logger.Info("no tradfri gateway configured")
	}

	engine, err := automation.New(cfg, inv, targets)
	if err != nil {
		return fmt.Errorf("invalid automation: %w", err)
	}
	engine.Start()
	defer engine.Stop()

	scheduler := cron.New()
	if err := scheduleJobs(scheduler, cfg, temperature.NewRecorder(sensors, registry), len(inv.TemperatureSensors) > 0, db); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	handler, err := server.New(opts...).Router()
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return hub.Run(ctx)
	})

	if len(inv.RFButtons) > 0 || len(inv.WindowSensors) > 0 {
		eg.Go(func() error {
			return newCodeSource(cfg.RFCfg).Run(ctx, func(code int) {
				engine.HandleRFCode(ctx, code)
			})
		})
	}

	if len(inv.DashButtons) > 0 {
		eg.Go(func() error {
			return newPresenceSource(cfg.DashCfg).Run(ctx, func(mac net.HardwareAddr) {
				engine.HandleDashButton(ctx, mac)
			})
		})
	}

	srv := &http.Server{
		Handler:      handler,
		Addr:         cfg.ListenAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	eg.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := contxt.NewContext(shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.Database, error) {
	if cfg.MigrationsFolder != "" {
		if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return database.Connect(ctx, cfg.DatabaseURL)
}

// scheduleJobs adds the periodic temperature recording and the nightly history cleanup.
func scheduleJobs(c *cron.Cron, cfg *config.Config, recorder *temperature.Recorder, record bool, db *database.Database) error {
	if record {
		if _, err := c.AddFunc(fmt.Sprintf("@every %s", cfg.TemperatureCfg.RecordInterval), func() {
			ctx, cancel := contxt.NewContext(jobTimeout)
			defer cancel()
			recorder.Record(ctx)
		}); err != nil {
			return fmt.Errorf("schedule temperature recording: %w", err)
		}
	}

	if db != nil {
		if _, err := c.AddFunc(cfg.CronSpec(cleanupSchedule), func() {
			ctx, cancel := contxt.NewContext(jobTimeout)
			defer cancel()
			deleted, err := db.Cleanup(ctx, cfg.TemperatureCfg.Retention)
			if err != nil {
				zap.L().Error("error cleaning up database", zap.Error(err))
				return
			}
			zap.L().Info("cleaned up temperature history", zap.Int64("deleted", deleted))
		}); err != nil {
			return fmt.Errorf("schedule history cleanup: %w", err)
		}
	}
	return nil
}

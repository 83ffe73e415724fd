package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dispenagua/kiosk/internal/api"
	"github.com/dispenagua/kiosk/internal/config"
	"github.com/dispenagua/kiosk/internal/kiosk"
	"github.com/dispenagua/kiosk/internal/metrics"
	"github.com/dispenagua/kiosk/internal/vending"
)

func main() {
	app := &cli.App{
		Name:  "kiosk",
		Usage: "Water dispenser kiosk front end",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config.yaml"},
			&cli.StringFlag{Name: "backend-url", Usage: "vending backend base URL"},
			&cli.StringFlag{Name: "dispenser-id", Usage: "only list products of this dispenser"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "local HTTP port"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "write-config", Usage: "write the effective configuration and exit"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("Kiosk stopped")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	if c.Bool("write-config") {
		path := cfg.ConfigPath
		if path == "" {
			path = "config.yaml"
		}
		if err := cfg.Save(path); err != nil {
			return errors.Wrap(err, "write config")
		}
		fmt.Printf("Configuration written to %s\n", path)
		return nil
	}

	logs := api.NewLogBuffer(cfg.Kiosk.LogBufferSize)
	if err := setupLogging(cfg.Log, logs); err != nil {
		return err
	}
	logger := log.WithField("service", "kiosk")

	logger.WithFields(log.Fields{
		"backend": cfg.Backend.BaseURL,
		"addr":    cfg.Addr(),
		"config":  cfg.ConfigPath,
	}).Info("Kiosk starting")

	client := vending.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout})
	client.DispenserID = cfg.Backend.DispenserID
	monitor := vending.NewMonitor(client, cfg.Backend.HealthInterval, logger)

	opts := kiosk.Options{
		QR:          kiosk.QRRenderer{BaseURL: cfg.QR.RendererURL, Size: cfg.QR.Size},
		HistorySize: cfg.Kiosk.HistorySize,
		Logger:      logger,
	}
	serverOpts := api.Options{
		Backend: monitor,
		Logs:    logs,
		Logger:  logger,
	}
	if cfg.Metrics.Enabled {
		m := metrics.New()
		client.OnRequest = m.ObserveRequest
		opts.Observer = m
		serverOpts.Metrics = m.Handler()
	}

	ctrl := kiosk.NewController(client, opts)
	server := api.NewServer(cfg, ctrl, serverOpts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error { return server.Hub().Run(ctx) })
	g.Go(func() error { return monitor.Run(ctx) })
	g.Go(func() error {
		ctrl.Initialize(ctx)
		return nil
	})

	fmt.Printf("\nKiosk running on http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Kiosk stopped")
	return nil
}

// applyFlags overrides cfg with the flags that were set on the command line
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("backend-url") {
		cfg.Backend.BaseURL = c.String("backend-url")
	}
	if c.IsSet("dispenser-id") {
		cfg.Backend.DispenserID = c.String("dispenser-id")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
}

func setupLogging(cfg config.LogConfig, logs *api.LogBuffer) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrapf(err, "log level %q", cfg.Level)
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.AddHook(logs)
	return nil
}
